package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"quizbot/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionCols = []string{"id", "user_id", "timestamp", "num_questions", "aggregate", "time_taken", "pdf_path", "status"}

func TestSessionCreate(t *testing.T) {
	tests := []struct {
		kind  domain.SessionKind
		query string
	}{
		{domain.KindTest, `INSERT INTO previous_tests (user_id, timestamp, num_questions, score, time_taken, pdf_path, status)`},
		{domain.KindLevel, `INSERT INTO level_determinations (user_id, timestamp, num_questions, percentage, time_taken, pdf_path, status)`},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			db, mock := setupTestDB(t)
			repo := NewSessionDatabaseAdapter(db)

			mock.ExpectQuery(regexp.QuoteMeta(tt.query)).
				WithArgs(int64(42), sqlmock.AnyArg(), 10, nil, "in_progress").
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

			id, err := repo.Create(context.Background(), tt.kind, 42, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(9), id)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionCreate_UnknownKind(t *testing.T) {
	db, _ := setupTestDB(t)
	_, err := NewSessionDatabaseAdapter(db).Create(context.Background(), "weekly", 1, 10)
	assert.Error(t, err)
}

func TestSessionComplete(t *testing.T) {
	t.Run("test kind stores the score", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewSessionDatabaseAdapter(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE previous_tests SET score = ?, time_taken = ?, pdf_path = ?, status = ? WHERE id = ?`)).
			WithArgs(6, 312.5, "user_tests/42/quiz.pdf", "completed", int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Complete(context.Background(), domain.KindTest, 9, domain.SessionResult{
			Score: 6, Percentage: 60, TimeTaken: 312.5, PDFPath: "user_tests/42/quiz.pdf",
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("level kind stores the percentage and null path", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewSessionDatabaseAdapter(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE level_determinations SET percentage = ?`)).
			WithArgs(60.0, 100.0, nil, "completed", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Complete(context.Background(), domain.KindLevel, 3, domain.SessionResult{Score: 6, Percentage: 60, TimeTaken: 100})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewSessionDatabaseAdapter(db)

		mock.ExpectExec(`UPDATE previous_tests SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Complete(context.Background(), domain.KindTest, 404, domain.SessionResult{})
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeNotFound, domainErr.Code)
	})
}

func TestSessionMarkStatus(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSessionDatabaseAdapter(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE previous_tests SET status = ? WHERE id = ?`)).
		WithArgs("cancelled", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkStatus(context.Background(), domain.KindTest, 9, domain.StatusCancelled))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionListByUser(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSessionDatabaseAdapter(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM level_determinations WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`)).
		WithArgs(int64(42), 5).
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(2, 42, now, 10, 80.0, 200.0, "user_tests/42/b.pdf", "completed").
			AddRow(1, 42, now.Add(-time.Hour), 10, 0.0, 0.0, nil, "cancelled"))

	recs, err := repo.ListByUser(context.Background(), domain.KindLevel, 42, 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.KindLevel, recs[0].Kind)
	assert.Equal(t, 80.0, recs[0].Aggregate)
	assert.Equal(t, "user_tests/42/b.pdf", recs[0].PDFPath)
	assert.Equal(t, domain.StatusCancelled, recs[1].Status)
	assert.Empty(t, recs[1].PDFPath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionGetByID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSessionDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM previous_tests WHERE id = ?`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(sessionCols))

	rec, err := repo.GetByID(context.Background(), domain.KindTest, 5)
	assert.NoError(t, err)
	assert.Nil(t, rec)
}
