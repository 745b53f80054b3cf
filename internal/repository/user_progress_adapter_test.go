package repository

import (
	"context"
	"regexp"
	"testing"

	"quizbot/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProgressApply(t *testing.T) {
	t.Run("existing row is updated", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewUserProgressAdapter(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET points = points + ?, usage_seconds = usage_seconds + ?, total_questions = total_questions + ? WHERE user_id = ?`)).
			WithArgs(85, 300.0, 10, int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Apply(context.Background(), 42, domain.ProgressDelta{Points: 85, Seconds: 300, Questions: 10})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first session creates the row", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewUserProgressAdapter(db)
		pct := 70.0

		mock.ExpectExec(regexp.QuoteMeta(`percentage_expected = ? WHERE user_id = ?`)).
			WithArgs(70, 120.0, 10, 70.0, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (user_id, points, usage_seconds, total_questions, percentage_expected)`)).
			WithArgs(int64(7), 70, 120.0, 10, 70.0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Apply(context.Background(), 7, domain.ProgressDelta{Points: 70, Seconds: 120, Questions: 10, Percentage: &pct})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserProgressGet(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserProgressAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE user_id = ?`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "points", "usage_seconds", "total_questions", "percentage_expected"}).
			AddRow(42, 160, 900.0, 20, 65.5))

	p, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 160, p.Points)
	assert.Equal(t, 65.5, p.PercentageExpected)
}
