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

func TestCategoryListMain_ByType(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewCategoryDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM main_categories c WHERE EXISTS`)).
		WithArgs("verbal").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY c.name LIMIT ? OFFSET ?`)).
		WithArgs("verbal", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(11, "Analogy").AddRow(12, "Reading"))

	cats, total, err := repo.ListMain(context.Background(), domain.QuestionTypeVerbal, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Equal(t, []domain.Category{{ID: 11, Name: "Analogy"}, {ID: 12, Name: "Reading"}}, cats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryListSub_AllTypes(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewCategoryDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM subcategories c`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM subcategories c ORDER BY c.name LIMIT ? OFFSET ?`)).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	cats, total, err := repo.ListSub(context.Background(), "", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, cats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryGetMainByID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewCategoryDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM main_categories WHERE id = ?`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	cat, err := repo.GetMainByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, cat)
}

func TestCategoryEnsureMain(t *testing.T) {
	t.Run("existing", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCategoryDatabaseAdapter(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM main_categories WHERE name = ?`)).
			WithArgs("Algebra").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

		id, err := repo.EnsureMain(context.Background(), " Algebra ")
		require.NoError(t, err)
		assert.Equal(t, int64(4), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("created", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCategoryDatabaseAdapter(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM main_categories WHERE name = ?`)).
			WithArgs("Geometry").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO main_categories (name) VALUES (?) RETURNING id`)).
			WithArgs("Geometry").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

		id, err := repo.EnsureMain(context.Background(), "Geometry")
		require.NoError(t, err)
		assert.Equal(t, int64(5), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank name", func(t *testing.T) {
		db, _ := setupTestDB(t)
		_, err := NewCategoryDatabaseAdapter(db).EnsureSub(context.Background(), "  ")
		assert.Error(t, err)
	})
}

func TestCategoryLink(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewCategoryDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM main_sub_links`)).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO main_sub_links (main_category_id, subcategory_id) VALUES (?, ?)`)).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM main_sub_links`)).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	require.NoError(t, repo.Link(context.Background(), 1, 2))
	require.NoError(t, repo.Link(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
