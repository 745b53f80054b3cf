package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

// setupTestDB creates a new sqlx.DB instance and sqlmock for testing.
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

// keepOrder is a shuffle that leaves the candidate ids untouched.
func keepOrder(int, func(i, j int)) {}

// reverse is a deterministic stand-in for a random permutation.
func reverse(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

var questionCols = []string{
	"id", "correct_answer", "question_text", "option_a", "option_b", "option_c", "option_d",
	"explanation", "main_category_id", "question_type", "image_path", "passage_name",
}
