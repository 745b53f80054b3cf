package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quizbot/internal/domain"
	"quizbot/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// UserProgressAdapter implements domain.UserProgressRepository using sqlx.DB
type UserProgressAdapter struct {
	db *sqlx.DB
}

// NewUserProgressAdapter creates a new instance of UserProgressAdapter
func NewUserProgressAdapter(db *sqlx.DB) *UserProgressAdapter {
	return &UserProgressAdapter{db: db}
}

func (a *UserProgressAdapter) Get(ctx context.Context, userID int64) (*domain.UserProgress, error) {
	exec := GetExecutor(ctx, a.db)
	var row models.User
	query := `SELECT user_id "user_id", points "points", usage_seconds "usage_seconds",
		total_questions "total_questions", percentage_expected "percentage_expected"
		FROM users WHERE user_id = ?`
	if err := exec.GetContext(ctx, &row, exec.Rebind(query), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress for user %d: %w", userID, err)
	}
	return &domain.UserProgress{
		UserID:             row.UserID,
		Points:             row.Points,
		UsageSeconds:       row.UsageSeconds,
		TotalQuestions:     row.TotalQuestions,
		PercentageExpected: row.PercentageExpected,
	}, nil
}

// Apply adds delta onto the user's counters, creating the row on first use.
func (a *UserProgressAdapter) Apply(ctx context.Context, userID int64, delta domain.ProgressDelta) error {
	exec := GetExecutor(ctx, a.db)

	set := `points = points + ?, usage_seconds = usage_seconds + ?, total_questions = total_questions + ?`
	args := []interface{}{delta.Points, delta.Seconds, delta.Questions}
	if delta.Percentage != nil {
		set += `, percentage_expected = ?`
		args = append(args, *delta.Percentage)
	}
	res, err := exec.ExecContext(ctx, exec.Rebind(`UPDATE users SET `+set+` WHERE user_id = ?`), append(args, userID)...)
	if err != nil {
		return fmt.Errorf("failed to update progress for user %d: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	percentage := 0.0
	if delta.Percentage != nil {
		percentage = *delta.Percentage
	}
	_, err = exec.ExecContext(ctx, exec.Rebind(`INSERT INTO users (user_id, points, usage_seconds, total_questions, percentage_expected) VALUES (?, ?, ?, ?, ?)`),
		userID, delta.Points, delta.Seconds, delta.Questions, percentage)
	if err != nil {
		return fmt.Errorf("failed to create progress for user %d: %w", userID, err)
	}
	return nil
}
