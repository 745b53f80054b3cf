package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quizbot/internal/database"
	"quizbot/internal/domain"
	"quizbot/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// AnswerLedgerAdapter implements domain.AnswerLedger using sqlx.DB
type AnswerLedgerAdapter struct {
	db     *sqlx.DB
	oracle bool
}

// NewAnswerLedgerAdapter creates a new instance of AnswerLedgerAdapter
func NewAnswerLedgerAdapter(db *sqlx.DB) *AnswerLedgerAdapter {
	return &AnswerLedgerAdapter{db: db, oracle: database.IsOracle(db)}
}

// Record appends one answer. A second record for the same (session, question)
// returns the id of the first one and leaves it untouched.
func (a *AnswerLedgerAdapter) Record(ctx context.Context, kind domain.SessionKind, rec domain.AnswerRecord) (int64, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	exec := GetExecutor(ctx, a.db)

	var existing int64
	err = exec.GetContext(ctx, &existing,
		exec.Rebind(`SELECT id FROM `+t.answers+` WHERE `+t.fk+` = ? AND question_id = ?`),
		rec.SessionID, rec.QuestionID)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("failed to check existing answer: %w", err)
	}

	query := `INSERT INTO ` + t.answers + ` (user_id, question_id, user_answer, is_correct, ` + t.fk + `) VALUES (?, ?, ?, ?, ?)`
	id, err := insertReturningID(ctx, exec, a.oracle, query,
		rec.UserID, rec.QuestionID, rec.UserAnswer, rec.IsCorrect, rec.SessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to record answer for session %d: %w", rec.SessionID, err)
	}
	return id, nil
}

func (a *AnswerLedgerAdapter) Find(ctx context.Context, kind domain.SessionKind, sessionID, questionID int64) (*domain.AnswerRecord, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	exec := GetExecutor(ctx, a.db)
	query := `SELECT id "id", user_id "user_id", question_id "question_id", user_answer "user_answer",
		is_correct "is_correct", ` + t.fk + ` "session_id" FROM ` + t.answers + ` WHERE ` + t.fk + ` = ? AND question_id = ?`
	var row models.Answer
	if err := exec.GetContext(ctx, &row, exec.Rebind(query), sessionID, questionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find answer for session %d: %w", sessionID, err)
	}
	rec := toDomainAnswer(row)
	return &rec, nil
}

// ListBySession returns the answers in insertion order.
func (a *AnswerLedgerAdapter) ListBySession(ctx context.Context, kind domain.SessionKind, sessionID int64) ([]domain.AnswerRecord, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	exec := GetExecutor(ctx, a.db)
	query := `SELECT id "id", user_id "user_id", question_id "question_id", user_answer "user_answer",
		is_correct "is_correct", ` + t.fk + ` "session_id" FROM ` + t.answers + ` WHERE ` + t.fk + ` = ? ORDER BY id`
	var rows []models.Answer
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), sessionID); err != nil {
		return nil, fmt.Errorf("failed to list answers for session %d: %w", sessionID, err)
	}
	out := make([]domain.AnswerRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDomainAnswer(r))
	}
	return out, nil
}

func toDomainAnswer(m models.Answer) domain.AnswerRecord {
	return domain.AnswerRecord{
		ID:         m.ID,
		SessionID:  m.SessionID,
		UserID:     m.UserID,
		QuestionID: m.QuestionID,
		UserAnswer: m.UserAnswer,
		IsCorrect:  m.IsCorrect,
	}
}

func (a *AnswerLedgerAdapter) CountBySession(ctx context.Context, kind domain.SessionKind, sessionID int64) (int, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	exec := GetExecutor(ctx, a.db)
	var n int
	if err := exec.GetContext(ctx, &n, exec.Rebind(`SELECT COUNT(*) FROM `+t.answers+` WHERE `+t.fk+` = ?`), sessionID); err != nil {
		return 0, fmt.Errorf("failed to count answers for session %d: %w", sessionID, err)
	}
	return n, nil
}
