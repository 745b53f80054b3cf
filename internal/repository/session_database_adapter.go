package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizbot/internal/database"
	"quizbot/internal/domain"
	"quizbot/internal/repository/models"
	"quizbot/internal/util"

	"github.com/jmoiron/sqlx"
)

// sessionTables is the column contract shared by both quiz variants.
type sessionTables struct {
	sessions  string
	aggregate string
	answers   string
	fk        string
}

func tablesFor(kind domain.SessionKind) (sessionTables, error) {
	switch kind {
	case domain.KindTest:
		return sessionTables{sessions: "previous_tests", aggregate: "score", answers: "user_answers", fk: "previous_tests_id"}, nil
	case domain.KindLevel:
		return sessionTables{sessions: "level_determinations", aggregate: "percentage", answers: "level_determination_answers", fk: "level_determination_id"}, nil
	}
	return sessionTables{}, domain.NewInvalidInputError(fmt.Sprintf("unknown session kind %q", kind))
}

// SessionDatabaseAdapter implements domain.SessionRepository using sqlx.DB
type SessionDatabaseAdapter struct {
	db     *sqlx.DB
	oracle bool
	now    func() time.Time
}

// NewSessionDatabaseAdapter creates a new instance of SessionDatabaseAdapter
func NewSessionDatabaseAdapter(db *sqlx.DB) *SessionDatabaseAdapter {
	return &SessionDatabaseAdapter{db: db, oracle: database.IsOracle(db), now: time.Now}
}

// Create opens a session row with zeroed aggregates and an empty report path.
func (a *SessionDatabaseAdapter) Create(ctx context.Context, kind domain.SessionKind, userID int64, numQuestions int) (int64, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	query := `INSERT INTO ` + t.sessions + ` (user_id, timestamp, num_questions, ` + t.aggregate + `, time_taken, pdf_path, status)
		VALUES (?, ?, ?, 0, 0, ?, ?)`
	id, err := insertReturningID(ctx, GetExecutor(ctx, a.db), a.oracle, query,
		userID, a.now().UTC(), numQuestions, util.StringToNullString(""), string(domain.StatusInProgress))
	if err != nil {
		return 0, fmt.Errorf("failed to create %s session: %w", kind, err)
	}
	return id, nil
}

// Complete writes the final aggregates. Tests store the correct count, level determinations the percentage.
func (a *SessionDatabaseAdapter) Complete(ctx context.Context, kind domain.SessionKind, sessionID int64, result domain.SessionResult) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	var aggregate interface{} = result.Score
	if kind == domain.KindLevel {
		aggregate = result.Percentage
	}

	exec := GetExecutor(ctx, a.db)
	query := `UPDATE ` + t.sessions + ` SET ` + t.aggregate + ` = ?, time_taken = ?, pdf_path = ?, status = ? WHERE id = ?`
	res, err := exec.ExecContext(ctx, exec.Rebind(query),
		aggregate, result.TimeTaken, util.StringToNullString(result.PDFPath), string(domain.StatusCompleted), sessionID)
	if err != nil {
		return fmt.Errorf("failed to complete %s session %d: %w", kind, sessionID, err)
	}
	return expectOneRow(res, kind, sessionID)
}

// MarkStatus closes a session without touching its aggregates.
func (a *SessionDatabaseAdapter) MarkStatus(ctx context.Context, kind domain.SessionKind, sessionID int64, status domain.SessionStatus) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	exec := GetExecutor(ctx, a.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(`UPDATE `+t.sessions+` SET status = ? WHERE id = ?`), string(status), sessionID)
	if err != nil {
		return fmt.Errorf("failed to mark %s session %d as %s: %w", kind, sessionID, status, err)
	}
	return expectOneRow(res, kind, sessionID)
}

func expectOneRow(res sql.Result, kind domain.SessionKind, sessionID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		// some drivers cannot report affected rows
		return nil
	}
	if n == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("%s session %d not found", kind, sessionID))
	}
	return nil
}

func (a *SessionDatabaseAdapter) selectColumns(t sessionTables) string {
	return `SELECT id "id", user_id "user_id", timestamp "timestamp", num_questions "num_questions",
		` + t.aggregate + ` "aggregate", time_taken "time_taken", pdf_path "pdf_path", status "status"
		FROM ` + t.sessions
}

func (a *SessionDatabaseAdapter) GetByID(ctx context.Context, kind domain.SessionKind, sessionID int64) (*domain.SessionRecord, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	exec := GetExecutor(ctx, a.db)
	var row models.Session
	if err := exec.GetContext(ctx, &row, exec.Rebind(a.selectColumns(t)+` WHERE id = ?`), sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s session %d: %w", kind, sessionID, err)
	}
	rec := toDomainSession(kind, row)
	return &rec, nil
}

// ListByUser returns the newest sessions first.
func (a *SessionDatabaseAdapter) ListByUser(ctx context.Context, kind domain.SessionKind, userID int64, limit int) ([]domain.SessionRecord, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	query, args := limitRows(a.oracle, a.selectColumns(t)+` WHERE user_id = ? ORDER BY timestamp DESC, id DESC`, []interface{}{userID}, limit)

	exec := GetExecutor(ctx, a.db)
	var rows []models.Session
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list %s sessions for user %d: %w", kind, userID, err)
	}
	out := make([]domain.SessionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDomainSession(kind, r))
	}
	return out, nil
}

func toDomainSession(kind domain.SessionKind, m models.Session) domain.SessionRecord {
	return domain.SessionRecord{
		ID:           m.ID,
		Kind:         kind,
		UserID:       m.UserID,
		Timestamp:    m.Timestamp,
		NumQuestions: m.NumQuestions,
		Aggregate:    m.Aggregate,
		TimeTaken:    m.TimeTaken,
		PDFPath:      m.PDFPath.String,
		Status:       domain.SessionStatus(m.Status),
	}
}
