package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"quizbot/internal/database"
	"quizbot/internal/domain"
	"quizbot/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// CategoryDatabaseAdapter implements domain.CategoryRepository using sqlx.DB
type CategoryDatabaseAdapter struct {
	db     *sqlx.DB
	oracle bool
}

// NewCategoryDatabaseAdapter creates a new instance of CategoryDatabaseAdapter
func NewCategoryDatabaseAdapter(db *sqlx.DB) *CategoryDatabaseAdapter {
	return &CategoryDatabaseAdapter{db: db, oracle: database.IsOracle(db)}
}

// ListMain pages main categories. With a question type only categories holding such questions are listed.
func (a *CategoryDatabaseAdapter) ListMain(ctx context.Context, qType domain.QuestionType, offset, limit int) ([]domain.Category, int, error) {
	from := ` FROM main_categories c`
	var args []interface{}
	if qType != "" {
		from += ` WHERE EXISTS (SELECT 1 FROM questions q WHERE q.main_category_id = c.id AND q.question_type = ?)`
		args = append(args, string(qType))
	}
	return a.page(ctx, from, args, offset, limit)
}

// ListSub pages subcategories reachable through main_sub_links.
func (a *CategoryDatabaseAdapter) ListSub(ctx context.Context, qType domain.QuestionType, offset, limit int) ([]domain.Category, int, error) {
	from := ` FROM subcategories c`
	var args []interface{}
	if qType != "" {
		from += ` WHERE EXISTS (SELECT 1 FROM main_sub_links l
			JOIN questions q ON q.main_category_id = l.main_category_id
			WHERE l.subcategory_id = c.id AND q.question_type = ?)`
		args = append(args, string(qType))
	}
	return a.page(ctx, from, args, offset, limit)
}

func (a *CategoryDatabaseAdapter) page(ctx context.Context, from string, args []interface{}, offset, limit int) ([]domain.Category, int, error) {
	exec := GetExecutor(ctx, a.db)

	var total int
	if err := exec.GetContext(ctx, &total, exec.Rebind(`SELECT COUNT(*)`+from), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	query, pageArgs := paginate(a.oracle, `SELECT c.id "id", c.name "name"`+from+` ORDER BY c.name`, args, offset, limit)
	var rows []models.Category
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}

	out := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Category{ID: r.ID, Name: r.Name})
	}
	return out, total, nil
}

func (a *CategoryDatabaseAdapter) GetMainByID(ctx context.Context, id int64) (*domain.Category, error) {
	return a.getByID(ctx, "main_categories", id)
}

func (a *CategoryDatabaseAdapter) GetSubByID(ctx context.Context, id int64) (*domain.Category, error) {
	return a.getByID(ctx, "subcategories", id)
}

func (a *CategoryDatabaseAdapter) getByID(ctx context.Context, table string, id int64) (*domain.Category, error) {
	exec := GetExecutor(ctx, a.db)
	var row models.Category
	err := exec.GetContext(ctx, &row, exec.Rebind(`SELECT id "id", name "name" FROM `+table+` WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category %d from %s: %w", id, table, err)
	}
	return &domain.Category{ID: row.ID, Name: row.Name}, nil
}

// EnsureMain returns the id of the named main category, creating it when missing.
func (a *CategoryDatabaseAdapter) EnsureMain(ctx context.Context, name string) (int64, error) {
	return a.ensure(ctx, "main_categories", name)
}

// EnsureSub returns the id of the named subcategory, creating it when missing.
func (a *CategoryDatabaseAdapter) EnsureSub(ctx context.Context, name string) (int64, error) {
	return a.ensure(ctx, "subcategories", name)
}

func (a *CategoryDatabaseAdapter) ensure(ctx context.Context, table, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, domain.NewInvalidInputError("category name is required")
	}
	exec := GetExecutor(ctx, a.db)

	var id int64
	err := exec.GetContext(ctx, &id, exec.Rebind(`SELECT id FROM `+table+` WHERE name = ?`), name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up category %q: %w", name, err)
	}

	id, err = insertReturningID(ctx, exec, a.oracle, `INSERT INTO `+table+` (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert category %q: %w", name, err)
	}
	return id, nil
}

// Link associates a subcategory with a main category; an existing link is kept.
func (a *CategoryDatabaseAdapter) Link(ctx context.Context, mainID, subID int64) error {
	exec := GetExecutor(ctx, a.db)
	var n int
	err := exec.GetContext(ctx, &n, exec.Rebind(`SELECT COUNT(*) FROM main_sub_links WHERE main_category_id = ? AND subcategory_id = ?`), mainID, subID)
	if err != nil {
		return fmt.Errorf("failed to check category link: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := exec.ExecContext(ctx, exec.Rebind(`INSERT INTO main_sub_links (main_category_id, subcategory_id) VALUES (?, ?)`), mainID, subID); err != nil {
		return fmt.Errorf("failed to link categories: %w", err)
	}
	return nil
}
