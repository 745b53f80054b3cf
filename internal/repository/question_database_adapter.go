package repository

import (
	"context"
	"fmt"
	"math/rand/v2"

	"quizbot/internal/database"
	"quizbot/internal/domain"
	"quizbot/internal/repository/models"
	"quizbot/internal/util"

	"github.com/jmoiron/sqlx"
)

const questionColumns = `id "id",
		correct_answer "correct_answer",
		question_text "question_text",
		option_a "option_a",
		option_b "option_b",
		option_c "option_c",
		option_d "option_d",
		explanation "explanation",
		main_category_id "main_category_id",
		question_type "question_type",
		image_path "image_path",
		passage_name "passage_name"`

// QuestionDatabaseAdapter implements domain.QuestionRepository using sqlx.DB
type QuestionDatabaseAdapter struct {
	db      *sqlx.DB
	oracle  bool
	shuffle func(n int, swap func(i, j int))
}

// NewQuestionDatabaseAdapter creates a new instance of QuestionDatabaseAdapter
func NewQuestionDatabaseAdapter(db *sqlx.DB) *QuestionDatabaseAdapter {
	return &QuestionDatabaseAdapter{db: db, oracle: database.IsOracle(db), shuffle: rand.Shuffle}
}

// WithShuffle replaces the random permutation, for deterministic tests.
func (a *QuestionDatabaseAdapter) WithShuffle(shuffle func(n int, swap func(i, j int))) *QuestionDatabaseAdapter {
	a.shuffle = shuffle
	return a
}

// Sample draws candidate ids, shuffles them in memory and loads the first count rows.
func (a *QuestionDatabaseAdapter) Sample(ctx context.Context, qType domain.QuestionType, filter domain.CategoryFilter, count int) ([]domain.Question, error) {
	if count <= 0 {
		return nil, nil
	}

	var query string
	args := []interface{}{string(qType)}
	switch filter.Scope {
	case domain.ScopeMain:
		query = `SELECT id FROM questions WHERE question_type = ? AND main_category_id = ?`
		args = append(args, filter.ID)
	case domain.ScopeSub:
		query = `SELECT DISTINCT q.id FROM questions q
		JOIN main_sub_links l ON l.main_category_id = q.main_category_id
		WHERE q.question_type = ? AND l.subcategory_id = ?`
		args = append(args, filter.ID)
	default:
		query = `SELECT id FROM questions WHERE question_type = ?`
	}

	exec := GetExecutor(ctx, a.db)
	var ids []int64
	if err := exec.SelectContext(ctx, &ids, exec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to select candidate questions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	a.shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > count {
		ids = ids[:count]
	}

	questions, err := a.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return GroupByPassage(questions), nil
}

// GetByIDs returns the questions in the order of ids. Unknown ids are skipped.
func (a *QuestionDatabaseAdapter) GetByIDs(ctx context.Context, ids []int64) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+questionColumns+` FROM questions WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build question query: %w", err)
	}

	exec := GetExecutor(ctx, a.db)
	var rows []models.Question
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}

	byID := make(map[int64]models.Question, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, toDomainQuestion(r))
		}
	}
	return out, nil
}

// Insert stores one imported question.
func (a *QuestionDatabaseAdapter) Insert(ctx context.Context, q domain.Question) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	m := toModelQuestion(q)
	query := `INSERT INTO questions (correct_answer, question_text, option_a, option_b, option_c, option_d,
		explanation, main_category_id, question_type, image_path, passage_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := insertReturningID(ctx, GetExecutor(ctx, a.db), a.oracle, query,
		m.CorrectAnswer, m.QuestionText, m.OptionA, m.OptionB, m.OptionC, m.OptionD,
		m.Explanation, m.MainCategoryID, m.QuestionType, m.ImagePath, m.PassageName)
	if err != nil {
		return 0, fmt.Errorf("failed to insert question: %w", err)
	}
	return id, nil
}

// GroupByPassage keeps questions sharing a passage next to each other,
// ordered by the first appearance of each passage. Questions without a passage keep their slot.
func GroupByPassage(questions []domain.Question) []domain.Question {
	groups := make(map[string][]domain.Question)
	var order []string
	for i, q := range questions {
		key := q.PassageName
		if key == "" {
			key = fmt.Sprintf("\x00%d", i)
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], q)
	}

	out := make([]domain.Question, 0, len(questions))
	for _, key := range order {
		out = append(out, groups[key]...)
	}
	return out
}

func toDomainQuestion(m models.Question) domain.Question {
	return domain.Question{
		ID:             m.ID,
		CorrectAnswer:  m.CorrectAnswer,
		Text:           m.QuestionText,
		Options:        [4]string{m.OptionA, m.OptionB, m.OptionC, m.OptionD},
		Explanation:    m.Explanation.String,
		MainCategoryID: m.MainCategoryID.Int64,
		Type:           domain.QuestionType(m.QuestionType),
		ImagePath:      m.ImagePath.String,
		PassageName:    m.PassageName.String,
	}
}

func toModelQuestion(q domain.Question) models.Question {
	return models.Question{
		ID:             q.ID,
		CorrectAnswer:  q.CorrectAnswer,
		QuestionText:   q.Text,
		OptionA:        q.Options[0],
		OptionB:        q.Options[1],
		OptionC:        q.Options[2],
		OptionD:        q.Options[3],
		Explanation:    util.StringToNullString(q.Explanation),
		MainCategoryID: util.Int64ToNullInt64(q.MainCategoryID),
		QuestionType:   string(q.Type),
		ImagePath:      util.StringToNullString(q.ImagePath),
		PassageName:    util.StringToNullString(q.PassageName),
	}
}
