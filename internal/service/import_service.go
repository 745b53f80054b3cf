package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"quizbot/internal/domain"
	"quizbot/internal/logger"

	"go.uber.org/zap"
)

// ImportCategory is a main category and the subcategories linked to it.
type ImportCategory struct {
	Main string   `json:"main"`
	Subs []string `json:"subs"`
}

// ImportQuestion is one question of an import file. Options are A to D in order.
type ImportQuestion struct {
	CorrectAnswer string   `json:"correct_answer"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	Explanation   string   `json:"explanation"`
	MainCategory  string   `json:"main_category"`
	QuestionType  string   `json:"question_type"`
	ImagePath     string   `json:"image_path"`
	PassageName   string   `json:"passage_name"`
}

// ImportFile is the JSON document read by `quizbot import`.
type ImportFile struct {
	Categories []ImportCategory `json:"categories"`
	Questions  []ImportQuestion `json:"questions"`
}

// ImportReport counts what was written. Skipped lists rejected questions with the reason.
type ImportReport struct {
	MainCategories int      `json:"main_categories"`
	Subcategories  int      `json:"subcategories"`
	Links          int      `json:"links"`
	Questions      int      `json:"questions"`
	Skipped        []string `json:"skipped,omitempty"`
}

// ImportService loads categories and questions into the bank in one transaction.
type ImportService interface {
	Import(ctx context.Context, r io.Reader) (*ImportReport, error)
}

type importService struct {
	questions  domain.QuestionRepository
	categories domain.CategoryRepository
	tx         domain.TransactionManager
}

func NewImportService(questions domain.QuestionRepository, categories domain.CategoryRepository, tx domain.TransactionManager) ImportService {
	return &importService{questions: questions, categories: categories, tx: tx}
}

func (s *importService) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	var file ImportFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("malformed import file: %v", err))
	}

	report := &ImportReport{}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		mainIDs := make(map[string]int64)
		ensureMain := func(name string) (int64, error) {
			key := strings.TrimSpace(name)
			if id, ok := mainIDs[key]; ok {
				return id, nil
			}
			id, err := s.categories.EnsureMain(ctx, key)
			if err != nil {
				return 0, err
			}
			mainIDs[key] = id
			report.MainCategories++
			return id, nil
		}

		for _, c := range file.Categories {
			mainID, err := ensureMain(c.Main)
			if err != nil {
				return fmt.Errorf("category %q: %w", c.Main, err)
			}
			for _, sub := range c.Subs {
				subID, err := s.categories.EnsureSub(ctx, sub)
				if err != nil {
					return fmt.Errorf("subcategory %q: %w", sub, err)
				}
				report.Subcategories++
				if err := s.categories.Link(ctx, mainID, subID); err != nil {
					return err
				}
				report.Links++
			}
		}

		for i, iq := range file.Questions {
			q, err := iq.toDomain()
			if err == nil {
				err = q.Validate()
			}
			if err != nil {
				report.Skipped = append(report.Skipped, fmt.Sprintf("question %d: %v", i+1, err))
				continue
			}
			if iq.MainCategory != "" {
				if q.MainCategoryID, err = ensureMain(iq.MainCategory); err != nil {
					return fmt.Errorf("question %d category %q: %w", i+1, iq.MainCategory, err)
				}
			}
			if _, err := s.questions.Insert(ctx, q); err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
			report.Questions++
		}
		return nil
	})
	if err != nil {
		logger.Get().Error("ImportService: import rolled back", zap.Error(err))
		return nil, domain.NewInternalError("Failed to import questions", err)
	}

	logger.Get().Info("ImportService: import finished",
		zap.Int("questions", report.Questions),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("mainCategories", report.MainCategories))
	return report, nil
}

func (iq ImportQuestion) toDomain() (domain.Question, error) {
	if len(iq.Options) != len(domain.OptionLetters) {
		return domain.Question{}, fmt.Errorf("expected %d options, got %d", len(domain.OptionLetters), len(iq.Options))
	}
	q := domain.Question{
		CorrectAnswer: strings.ToUpper(strings.TrimSpace(iq.CorrectAnswer)),
		Text:          strings.TrimSpace(iq.QuestionText),
		Explanation:   iq.Explanation,
		Type:          domain.QuestionType(strings.ToLower(strings.TrimSpace(iq.QuestionType))),
		ImagePath:     iq.ImagePath,
		PassageName:   strings.TrimSpace(iq.PassageName),
	}
	copy(q.Options[:], iq.Options)
	return q, nil
}
