package domain

import (
	"fmt"
	"strings"
)

// QuestionType splits the bank into its two sections.
type QuestionType string

const (
	QuestionTypeVerbal       QuestionType = "verbal"
	QuestionTypeQuantitative QuestionType = "quantitative"
)

func ParseQuestionType(s string) (QuestionType, error) {
	switch QuestionType(strings.ToLower(strings.TrimSpace(s))) {
	case QuestionTypeVerbal:
		return QuestionTypeVerbal, nil
	case QuestionTypeQuantitative:
		return QuestionTypeQuantitative, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// OptionLetters are the answer tokens, in storage order.
var OptionLetters = [4]string{"A", "B", "C", "D"}

// Question is an immutable bank entry.
type Question struct {
	ID             int64        `json:"id"`
	CorrectAnswer  string       `json:"correct_answer"`
	Text           string       `json:"question_text"`
	Options        [4]string    `json:"options"`
	Explanation    string       `json:"explanation"`
	MainCategoryID int64        `json:"main_category_id"`
	Type           QuestionType `json:"question_type"`
	ImagePath      string       `json:"image_path,omitempty"`
	PassageName    string       `json:"passage_name,omitempty"`
}

// Option returns the text stored under letter, case-insensitively.
func (q Question) Option(letter string) (string, bool) {
	for i, l := range OptionLetters {
		if strings.EqualFold(l, strings.TrimSpace(letter)) {
			return q.Options[i], true
		}
	}
	return "", false
}

func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewInvalidInputError("question text is required")
	}
	if _, ok := q.Option(q.CorrectAnswer); !ok {
		return NewInvalidInputError(fmt.Sprintf("correct answer %q is not one of A-D", q.CorrectAnswer))
	}
	if q.Type != QuestionTypeVerbal && q.Type != QuestionTypeQuantitative {
		return NewInvalidInputError(fmt.Sprintf("unknown question type %q", q.Type))
	}
	return nil
}

// Category is a main category or a subcategory.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryScope selects how sampling is filtered.
type CategoryScope string

const (
	ScopeNone CategoryScope = "none"
	ScopeMain CategoryScope = "main"
	ScopeSub  CategoryScope = "sub"
)

func ParseCategoryScope(s string) (CategoryScope, error) {
	switch CategoryScope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeNone, "":
		return ScopeNone, nil
	case ScopeMain:
		return ScopeMain, nil
	case ScopeSub:
		return ScopeSub, nil
	}
	return "", fmt.Errorf("unknown category scope %q", s)
}

// CategoryFilter is none, a main category id or a subcategory id.
type CategoryFilter struct {
	Scope CategoryScope `json:"scope"`
	ID    int64         `json:"id,omitempty"`
}

func NoCategory() CategoryFilter { return CategoryFilter{Scope: ScopeNone} }

func (f CategoryFilter) String() string {
	if f.Scope == ScopeNone || f.Scope == "" {
		return "none"
	}
	return fmt.Sprintf("%s:%d", f.Scope, f.ID)
}
