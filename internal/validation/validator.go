package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"quizbot/internal/domain"
	"quizbot/internal/dto"
)

const maxEventValueLength = 200

// Validator checks request parameters before they reach the services.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func missing(field string) domain.ValidationError {
	return domain.ValidationError{Field: field, Message: "is required"}
}

func invalid(field, value string) domain.ValidationError {
	return domain.ValidationError{Field: field, Message: fmt.Sprintf("invalid value %q", value)}
}

// ValidateKind parses the :kind path parameter.
func (v *Validator) ValidateKind(raw string) (domain.SessionKind, domain.ValidationErrors) {
	if strings.TrimSpace(raw) == "" {
		return "", domain.ValidationErrors{missing("kind")}
	}
	kind, err := domain.ParseSessionKind(raw)
	if err != nil {
		return "", domain.ValidationErrors{invalid("kind", raw)}
	}
	return kind, nil
}

// ValidateID parses a positive numeric path parameter.
func (v *Validator) ValidateID(field, raw string) (int64, domain.ValidationErrors) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationErrors{invalid(field, raw)}
	}
	return id, nil
}

// ValidateEventRequest checks the shape of an event. Whether the event fits the
// current phase is left to the session.
func (v *Validator) ValidateEventRequest(req dto.EventRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if strings.TrimSpace(req.Token) == "" && strings.TrimSpace(req.Type) == "" {
		errs = append(errs, missing("type"))
	}
	if utf8.RuneCountInString(req.Value) > maxEventValueLength {
		errs = append(errs, domain.ValidationError{Field: "value", Message: fmt.Sprintf("must be at most %d characters", maxEventValueLength)})
	}
	if req.QuestionID < 0 {
		errs = append(errs, invalid("question_id", strconv.FormatInt(req.QuestionID, 10)))
	}
	return errs
}

// CategoryQuery is the validated form of GET /api/categories.
type CategoryQuery struct {
	Scope    domain.CategoryScope
	QuizType domain.QuestionType
	Page     int
}

func (v *Validator) ValidateCategoryQuery(scope, qType, page string) (CategoryQuery, domain.ValidationErrors) {
	var (
		q    CategoryQuery
		errs domain.ValidationErrors
	)
	switch s := domain.CategoryScope(strings.ToLower(strings.TrimSpace(scope))); s {
	case domain.ScopeMain, domain.ScopeSub:
		q.Scope = s
	case "":
		errs = append(errs, missing("scope"))
	default:
		errs = append(errs, invalid("scope", scope))
	}
	if qType != "" {
		t, err := domain.ParseQuestionType(qType)
		if err != nil {
			errs = append(errs, invalid("type", qType))
		}
		q.QuizType = t
	}
	if page != "" {
		p, err := strconv.Atoi(page)
		if err != nil || p < 0 {
			errs = append(errs, invalid("page", page))
		}
		q.Page = p
	}
	return q, errs
}
