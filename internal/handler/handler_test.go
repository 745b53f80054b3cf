package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quizbot/internal/domain"
	"quizbot/internal/dto"
	"quizbot/internal/handler"
	"quizbot/internal/middleware"
	"quizbot/internal/quiz"
	"quizbot/internal/service"
	"quizbot/internal/transport"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

type MockAuthService struct{}

func (MockAuthService) CreateJWT(context.Context, int64, time.Duration) (string, error) {
	return "", errors.New("not used")
}

func (MockAuthService) ValidateJWT(_ context.Context, token string) (*dto.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return &dto.AuthClaims{UserID: 42, TokenType: dto.TokenTypeAccess}, nil
}

type MockSessionService struct {
	StartFunc  func(ctx context.Context, kind domain.SessionKind, userID int64) (*service.SessionSnapshot, error)
	HandleFunc func(ctx context.Context, kind domain.SessionKind, userID int64, ev quiz.Event) (*service.SessionSnapshot, error)
	StatusFunc func(ctx context.Context, kind domain.SessionKind, userID int64) (*service.SessionSnapshot, error)
	CancelFunc func(ctx context.Context, kind domain.SessionKind, userID int64) (*service.SessionSnapshot, error)
}

func (m *MockSessionService) Start(ctx context.Context, kind domain.SessionKind, userID int64) (*service.SessionSnapshot, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, kind, userID)
	}
	panic("MockSessionService.StartFunc not implemented")
}

func (m *MockSessionService) Handle(ctx context.Context, kind domain.SessionKind, userID int64, ev quiz.Event) (*service.SessionSnapshot, error) {
	if m.HandleFunc != nil {
		return m.HandleFunc(ctx, kind, userID, ev)
	}
	panic("MockSessionService.HandleFunc not implemented")
}

func (m *MockSessionService) Status(ctx context.Context, kind domain.SessionKind, userID int64) (*service.SessionSnapshot, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, kind, userID)
	}
	panic("MockSessionService.StatusFunc not implemented")
}

func (m *MockSessionService) Cancel(ctx context.Context, kind domain.SessionKind, userID int64) (*service.SessionSnapshot, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, kind, userID)
	}
	panic("MockSessionService.CancelFunc not implemented")
}

type MockCategoryService struct {
	ListFunc func(ctx context.Context, scope domain.CategoryScope, qType domain.QuestionType, page int) (*dto.CategoryPageResponse, error)
}

func (m *MockCategoryService) List(ctx context.Context, scope domain.CategoryScope, qType domain.QuestionType, page int) (*dto.CategoryPageResponse, error) {
	return m.ListFunc(ctx, scope, qType, page)
}

type MockHistoryService struct {
	ListFunc       func(ctx context.Context, kind domain.SessionKind, userID int64) ([]dto.SessionSummaryResponse, error)
	DetailFunc     func(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (*dto.SessionDetailResponse, error)
	ReportPathFunc func(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (string, error)
	ProgressFunc   func(ctx context.Context, userID int64) (*dto.UserProgressResponse, error)
}

func (m *MockHistoryService) List(ctx context.Context, kind domain.SessionKind, userID int64) ([]dto.SessionSummaryResponse, error) {
	return m.ListFunc(ctx, kind, userID)
}

func (m *MockHistoryService) Detail(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (*dto.SessionDetailResponse, error) {
	return m.DetailFunc(ctx, kind, userID, sessionID)
}

func (m *MockHistoryService) ReportPath(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (string, error) {
	return m.ReportPathFunc(ctx, kind, userID, sessionID)
}

func (m *MockHistoryService) Progress(ctx context.Context, userID int64) (*dto.UserProgressResponse, error) {
	return m.ProgressFunc(ctx, userID)
}

// --- harness ---

type testApp struct {
	app        *fiber.App
	outbox     *transport.Outbox
	sessions   *MockSessionService
	categories *MockCategoryService
	history    *MockHistoryService
}

func newTestApp(checks ...handler.HealthCheck) *testApp {
	ta := &testApp{
		outbox:     transport.NewOutbox(0),
		sessions:   &MockSessionService{},
		categories: &MockCategoryService{},
		history:    &MockHistoryService{},
	}
	ta.app = fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.SetupRoutes(ta.app, handler.Handlers{
		Sessions:   handler.NewSessionHandler(ta.sessions, ta.outbox),
		Categories: handler.NewCategoryHandler(ta.categories),
		History:    handler.NewHistoryHandler(ta.history),
		Users:      handler.NewUserHandler(ta.history),
		Health:     handler.NewHealthHandler(checks...),
	}, MockAuthService{})
	return ta
}

func (ta *testApp) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AuthorizationHeader, "Bearer good")
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

// --- tests ---

func TestSessionHandler_Start(t *testing.T) {
	ta := newTestApp()
	ta.sessions.StartFunc = func(ctx context.Context, kind domain.SessionKind, userID int64) (*service.SessionSnapshot, error) {
		assert.Equal(t, domain.KindLevel, kind)
		assert.Equal(t, int64(42), userID)
		_ = ta.outbox.Prompt(ctx, userID, domain.Message{Session: kind, Kind: "prompt", Text: "Which kind of questions would you like?",
			Choices: []domain.Choice{{Token: "quiz_type:verbal", Label: "Verbal"}}})
		return &service.SessionSnapshot{Kind: kind, Phase: quiz.PhaseConfiguring, Step: quiz.StepQuizType}, nil
	}

	resp, body := ta.do(t, http.MethodPost, "/api/sessions/level", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "level", body["kind"])
	assert.Equal(t, string(quiz.PhaseConfiguring), body["phase"])
	assert.Equal(t, "quiz_type", body["step"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "prompt", msgs[0].(map[string]any)["kind"])
	assert.Equal(t, "level", msgs[0].(map[string]any)["session"])
	assert.Empty(t, ta.outbox.Drain(42, domain.KindLevel))
}

func TestSessionHandler_StartConflict(t *testing.T) {
	ta := newTestApp()
	ta.sessions.StartFunc = func(ctx context.Context, kind domain.SessionKind, userID int64) (*service.SessionSnapshot, error) {
		return nil, domain.NewSessionActiveError(kind)
	}
	resp, body := ta.do(t, http.MethodPost, "/api/sessions/test", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, string(domain.CodeSessionActive), body["code"])
}

func TestSessionHandler_Event(t *testing.T) {
	ta := newTestApp()
	var got quiz.Event
	ta.sessions.HandleFunc = func(ctx context.Context, kind domain.SessionKind, userID int64, ev quiz.Event) (*service.SessionSnapshot, error) {
		got = ev
		return &service.SessionSnapshot{Kind: kind, Phase: quiz.PhaseAnswering, SessionID: 7, Index: 1, Total: 10, Score: 1}, nil
	}

	resp, body := ta.do(t, http.MethodPost, "/api/sessions/test/events", dto.EventRequest{Token: "answer:5:b"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, quiz.AnswerSubmitted{QuestionID: 5, Answer: "b"}, got)
	assert.Equal(t, float64(7), body["session_id"])
	assert.Equal(t, []any{}, body["messages"])

	_, _ = ta.do(t, http.MethodPost, "/api/sessions/test/events", dto.EventRequest{Type: "number", Value: "15"})
	assert.Equal(t, quiz.NumericEntered{Text: "15"}, got)
}

func TestSessionHandler_EventRejected(t *testing.T) {
	ta := newTestApp()
	ta.sessions.HandleFunc = func(ctx context.Context, kind domain.SessionKind, userID int64, ev quiz.Event) (*service.SessionSnapshot, error) {
		_ = ta.outbox.Notify(ctx, userID, domain.Message{Session: kind, Kind: "notice"})
		return nil, domain.NewInvalidEventError("no answer expected")
	}

	resp, _ := ta.do(t, http.MethodPost, "/api/sessions/test/events", dto.EventRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ta.do(t, http.MethodPost, "/api/sessions/test/events", dto.EventRequest{Type: "teleport"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := ta.do(t, http.MethodPost, "/api/sessions/test/events", dto.EventRequest{Type: "cancel"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(domain.CodeInvalidEvent), body["code"])
	assert.Empty(t, ta.outbox.Drain(42, domain.KindTest))
}

func TestSessionHandler_StatusAndCancel(t *testing.T) {
	ta := newTestApp()
	deadline := time.Date(2024, 3, 1, 10, 12, 0, 0, time.UTC)
	ta.sessions.StatusFunc = func(ctx context.Context, kind domain.SessionKind, userID int64) (*service.SessionSnapshot, error) {
		return &service.SessionSnapshot{Kind: kind, Phase: quiz.PhaseAnswering, Deadline: &deadline}, nil
	}
	ta.sessions.CancelFunc = func(ctx context.Context, kind domain.SessionKind, userID int64) (*service.SessionSnapshot, error) {
		return nil, domain.NewSessionNotFoundError(kind)
	}

	resp, body := ta.do(t, http.MethodGet, "/api/sessions/test", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-03-01T10:12:00Z", body["deadline"])

	resp, _ = ta.do(t, http.MethodDelete, "/api/sessions/test", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ta.do(t, http.MethodGet, "/api/sessions/exam", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionHandler_RequiresToken(t *testing.T) {
	ta := newTestApp()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/test", nil)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCategoryHandler_List(t *testing.T) {
	ta := newTestApp()
	ta.categories.ListFunc = func(ctx context.Context, scope domain.CategoryScope, qType domain.QuestionType, page int) (*dto.CategoryPageResponse, error) {
		assert.Equal(t, domain.ScopeSub, scope)
		assert.Equal(t, domain.QuestionTypeVerbal, qType)
		assert.Equal(t, 1, page)
		return &dto.CategoryPageResponse{Scope: "sub", Categories: []dto.CategoryResponse{{ID: 3, Name: "Synonyms"}}}, nil
	}

	resp, body := ta.do(t, http.MethodGet, "/api/categories?scope=sub&type=verbal&page=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["categories"], 1)

	resp, body = ta.do(t, http.MethodGet, "/api/categories?scope=none", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(domain.CodeValidation), body["code"])
}

func TestHistoryHandler(t *testing.T) {
	ta := newTestApp()
	report := filepath.Join(t.TempDir(), "test_1.pdf")
	require.NoError(t, os.WriteFile(report, []byte("%PDF-1.3"), 0o644))

	ta.history.ListFunc = func(ctx context.Context, kind domain.SessionKind, userID int64) ([]dto.SessionSummaryResponse, error) {
		return []dto.SessionSummaryResponse{{ID: 1, Kind: string(kind), HasReport: true}}, nil
	}
	ta.history.DetailFunc = func(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (*dto.SessionDetailResponse, error) {
		if sessionID != 1 {
			return nil, domain.NewNotFoundError("missing")
		}
		return &dto.SessionDetailResponse{SessionSummaryResponse: dto.SessionSummaryResponse{ID: 1}}, nil
	}
	ta.history.ReportPathFunc = func(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (string, error) {
		if sessionID != 1 {
			return "", domain.NewReportMissingError(sessionID)
		}
		return report, nil
	}

	resp, _ := ta.do(t, http.MethodGet, "/api/history/test", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := ta.do(t, http.MethodGet, "/api/history/test/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["id"])

	resp, _ = ta.do(t, http.MethodGet, "/api/history/test/2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ta.do(t, http.MethodGet, "/api/history/test/1/report", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "test_1.pdf")

	resp, body = ta.do(t, http.MethodGet, "/api/history/test/2/report", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, string(domain.CodeReportMissing), body["code"])
}

func TestUserHandler_GetMyProgress(t *testing.T) {
	ta := newTestApp()
	ta.history.ProgressFunc = func(ctx context.Context, userID int64) (*dto.UserProgressResponse, error) {
		return &dto.UserProgressResponse{UserID: userID, Points: 68}, nil
	}
	resp, body := ta.do(t, http.MethodGet, "/api/users/me/progress", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(68), body["points"])
}

func TestHealthHandler(t *testing.T) {
	ok := handler.HealthCheck{Name: "db", Check: func(context.Context) error { return nil }}
	down := handler.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}

	resp, err := newTestApp(ok).app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = newTestApp(ok, down).app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSessionHandler_KeepsOtherKindMessages(t *testing.T) {
	ta := newTestApp()
	ta.sessions.HandleFunc = func(ctx context.Context, kind domain.SessionKind, userID int64, ev quiz.Event) (*service.SessionSnapshot, error) {
		_ = ta.outbox.Notify(ctx, userID, domain.Message{Session: kind, Kind: "notice", Text: "mine"})
		return nil, domain.NewInvalidEventError("no answer expected")
	}
	_ = ta.outbox.Prompt(context.Background(), 42, domain.Message{Session: domain.KindLevel, Kind: "prompt", Text: "pending level question"})

	resp, _ := ta.do(t, http.MethodPost, "/api/sessions/test/events", dto.EventRequest{Type: "cancel"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, ta.outbox.Drain(42, domain.KindTest))
	level := ta.outbox.Drain(42, domain.KindLevel)
	require.Len(t, level, 1)
	assert.Equal(t, "pending level question", level[0].Text)
}
