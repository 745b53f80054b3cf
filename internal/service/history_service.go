package service

import (
	"context"
	"fmt"
	"os"

	"quizbot/internal/domain"
	"quizbot/internal/dto"
	"quizbot/internal/logger"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// HistoryService exposes finished and abandoned sessions of a user.
type HistoryService interface {
	List(ctx context.Context, kind domain.SessionKind, userID int64) ([]dto.SessionSummaryResponse, error)
	Detail(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (*dto.SessionDetailResponse, error)
	// ReportPath returns the artifact on disk, or a REPORT_MISSING error.
	ReportPath(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (string, error)
	Progress(ctx context.Context, userID int64) (*dto.UserProgressResponse, error)
}

type historyService struct {
	sessions  domain.SessionRepository
	ledger    domain.AnswerLedger
	questions domain.QuestionRepository
	progress  domain.UserProgressRepository
	limit     int
}

func NewHistoryService(
	sessions domain.SessionRepository,
	ledger domain.AnswerLedger,
	questions domain.QuestionRepository,
	progress domain.UserProgressRepository,
	limit int,
) HistoryService {
	return &historyService{sessions: sessions, ledger: ledger, questions: questions, progress: progress, limit: limit}
}

func (s *historyService) List(ctx context.Context, kind domain.SessionKind, userID int64) ([]dto.SessionSummaryResponse, error) {
	records, err := s.sessions.ListByUser(ctx, kind, userID, s.limit)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list sessions", err)
	}
	out := make([]dto.SessionSummaryResponse, 0, len(records))
	if err := copier.Copy(&out, &records); err != nil {
		return nil, domain.NewInternalError("Failed to map sessions", err)
	}
	for i := range out {
		out[i].HasReport = records[i].PDFPath != ""
	}
	return out, nil
}

// owned loads a session row and hides rows of other users.
func (s *historyService) owned(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (*domain.SessionRecord, error) {
	rec, err := s.sessions.GetByID(ctx, kind, sessionID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load session", err)
	}
	if rec == nil || rec.UserID != userID {
		return nil, domain.NewNotFoundError(fmt.Sprintf("%s session %d not found", kind, sessionID))
	}
	return rec, nil
}

func (s *historyService) Detail(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (*dto.SessionDetailResponse, error) {
	rec, err := s.owned(ctx, kind, userID, sessionID)
	if err != nil {
		return nil, err
	}

	answers, err := s.ledger.ListBySession(ctx, kind, sessionID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load answers", err)
	}
	ids := make([]int64, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load questions", err)
	}
	byID := make(map[int64]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	resp := &dto.SessionDetailResponse{Answers: make([]dto.AnswerDetailResponse, 0, len(answers))}
	if err := copier.Copy(&resp.SessionSummaryResponse, rec); err != nil {
		return nil, domain.NewInternalError("Failed to map session", err)
	}
	resp.HasReport = rec.PDFPath != ""

	for _, a := range answers {
		var item dto.AnswerDetailResponse
		if err := copier.Copy(&item, &a); err != nil {
			return nil, domain.NewInternalError("Failed to map answer", err)
		}
		if q, ok := byID[a.QuestionID]; ok {
			item.QuestionText = q.Text
			item.OptionA, item.OptionB, item.OptionC, item.OptionD = q.Options[0], q.Options[1], q.Options[2], q.Options[3]
			item.CorrectAnswer = q.CorrectAnswer
			item.Explanation = q.Explanation
		}
		resp.Answers = append(resp.Answers, item)
	}
	return resp, nil
}

func (s *historyService) ReportPath(ctx context.Context, kind domain.SessionKind, userID, sessionID int64) (string, error) {
	rec, err := s.owned(ctx, kind, userID, sessionID)
	if err != nil {
		return "", err
	}
	if rec.PDFPath == "" {
		return "", domain.NewReportMissingError(sessionID)
	}
	if _, err := os.Stat(rec.PDFPath); err != nil {
		logger.Get().Warn("HistoryService: report file is gone", zap.String("path", rec.PDFPath), zap.Error(err))
		return "", domain.NewReportMissingError(sessionID)
	}
	return rec.PDFPath, nil
}

func (s *historyService) Progress(ctx context.Context, userID int64) (*dto.UserProgressResponse, error) {
	p, err := s.progress.Get(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load progress", err)
	}
	resp := &dto.UserProgressResponse{UserID: userID}
	if p == nil {
		return resp, nil
	}
	if err := copier.Copy(resp, p); err != nil {
		return nil, domain.NewInternalError("Failed to map progress", err)
	}
	return resp, nil
}
