package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizbot/internal/domain"
	"quizbot/internal/logger"
	"quizbot/internal/quiz"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SessionSnapshot is the caller-facing view of a session after an interaction.
type SessionSnapshot struct {
	Kind      domain.SessionKind
	Phase     quiz.Phase
	Step      quiz.Step
	SessionID int64
	Index     int
	Total     int
	Score     int
	Deadline  *time.Time
	Summary   *domain.CompletionSummary
}

// SessionService drives quiz sessions: it loads the stored state, applies one event
// through the state machine, fulfils the resulting effects and stores the state again.
type SessionService interface {
	// Start opens a new session. A non-terminal session of the same kind is never replaced.
	Start(ctx context.Context, kind domain.SessionKind, userID int64) (*SessionSnapshot, error)
	Handle(ctx context.Context, kind domain.SessionKind, userID int64, ev quiz.Event) (*SessionSnapshot, error)
	// Status polls the deadline and finishes an interrupted finalization.
	Status(ctx context.Context, kind domain.SessionKind, userID int64) (*SessionSnapshot, error)
	Cancel(ctx context.Context, kind domain.SessionKind, userID int64) (*SessionSnapshot, error)
}

// SessionDeps are the collaborators of the session orchestrator.
type SessionDeps struct {
	Questions  domain.QuestionRepository
	Sessions   domain.SessionRepository
	Ledger     domain.AnswerLedger
	Progress   domain.UserProgressRepository
	Store      SessionStore
	Transport  domain.Transport
	Reports    ReportGenerator
	Feedback   FeedbackRequester
	Categories CategoryService
}

// SessionOption customizes the orchestrator, mostly for tests.
type SessionOption func(*sessionService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *sessionService) { s.now = now }
}

// WithOptionShuffle replaces the per-render option shuffle.
func WithOptionShuffle(shuffle func(n int, swap func(i, j int))) SessionOption {
	return func(s *sessionService) { s.presenter.shuffle = shuffle }
}

type sessionService struct {
	deps      SessionDeps
	machine   quiz.Machine
	presenter *presenter
	locks     *keyedMutex
	now       func() time.Time
}

func NewSessionService(deps SessionDeps, limits quiz.Limits, opts ...SessionOption) SessionService {
	s := &sessionService{
		deps:      deps,
		machine:   quiz.NewMachine(limits),
		presenter: newPresenter(deps.Categories),
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func lockKey(kind domain.SessionKind, userID int64) string {
	return fmt.Sprintf("%d:%s", userID, kind)
}

func (s *sessionService) Start(ctx context.Context, kind domain.SessionKind, userID int64) (*SessionSnapshot, error) {
	defer s.locks.Lock(lockKey(kind, userID))()

	existing, err := s.deps.Store.Load(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Phase.Terminal() {
		return nil, domain.NewSessionActiveError(kind)
	}

	st, effects := s.machine.Begin(kind, userID)
	logger.Get().Info("SessionService: session started", zap.Int64("userID", userID), zap.String("kind", string(kind)))
	return s.commit(ctx, st, effects)
}

func (s *sessionService) Handle(ctx context.Context, kind domain.SessionKind, userID int64, ev quiz.Event) (*SessionSnapshot, error) {
	defer s.locks.Lock(lockKey(kind, userID))()
	return s.handleLocked(ctx, kind, userID, ev)
}

func (s *sessionService) Cancel(ctx context.Context, kind domain.SessionKind, userID int64) (*SessionSnapshot, error) {
	return s.Handle(ctx, kind, userID, quiz.Cancelled{})
}

func (s *sessionService) Status(ctx context.Context, kind domain.SessionKind, userID int64) (*SessionSnapshot, error) {
	defer s.locks.Lock(lockKey(kind, userID))()

	st, err := s.deps.Store.Load(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.NewSessionNotFoundError(kind)
	}
	if st.Phase != quiz.PhaseAnswering && st.Phase != quiz.PhaseFinalizing {
		return snapshot(*st, nil), nil
	}
	return s.handleLocked(ctx, kind, userID, quiz.DeadlineCheck{})
}

func (s *sessionService) handleLocked(ctx context.Context, kind domain.SessionKind, userID int64, ev quiz.Event) (*SessionSnapshot, error) {
	st, err := s.deps.Store.Load(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.NewSessionNotFoundError(kind)
	}

	if sub, ok := ev.(quiz.AnswerSubmitted); ok {
		if ev, err = s.adoptRecorded(ctx, *st, sub); err != nil {
			return nil, err
		}
	}

	next, effects, err := s.machine.Transition(*st, s.stamp(ev))
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, next, effects)
}

// adoptRecorded replays the ledger's answer when the pending question was already recorded.
// That happens when the checkpoint after a recorded answer was lost and the question is asked again.
func (s *sessionService) adoptRecorded(ctx context.Context, st quiz.State, ev quiz.AnswerSubmitted) (quiz.Event, error) {
	q, ok := st.Current()
	if !ok || q.ID != ev.QuestionID {
		return ev, nil
	}
	rec, err := s.deps.Ledger.Find(ctx, st.Kind, st.SessionID, q.ID)
	if err != nil {
		return nil, domain.NewStoreError("failed to look up recorded answer", err)
	}
	if rec == nil {
		return ev, nil
	}
	if !strings.EqualFold(strings.TrimSpace(ev.Answer), rec.UserAnswer) {
		logger.Get().Warn("SessionService: answer already recorded, keeping the recorded one",
			zap.Int64("sessionID", st.SessionID),
			zap.Int64("questionID", q.ID),
			zap.String("recorded", rec.UserAnswer),
			zap.String("submitted", ev.Answer))
	}
	ev.Answer = rec.UserAnswer
	return ev, nil
}

// commit fulfils effects, then persists or discards the resulting state.
func (s *sessionService) commit(ctx context.Context, st quiz.State, effects []quiz.Effect) (*SessionSnapshot, error) {
	st, summary, err := s.drive(ctx, st, effects)
	if err != nil {
		return nil, err
	}

	if st.Phase.Terminal() {
		if err := s.deps.Store.Delete(ctx, st.Kind, st.UserID); err != nil {
			logger.Get().Warn("SessionService: failed to drop finished session state", zap.Int64("userID", st.UserID), zap.Error(err))
		}
		logger.Get().Info("SessionService: session ended",
			zap.Int64("userID", st.UserID),
			zap.String("kind", string(st.Kind)),
			zap.Int64("sessionID", st.SessionID),
			zap.String("phase", string(st.Phase)))
	} else if err := s.deps.Store.Save(ctx, st); err != nil {
		return nil, err
	}
	return snapshot(st, summary), nil
}

// drive fulfils effects in order. Effects that yield a follow-up event feed it back into the machine.
// A failed durable write stops the remaining effects and reports StoreFailed instead.
func (s *sessionService) drive(ctx context.Context, st quiz.State, effects []quiz.Effect) (quiz.State, *domain.CompletionSummary, error) {
	var summary *domain.CompletionSummary
	for len(effects) > 0 {
		var follow quiz.Event
		for _, eff := range effects {
			ev, err := s.fulfil(ctx, st, eff, &summary)
			if err != nil {
				logger.Get().Error("SessionService: durable write failed, aborting session",
					zap.Int64("userID", st.UserID),
					zap.Int64("sessionID", st.SessionID),
					zap.String("effect", eff.EffectName()),
					zap.Error(err))
				follow = quiz.StoreFailed{Err: err}
				break
			}
			if ev != nil {
				follow = ev
			}
		}
		if follow == nil {
			break
		}

		next, more, err := s.machine.Transition(st, s.stamp(follow))
		if err != nil {
			return st, summary, err
		}
		st, effects = next, more
	}
	return st, summary, nil
}

func (s *sessionService) fulfil(ctx context.Context, st quiz.State, eff quiz.Effect, summary **domain.CompletionSummary) (quiz.Event, error) {
	switch e := eff.(type) {
	case quiz.Prompt:
		s.prompt(ctx, st, s.presenter.prompt(ctx, e, st.Config.Category.Scope))

	case quiz.PresentQuestion:
		s.prompt(ctx, st, s.presenter.question(e))

	case quiz.RevealAnswer:
		s.notify(ctx, st, s.presenter.reveal(e))

	case quiz.Notify:
		s.notify(ctx, st, s.presenter.notice(e.Notice))

	case quiz.Sample:
		return s.sample(ctx, st, e)

	case quiz.RecordAnswer:
		if _, err := s.deps.Ledger.Record(ctx, st.Kind, e.Record); err != nil {
			return nil, domain.NewStoreError("failed to record answer", err)
		}
		// the stored cursor has to move past a recorded answer
		if err := s.deps.Store.Save(ctx, st); err != nil {
			logger.Get().Warn("SessionService: checkpoint failed", zap.Int64("sessionID", st.SessionID), zap.Error(err))
		}

	case quiz.MarkStatus:
		if err := s.deps.Sessions.MarkStatus(ctx, st.Kind, e.SessionID, e.Status); err != nil {
			logger.Get().Error("SessionService: failed to mark session status",
				zap.Int64("sessionID", e.SessionID), zap.String("status", string(e.Status)), zap.Error(err))
		}

	case quiz.Finalize:
		return s.finalize(ctx, st)

	case quiz.Completed:
		*summary = e.Summary
		s.notify(ctx, st, s.presenter.summary(e.Summary))
	}
	return nil, nil
}

func (s *sessionService) sample(ctx context.Context, st quiz.State, e quiz.Sample) (quiz.Event, error) {
	questions, err := s.deps.Questions.Sample(ctx, e.QuizType, e.Filter, e.Count)
	if err != nil {
		return nil, domain.NewStoreError("failed to sample questions", err)
	}
	now := s.now()
	if len(questions) == 0 {
		logger.Get().Info("SessionService: no questions for selection",
			zap.Int64("userID", st.UserID), zap.String("filter", e.Filter.String()))
		return quiz.QuestionsSampled{At: now}, nil
	}

	id, err := s.deps.Sessions.Create(ctx, st.Kind, st.UserID, len(questions))
	if err != nil {
		return nil, domain.NewStoreError("failed to open session row", err)
	}
	return quiz.QuestionsSampled{SessionID: id, Questions: questions, At: now}, nil
}

// finalize scores the session, runs report and feedback side by side and closes the session row.
func (s *sessionService) finalize(ctx context.Context, st quiz.State) (quiz.Event, error) {
	tally := st.Tally(s.now())

	var (
		report   domain.ReportOutcome
		feedback domain.FeedbackOutcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report = s.deps.Reports.Build(gctx, st.Kind, st.UserID, st.Questions, st.History)
		return nil
	})
	g.Go(func() error {
		feedback = s.deps.Feedback.Summarize(gctx, FeedbackInput{
			UserID:         st.UserID,
			Results:        st.History,
			Score:          tally.Score,
			Total:          tally.Total,
			ElapsedSeconds: tally.ElapsedSeconds,
		})
		return nil
	})
	_ = g.Wait()

	log := logger.Get().With(zap.Int64("userID", st.UserID), zap.Int64("sessionID", st.SessionID))
	if !report.OK() {
		log.Warn("SessionService: report unavailable", zap.Error(report.Err))
	}
	if feedback.Err != nil {
		log.Warn("SessionService: feedback degraded to fallback", zap.Error(feedback.Err))
	}

	result := domain.SessionResult{
		Score:      tally.Score,
		Percentage: tally.Percentage,
		TimeTaken:  tally.ElapsedSeconds,
	}
	if report.OK() {
		result.PDFPath = report.Path
	}
	if err := s.deps.Sessions.Complete(ctx, st.Kind, st.SessionID, result); err != nil {
		return nil, domain.NewStoreError("failed to complete session", err)
	}

	if s.deps.Progress != nil {
		// the served total is credited even when the deadline cut the run short
		delta := domain.ProgressDelta{Points: tally.Points, Seconds: tally.ElapsedSeconds, Questions: tally.Total}
		if st.Kind == domain.KindLevel {
			pct := tally.Percentage
			delta.Percentage = &pct
		}
		if err := s.deps.Progress.Apply(ctx, st.UserID, delta); err != nil {
			log.Warn("SessionService: failed to update user progress", zap.Error(err))
		}
	}

	summary := domain.CompletionSummary{
		SessionID:      st.SessionID,
		Score:          tally.Score,
		Total:          tally.Total,
		Answered:       tally.Answered,
		Percentage:     tally.Percentage,
		ElapsedSeconds: tally.ElapsedSeconds,
		Points:         tally.Points,
		FeedbackText:   feedback.Text,
		DeadlineHit:    st.DeadlineHit,
	}
	if report.OK() {
		path := report.Path
		summary.ArtifactPath = &path
	}
	log.Info("SessionService: session finalized",
		zap.Int("score", tally.Score), zap.Int("total", tally.Total), zap.Int("points", tally.Points))
	return quiz.Finalized{Summary: summary}, nil
}

func (s *sessionService) prompt(ctx context.Context, st quiz.State, msg domain.Message) {
	if s.deps.Transport == nil {
		return
	}
	msg.Session = st.Kind
	if err := s.deps.Transport.Prompt(ctx, st.UserID, msg); err != nil {
		logger.Get().Warn("SessionService: prompt delivery failed", zap.Int64("userID", st.UserID), zap.Error(err))
	}
}

func (s *sessionService) notify(ctx context.Context, st quiz.State, msg domain.Message) {
	if s.deps.Transport == nil {
		return
	}
	msg.Session = st.Kind
	if err := s.deps.Transport.Notify(ctx, st.UserID, msg); err != nil {
		logger.Get().Warn("SessionService: notification failed", zap.Int64("userID", st.UserID), zap.Error(err))
	}
}

// stamp fills in the arrival time of events that carry one.
func (s *sessionService) stamp(ev quiz.Event) quiz.Event {
	now := s.now()
	switch e := ev.(type) {
	case quiz.NumericEntered:
		if e.At.IsZero() {
			e.At = now
		}
		return e
	case quiz.AnswerSubmitted:
		if e.At.IsZero() {
			e.At = now
		}
		return e
	case quiz.DeadlineCheck:
		if e.At.IsZero() {
			e.At = now
		}
		return e
	case quiz.QuestionsSampled:
		if e.At.IsZero() {
			e.At = now
		}
		return e
	}
	return ev
}

func snapshot(st quiz.State, summary *domain.CompletionSummary) *SessionSnapshot {
	return &SessionSnapshot{
		Kind:      st.Kind,
		Phase:     st.Phase,
		Step:      st.Step,
		SessionID: st.SessionID,
		Index:     st.Cursor,
		Total:     len(st.Questions),
		Score:     st.Score,
		Deadline:  st.Config.EndTime,
		Summary:   summary,
	}
}
