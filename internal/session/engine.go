package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hiresight/hiresight/internal/evaluate"
	"github.com/hiresight/hiresight/internal/recommend"
	"github.com/hiresight/hiresight/internal/risk"
	"github.com/hiresight/hiresight/internal/scenario"
)

// Config is the per-session setup. Passed explicitly at creation; there
// is no process-wide session configuration.
type Config struct {
	Candidate     Candidate
	ScenarioID    string
	ScenarioTitle string

	// QuestionCount caps how many questions the session dispatches.
	QuestionCount int

	// ClarificationBudget bounds clarification rounds per question.
	ClarificationBudget int

	// HintEnabled exposes question hints on dispatched turns.
	HintEnabled bool

	// RiskProfile names the recommendation weighting profile.
	RiskProfile string

	Thresholds recommend.Thresholds
}

// DefaultConfig returns the standard session setup.
func DefaultConfig() Config {
	return Config{
		QuestionCount:       5,
		ClarificationBudget: 1,
		RiskProfile:         "balanced",
		Thresholds:          recommend.DefaultThresholds(),
	}
}

// Saver persists a session. Satisfied by store.Store; saves happen at
// the terminal transition and as a durability checkpoint on suspension.
type Saver interface {
	SaveSession(ctx context.Context, s *Session) error
}

// Deps are the external collaborators of one engine.
type Deps struct {
	Source    scenario.Source
	Evaluator evaluate.Evaluator

	// Reporter, Store and Logger are optional.
	Reporter evaluate.Reporter
	Store    Saver
	Logger   *zap.Logger
}

// Turn is what the caller gets back from each engine operation: the
// new state, the prompt to put to the candidate, and the terminal
// verdict once complete.
type Turn struct {
	State      State
	QuestionID string
	Prompt     string
	Hint       string

	// Evaluation of the answer just finalized, when one was.
	Evaluation *evaluate.Result

	// Recommendation is set only on the completing turn.
	Recommendation *recommend.Recommendation
}

// Engine drives one session. Operations are single-flight: a call
// arriving while another is processing fails fast with
// ErrOperationInFlight instead of interleaving.
type Engine struct {
	cfg     Config
	src     scenario.Source
	eval    evaluate.Evaluator
	rep     evaluate.Reporter
	store   Saver
	log     *zap.Logger
	profile recommend.Profile

	mu   sync.Mutex
	sess *Session

	// promptedAt is when the current question or clarification prompt
	// was put to the candidate; durations accumulate from it.
	promptedAt time.Time

	// currentHint is the hint text of the question awaiting an answer.
	currentHint string

	// resumeState is where Resume returns the session after a
	// suspension.
	resumeState State

	// pendingDispatch is set when the current record finalized but the
	// next question could not be fetched; Resume retries the dispatch.
	pendingDispatch bool

	now func() time.Time
}

// New validates the configuration and constructs an engine in
// StateNotStarted. Start dispatches the first question.
func New(cfg Config, deps Deps) (*Engine, error) {
	if cfg.QuestionCount < 1 {
		return nil, &ConfigurationError{Reason: "question count must be at least 1"}
	}
	if cfg.ClarificationBudget < 0 {
		return nil, &ConfigurationError{Reason: "clarification budget cannot be negative"}
	}
	if deps.Source == nil {
		return nil, &ConfigurationError{Reason: "question source is required"}
	}
	if deps.Evaluator == nil {
		return nil, &ConfigurationError{Reason: "evaluator is required"}
	}
	if cfg.RiskProfile == "" {
		cfg.RiskProfile = "balanced"
	}
	profile, err := recommend.ProfileByName(cfg.RiskProfile)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	if cfg.Thresholds == (recommend.Thresholds{}) {
		cfg.Thresholds = recommend.DefaultThresholds()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		cfg:     cfg,
		src:     deps.Source,
		eval:    deps.Evaluator,
		rep:     deps.Reporter,
		store:   deps.Store,
		log:     log,
		profile: profile,
		now:     time.Now,
	}
	e.sess = &Session{
		ID:         uuid.New(),
		Candidate:  cfg.Candidate,
		ScenarioID: cfg.ScenarioID,
		State:      StateNotStarted,
		CreatedAt:  e.now(),
	}
	return e, nil
}

// Start dispatches the first question and moves to StateAwaitingAnswer.
// Fails with ConfigurationError if the source is exhausted before any
// question is produced.
func (e *Engine) Start(ctx context.Context) (*Turn, error) {
	if !e.mu.TryLock() {
		return nil, ErrOperationInFlight
	}
	defer e.mu.Unlock()

	if e.sess.State != StateNotStarted {
		return nil, &InvalidStateError{Op: "start", State: e.sess.State}
	}

	// The configured count is a cap, not a promise: a source holding
	// fewer questions ends the session when it runs out.
	if r := e.src.Remaining(); r > 0 && r < e.cfg.QuestionCount {
		e.log.Info("question count clamped to source size",
			zap.Int("configured", e.cfg.QuestionCount),
			zap.Int("available", r))
		e.cfg.QuestionCount = r
	}

	q, err := e.src.Next(ctx, nil)
	if errors.Is(err, scenario.ErrExhausted) {
		return nil, &ConfigurationError{Reason: "question source exhausted before the first question"}
	}
	if err != nil {
		return nil, fmt.Errorf("first question: %w", err)
	}

	e.log.Info("session started",
		zap.String("session_id", e.sess.ID.String()),
		zap.String("scenario_id", e.sess.ScenarioID),
		zap.String("candidate", e.sess.Candidate.Name),
		zap.Int("question_count", e.cfg.QuestionCount))

	return e.dispatch(q), nil
}

// SubmitAnswer processes candidate input in StateAwaitingAnswer or
// StateAwaitingClarification. The evaluator call is blocking and
// cancellable; on cancellation the record is left untouched and the
// call can be repeated.
func (e *Engine) SubmitAnswer(ctx context.Context, text string) (*Turn, error) {
	if !e.mu.TryLock() {
		return nil, ErrOperationInFlight
	}
	defer e.mu.Unlock()

	answer := strings.TrimSpace(text)
	if answer == "" {
		return nil, fmt.Errorf("%w: answer is empty", ErrInvalidInput)
	}

	switch e.sess.State {
	case StateAwaitingAnswer:
		return e.handleAnswer(ctx, answer)
	case StateAwaitingClarification:
		return e.handleClarification(ctx, answer)
	default:
		return nil, &InvalidStateError{Op: "submit answer", State: e.sess.State}
	}
}

// AbandonClarification is the caller's escape when no clarification
// will be supplied: the engine force-advances using the original answer
// and its original evaluation.
func (e *Engine) AbandonClarification(ctx context.Context) (*Turn, error) {
	if !e.mu.TryLock() {
		return nil, ErrOperationInFlight
	}
	defer e.mu.Unlock()

	if e.sess.State != StateAwaitingClarification {
		return nil, &InvalidStateError{Op: "abandon clarification", State: e.sess.State}
	}

	rec := e.current()
	e.log.Info("clarification abandoned",
		zap.String("session_id", e.sess.ID.String()),
		zap.String("question_id", rec.QuestionID))

	turn, err := e.advance(ctx)
	if turn != nil {
		turn.Evaluation = rec.Evaluation
	}
	return turn, err
}

// Resume lifts a suspension. After an evaluator outage the session
// returns to the state it was suspended in and the prompt is
// re-presented; the candidate's answer is resubmitted. After a source
// outage the pending dispatch is retried.
func (e *Engine) Resume(ctx context.Context) (*Turn, error) {
	if !e.mu.TryLock() {
		return nil, ErrOperationInFlight
	}
	defer e.mu.Unlock()

	if e.sess.State != StateSuspended {
		return nil, &InvalidStateError{Op: "resume", State: e.sess.State}
	}

	if e.pendingDispatch {
		e.pendingDispatch = false
		return e.advance(ctx)
	}

	e.sess.State = e.resumeState
	e.promptedAt = e.now()

	rec := e.current()
	turn := &Turn{State: e.sess.State, QuestionID: rec.QuestionID}
	if e.sess.State == StateAwaitingClarification {
		turn.Prompt = rec.ClarificationPrompt
	} else {
		turn.Prompt = rec.QuestionText
		if e.cfg.HintEnabled {
			turn.Hint = e.currentHint
		}
	}
	return turn, nil
}

// RevealHint marks the current question's hint as shown and returns it.
func (e *Engine) RevealHint() (string, error) {
	if !e.mu.TryLock() {
		return "", ErrOperationInFlight
	}
	defer e.mu.Unlock()

	if !e.cfg.HintEnabled {
		return "", fmt.Errorf("%w: hints are disabled", ErrInvalidInput)
	}
	if e.sess.State != StateAwaitingAnswer {
		return "", &InvalidStateError{Op: "reveal hint", State: e.sess.State}
	}
	rec := e.current()
	rec.HintShown = true
	return e.currentHint, nil
}

// IsComplete reports the completion flag. It is derived from the state
// tag the finalize transition sets, so it always agrees with "all
// dispatched questions evaluated and all configured dispatched".
func (e *Engine) IsComplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Complete()
}

// Session returns a snapshot of the session. The records slice is
// copied so callers cannot mutate engine state through it.
func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := *e.sess
	snap.Records = make([]QuestionRecord, len(e.sess.Records))
	copy(snap.Records, e.sess.Records)
	return &snap
}

func (e *Engine) current() *QuestionRecord {
	return &e.sess.Records[len(e.sess.Records)-1]
}

func (e *Engine) handleAnswer(ctx context.Context, answer string) (*Turn, error) {
	rec := e.current()

	// Time-to-answer is fixed at submission; evaluator latency must not
	// leak into the timing trace.
	submittedAt := e.now()

	res, err := e.eval.Evaluate(ctx, rec.QuestionText, answer, "")
	if err != nil {
		return nil, e.evaluationFailed(ctx, err)
	}

	rec.Answer = answer
	rec.AnswerDuration = submittedAt.Sub(e.promptedAt)

	if res.NeedsClarification && rec.ClarificationRounds < e.cfg.ClarificationBudget {
		return e.requestClarification(rec, res), nil
	}

	rec.Evaluation = res
	turn, err := e.advance(ctx)
	if turn != nil {
		turn.Evaluation = res
	}
	return turn, err
}

func (e *Engine) handleClarification(ctx context.Context, text string) (*Turn, error) {
	rec := e.current()

	accumulated := text
	if rec.Clarification != "" {
		accumulated = rec.Clarification + "\n" + text
	}

	submittedAt := e.now()

	res, err := e.eval.Evaluate(ctx, rec.QuestionText, rec.Answer, accumulated)
	if err != nil {
		return nil, e.evaluationFailed(ctx, err)
	}

	rec.Clarification = accumulated
	rec.AnswerDuration += submittedAt.Sub(e.promptedAt)
	rec.Evaluation = res

	if res.NeedsClarification && rec.ClarificationRounds < e.cfg.ClarificationBudget {
		return e.requestClarification(rec, res), nil
	}

	// Resolved, or budget exhausted: force-advance with the latest
	// evaluation. Exhaustion is a defined transition, not an error.
	turn, err := e.advance(ctx)
	if turn != nil {
		turn.Evaluation = res
	}
	return turn, err
}

// requestClarification enters a clarification round. The pending
// evaluation stays on the record so an abandoned round still has
// scores to finalize with.
func (e *Engine) requestClarification(rec *QuestionRecord, res *evaluate.Result) *Turn {
	rec.ClarificationRequested = true
	rec.ClarificationRounds++
	rec.ClarificationPrompt = res.ClarificationPrompt
	rec.Evaluation = res

	e.sess.State = StateAwaitingClarification
	e.promptedAt = e.now()

	e.log.Info("clarification requested",
		zap.String("session_id", e.sess.ID.String()),
		zap.String("question_id", rec.QuestionID),
		zap.Int("round", rec.ClarificationRounds))

	return &Turn{
		State:      StateAwaitingClarification,
		QuestionID: rec.QuestionID,
		Prompt:     res.ClarificationPrompt,
	}
}

// evaluationFailed classifies an evaluator error. Cancellation
// propagates as-is with no state change; anything else suspends the
// session. Either way the pending answer is not consumed.
func (e *Engine) evaluationFailed(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	e.resumeState = e.sess.State
	e.sess.State = StateSuspended

	e.log.Warn("evaluator unavailable, suspending session",
		zap.String("session_id", e.sess.ID.String()),
		zap.Error(err))

	// Durability checkpoint. Failure is logged only; suspension itself
	// already carries the operative error.
	if e.store != nil {
		if saveErr := e.store.SaveSession(context.WithoutCancel(ctx), e.sess); saveErr != nil {
			e.log.Error("suspension checkpoint failed", zap.Error(saveErr))
		}
	}

	return &EvaluationUnavailableError{Err: err}
}

// advance is the single transition that dispatches the next question
// or, when none remain, finalizes the session. Completion can only be
// set here. The count check normally ends the session (Start clamps the
// configured count to the source size); mid-session exhaustion from an
// undercounting source also finalizes rather than erroring.
func (e *Engine) advance(ctx context.Context) (*Turn, error) {
	if len(e.sess.Records) >= e.cfg.QuestionCount {
		return e.finalize(ctx)
	}

	q, err := e.src.Next(ctx, e.history())
	if errors.Is(err, scenario.ErrExhausted) {
		return e.finalize(ctx)
	}
	if err != nil {
		// The finalized record stands; Resume retries the dispatch.
		e.sess.State = StateSuspended
		e.pendingDispatch = true
		e.log.Warn("question source failed, suspending session",
			zap.String("session_id", e.sess.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("next question: %w", err)
	}

	return e.dispatch(q), nil
}

func (e *Engine) dispatch(q *scenario.Question) *Turn {
	now := e.now()
	e.sess.Records = append(e.sess.Records, QuestionRecord{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		AskedAt:      now,
	})
	e.sess.State = StateAwaitingAnswer
	e.promptedAt = now
	e.currentHint = q.Hint

	turn := &Turn{
		State:      StateAwaitingAnswer,
		QuestionID: q.ID,
		Prompt:     q.Text,
	}
	if e.cfg.HintEnabled {
		turn.Hint = q.Hint
	}
	return turn
}

// finalize runs the risk analyzer and recommendation aggregator, marks
// the session complete, and hands it to persistence. A storage failure
// is surfaced alongside the completed turn; it never rolls back the
// in-memory session.
func (e *Engine) finalize(ctx context.Context) (*Turn, error) {
	samples := make([]risk.Sample, len(e.sess.Records))
	for i := range e.sess.Records {
		rec := &e.sess.Records[i]
		samples[i] = risk.Sample{
			QuestionID:             rec.QuestionID,
			QuestionLength:         len(rec.QuestionText),
			Duration:               rec.AnswerDuration,
			ClarificationRequested: rec.ClarificationRequested,
		}
	}
	e.sess.Risk = risk.Analyze(samples)
	e.sess.Recommendation = recommend.Decide(e.sess.Scores(), e.sess.Risk.Score, e.profile, e.cfg.Thresholds)

	if e.rep != nil {
		report, err := e.rep.Report(ctx, e.cfg.ScenarioTitle, e.transcript())
		if err != nil {
			e.log.Warn("interview report unavailable", zap.Error(err))
		} else {
			e.sess.Report = report
		}
	}

	e.sess.State = StateComplete
	e.sess.CompletedAt = e.now()

	e.log.Info("session complete",
		zap.String("session_id", e.sess.ID.String()),
		zap.String("outcome", string(e.sess.Recommendation.Outcome)),
		zap.Float64("risk", e.sess.Risk.Score))

	turn := &Turn{
		State:          StateComplete,
		Recommendation: e.sess.Recommendation,
	}

	if e.store != nil {
		if err := e.store.SaveSession(context.WithoutCancel(ctx), e.sess); err != nil {
			e.log.Error("session save failed", zap.Error(err))
			return turn, &StorageError{Err: err}
		}
	}
	return turn, nil
}

func (e *Engine) history() []scenario.Exchange {
	out := make([]scenario.Exchange, 0, len(e.sess.Records))
	for i := range e.sess.Records {
		rec := &e.sess.Records[i]
		out = append(out, scenario.Exchange{
			QuestionID: rec.QuestionID,
			Question:   rec.QuestionText,
			Answer:     rec.Answer,
		})
	}
	return out
}

func (e *Engine) transcript() []evaluate.TranscriptEntry {
	out := make([]evaluate.TranscriptEntry, 0, len(e.sess.Records))
	for i := range e.sess.Records {
		rec := &e.sess.Records[i]
		out = append(out, evaluate.TranscriptEntry{
			Question:      rec.QuestionText,
			Answer:        rec.Answer,
			Clarification: rec.Clarification,
			Result:        rec.Evaluation,
		})
	}
	return out
}
