// Package batch runs multiple scripted interview sessions in parallel,
// bounded by a concurrency limit. Sessions share nothing; each gets its
// own engine from the factory.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hiresight/hiresight/internal/recommend"
	"github.com/hiresight/hiresight/internal/session"
)

// DefaultConcurrency bounds how many interviews run at once.
const DefaultConcurrency = 3

// Interview is one scripted session: a candidate plus their answers in
// prompt order. Clarification prompts consume answers too; when the
// script runs out during a clarification, the round is abandoned.
type Interview struct {
	Candidate session.Candidate
	Answers   []string
}

// Result is the outcome of one interview. Err is set when the session
// could not run to completion; the other fields are best-effort.
type Result struct {
	Candidate      session.Candidate
	SessionID      uuid.UUID
	Recommendation *recommend.Recommendation
	Err            error
}

// EngineFactory builds a fresh engine for one candidate. Each call must
// return an engine with its own question source.
type EngineFactory func(c session.Candidate) (*session.Engine, error)

// Runner executes interviews in parallel.
type Runner struct {
	NewEngine   EngineFactory
	Concurrency int
	Logger      *zap.Logger
}

// Run executes all interviews and returns results in input order.
// Per-interview failures land in the matching Result; only context
// cancellation aborts the batch as a whole.
func (r *Runner) Run(ctx context.Context, interviews []Interview) ([]Result, error) {
	if r.NewEngine == nil {
		return nil, errors.New("batch: engine factory is required")
	}
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	results := make([]Result, len(interviews))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, iv := range interviews {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Candidate: iv.Candidate, Err: err}
				return err
			}
			results[i] = r.runOne(ctx, iv, log)
			if err := results[i].Err; err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return err
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

func (r *Runner) runOne(ctx context.Context, iv Interview, log *zap.Logger) Result {
	res := Result{Candidate: iv.Candidate}

	eng, err := r.NewEngine(iv.Candidate)
	if err != nil {
		res.Err = fmt.Errorf("create session for %s: %w", iv.Candidate.Name, err)
		return res
	}
	res.SessionID = eng.Session().ID

	turn, err := eng.Start(ctx)
	if err != nil {
		res.Err = fmt.Errorf("start session for %s: %w", iv.Candidate.Name, err)
		return res
	}

	next := 0
	for turn.State != session.StateComplete {
		if next >= len(iv.Answers) {
			if turn.State == session.StateAwaitingClarification {
				turn, err = eng.AbandonClarification(ctx)
				if err = stepErr(turn, err); err != nil {
					res.Err = err
					return res
				}
				continue
			}
			res.Err = fmt.Errorf("answer script for %s exhausted at question %s", iv.Candidate.Name, turn.QuestionID)
			return res
		}

		turn, err = eng.SubmitAnswer(ctx, iv.Answers[next])
		next++
		if err = stepErr(turn, err); err != nil {
			res.Err = err
			return res
		}
	}

	res.Recommendation = turn.Recommendation
	log.Info("batch interview complete",
		zap.String("candidate", iv.Candidate.Name),
		zap.String("session_id", res.SessionID.String()),
		zap.String("outcome", string(res.Recommendation.Outcome)))
	return res
}

// stepErr lets a completed turn stand even when the terminal save
// failed; everything else is fatal to the interview.
func stepErr(turn *session.Turn, err error) error {
	var storage *session.StorageError
	if errors.As(err, &storage) && turn != nil && turn.State == session.StateComplete {
		return nil
	}
	return err
}
