package engine

import (
	"context"
	"errors"
	"fmt"

	"projmedic/internal/outcome"

	"golang.org/x/sync/errgroup"
)

type Scheduler struct {
	pipeline    *Pipeline
	concurrency int
}

func NewScheduler(p *Pipeline, concurrency int) (*Scheduler, error) {
	if p == nil {
		return nil, errors.New("pipeline is nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	return &Scheduler{pipeline: p, concurrency: concurrency}, nil
}

// Execute streams one outcome record per task.
//
// Channel semantics:
//   - In the normal (non-canceled) case, exactly one record is sent per task.
//   - With concurrency 1, tasks run strictly in plan order, so records arrive
//     in plan order too.
//   - On context cancellation, the scheduler stops promptly; it may emit fewer
//     than N records.
//   - Both channels are closed reliably. The error channel carries fatal
//     errors and cancellation only; per-repository failures travel inside the
//     records themselves.
func (s *Scheduler) Execute(ctx context.Context, plan *Plan) (<-chan outcome.Record, <-chan error) {
	resCh := make(chan outcome.Record)
	errCh := make(chan error, 1)

	go func() {
		defer close(resCh)
		defer close(errCh)

		trySendErr := func(err error) {
			if err == nil {
				return
			}
			select {
			case errCh <- err:
			default:
			}
		}

		if ctx == nil {
			trySendErr(errors.New("context is nil"))
			return
		}
		if plan == nil {
			trySendErr(errors.New("plan is nil"))
			return
		}

		g, runCtx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)

		for _, task := range plan.Tasks {
			if runCtx.Err() != nil {
				break
			}
			g.Go(func() error {
				rec := s.pipeline.Run(runCtx, task)
				select {
				case resCh <- rec:
					return nil
				case <-runCtx.Done():
					return runCtx.Err()
				}
			})
		}

		trySendErr(g.Wait())
		trySendErr(ctx.Err())
	}()

	return resCh, errCh
}
