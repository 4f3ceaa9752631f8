package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"x509lint/internal/input"
	"x509lint/internal/output"
)

// Scheduler lints blocks concurrently and streams the resulting documents in
// input order.
type Scheduler struct {
	linter      *Linter
	concurrency int
}

func NewScheduler(l *Linter, concurrency int) (*Scheduler, error) {
	if l == nil {
		return nil, errors.New("linter is nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	return &Scheduler{linter: l, concurrency: concurrency}, nil
}

// Execute streams one Document per block.
//
// Channel semantics:
//   - In the normal (non-canceled) case, exactly one Document is sent per
//     block, in the order of blocks.
//   - On context cancellation, the scheduler stops promptly; it may emit fewer
//     than len(blocks) documents.
//   - Both channels are closed reliably. The error channel carries at most one
//     error: the cancellation cause.
func (s *Scheduler) Execute(ctx context.Context, blocks []input.Block) (<-chan output.Document, <-chan error) {
	docCh := make(chan output.Document)
	errCh := make(chan error, 1)

	go func() {
		defer close(docCh)
		defer close(errCh)

		// One buffered slot per block so workers never wait on the emitter.
		slots := make([]chan output.Document, len(blocks))
		for i := range slots {
			slots[i] = make(chan output.Document, 1)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)

		waitErr := make(chan error, 1)
		go func() {
			for i, b := range blocks {
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					slots[i] <- s.linter.Lint(b)
					return nil
				})
			}
			waitErr <- g.Wait()
		}()

	emitLoop:
		for _, slot := range slots {
			select {
			case d := <-slot:
				select {
				case docCh <- d:
				case <-ctx.Done():
					break emitLoop
				}
			case <-ctx.Done():
				break emitLoop
			}
		}

		err := <-waitErr
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			errCh <- err
		}
	}()

	return docCh, errCh
}
