package gateway

import "context"

// Pool is a fixed-size worker pool for the blocking transcription call.
// Submission hands the task to a free worker over an unbuffered channel,
// so a saturated pool suspends the submitting goroutine. That suspension
// is the gateway's admission control, not an error.
type Pool struct {
	tasks chan poolTask
}

type poolTask struct {
	fn  func() error
	err chan error
}

// NewPool starts a pool with the given number of workers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{tasks: make(chan poolTask)}
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for t := range p.tasks {
		t.err <- t.fn()
	}
}

// Do runs fn on a pool worker and returns its error. It blocks until a
// worker is free; ctx cancels the wait (and the caller abandons the result
// if cancellation wins after handoff).
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	t := poolTask{fn: fn, err: make(chan error, 1)}
	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-t.err:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops all workers once submitted tasks have drained.
func (p *Pool) Close() {
	close(p.tasks)
}
