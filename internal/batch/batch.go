// Package batch tracks a fixed fan-out of independent requests and fires
// one aggregate callback when the last of them settles.
package batch

import "sync"

// Result is the settled outcome of a batch.
type Result struct {
	Completed int
	Failed    int
}

// Ok reports full success.
func (r Result) Ok() bool { return r.Failed == 0 }

// Partial reports a mixed outcome.
func (r Result) Partial() bool { return r.Completed > 0 && r.Failed > 0 }

// Tracker counts settles for a batch of size n. The done callback runs
// exactly once, on whichever goroutine delivers the final settle; requests
// are fired without sequencing, so completion order is arbitrary.
type Tracker struct {
	mu        sync.Mutex
	size      int
	completed int
	failed    int
	done      func(Result)
	fired     bool
}

func New(size int, done func(Result)) *Tracker {
	return &Tracker{size: size, done: done}
}

// Succeed records one successful settle.
func (t *Tracker) Succeed() { t.settle(true) }

// Fail records one failed settle.
func (t *Tracker) Fail() { t.settle(false) }

func (t *Tracker) settle(ok bool) {
	t.mu.Lock()
	if t.fired {
		t.mu.Unlock()
		return
	}
	if ok {
		t.completed++
	} else {
		t.failed++
	}
	finished := t.completed+t.failed >= t.size
	var result Result
	if finished {
		t.fired = true
		result = Result{Completed: t.completed, Failed: t.failed}
	}
	done := t.done
	t.mu.Unlock()

	if finished && done != nil {
		done(result)
	}
}
