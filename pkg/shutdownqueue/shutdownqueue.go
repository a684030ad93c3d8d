// Package shutdownqueue collects cleanup tasks during startup and
// drains them in LIFO order at the end of main. Shutdown is idempotent
// and aggregates task errors with errors.Join; a canceled context
// stops the drain early.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it cannot finish in time.
type Task func(ctx context.Context) error

var (
	mu     sync.Mutex
	tasks  []Task
	closed bool
)

// Add registers a task to run on Shutdown. Nil tasks and tasks added
// after shutdown started are dropped.
func Add(t Task) {
	if t == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if closed {
		return
	}

	tasks = append(tasks, t)
}

// Shutdown drains registered tasks in reverse registration order. The
// first call takes ownership of the queue; later calls are no-ops.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	closed = true
	owned := tasks
	tasks = nil
	mu.Unlock()

	var errs []error

	for i := len(owned) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))
			return errors.Join(errs...)
		default:
		}

		err := runTask(ctx, owned[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in shutdown task: %v", r)
		}
	}()

	return t(ctx)
}
