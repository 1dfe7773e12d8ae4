package worker

import (
	"context"
)

// Worker is one long-running batch job. Unlike a stream consumer these
// workers finish on their own once the backlog is drained.
type Worker interface {
	// Start runs the worker until done, stopped or cancelled.
	Start(ctx context.Context) error

	// Stop signals the worker to finish the current batch and return.
	Stop() error

	// Name identifies the worker in logs.
	Name() string
}
