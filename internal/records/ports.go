package records

import (
	"context"

	"achpay/internal/core"
)

// Ports for record backends.
type (
	// Source reads the full set of payment records from a backing store.
	Source interface {
		// Load returns every record in source order.
		Load(ctx context.Context) ([]core.Payment, error)
		// Name identifies the source in logs and errors.
		Name() string
	}

	// Lister enumerates the current records held in memory.
	Lister interface {
		// All returns every record in source order. Callers must not modify the result.
		All(ctx context.Context) ([]core.Payment, error)
	}

	// Reloader refreshes an in-memory snapshot from its source.
	Reloader interface {
		Reload(ctx context.Context) error
	}
)
