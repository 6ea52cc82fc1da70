// Package attemptlog records every gateway order-creation attempt so remote
// orders created for a local order that never stored their id can be found
// and reconciled.
package attemptlog

import (
	"context"
	"time"
)

type Outcome string

const (
	OutcomeCreated  Outcome = "CREATED"
	OutcomeRejected Outcome = "REJECTED"
	OutcomeTimeout  Outcome = "TIMEOUT"
	OutcomeFailed   Outcome = "FAILED"
	// OutcomeOrphaned marks a remote order whose id could not be stored locally
	OutcomeOrphaned Outcome = "ORPHANED"
)

// Attempt is one row of the append-only attempt log
type Attempt struct {
	Receipt        string
	LocalOrderID   int64
	Amount         int64
	Currency       string
	Outcome        Outcome
	GatewayOrderID string
	Error          string
	TraceID        string
	CreatedAt      time.Time
}

// Repository appends attempts. Implementations must be safe for concurrent use.
type Repository interface {
	Save(ctx context.Context, a *Attempt) error
}

// Nop discards every attempt. Used when no attempt database is configured.
type Nop struct{}

func (Nop) Save(context.Context, *Attempt) error { return nil }
