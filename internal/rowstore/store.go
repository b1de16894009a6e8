// Package rowstore defines the contract a row table backend provides to
// the reconciliation engine, plus the startup status normalization both
// backends share.
package rowstore

import (
	"context"
	"strings"

	"github.com/example/dtbook/internal/booking"
)

// Store is the full backend contract. The engine consumes the cycle-time
// subset; Init runs once at startup and is the only fatal path in the
// process (an unreadable table aborts the run before any cycle starts).
type Store interface {
	Init(ctx context.Context) error
	LoadRows(ctx context.Context) ([]booking.Row, error)
	SetStatus(ctx context.Context, index int, status booking.Status) error
	SetEnableFlag(ctx context.Context, index int, flag booking.EnableFlag) error
}

// NormalizeStatus maps whatever the table holds onto the closed status
// set. Unrecognized and empty values become Pending; recognized values
// survive a restart untouched, so Running and Succeeded rows are not
// re-dispatched blindly after a crash.
func NormalizeStatus(raw string) booking.Status {
	s := booking.Status(strings.TrimSpace(raw))
	if s.Known() {
		return s
	}
	return booking.StatusPending
}
