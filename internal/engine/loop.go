package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Loop runs the reconciliation engine on a fixed interval until its
// context is cancelled. Cycles are strictly sequential and never
// overlap: the portal executor owns a single exclusive browser session,
// and the satisfied-identity bookkeeping is only coherent under in-order
// processing.
type Loop struct {
	Engine   *Engine
	Interval time.Duration
	Log      *zap.Logger
}

// Run executes one cycle immediately, then one per tick. Cancellation is
// observed at cycle boundaries here and at row boundaries inside
// RunCycle; an in-flight row is always allowed to finish.
func (l *Loop) Run(ctx context.Context) error {
	_ = l.Engine.RunCycle(ctx)

	t := time.NewTicker(l.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Log.Info("reconciliation loop stopped")
			return ctx.Err()
		case <-t.C:
			_ = l.Engine.RunCycle(ctx)
		}
	}
}
