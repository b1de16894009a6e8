package engine

import (
	"context"
	"strings"

	"github.com/example/dtbook/internal/booking"
	"go.uber.org/zap"
)

// Store is the slice of the row table the engine needs during a cycle.
// Implementations must tolerate partial failure: a failed write is
// reported per call, never retried here.
type Store interface {
	LoadRows(ctx context.Context) ([]booking.Row, error)
	SetStatus(ctx context.Context, index int, status booking.Status) error
	SetEnableFlag(ctx context.Context, index int, flag booking.EnableFlag) error
}

// Executor attempts one booking against the portal. Implementations
// translate every internal fault into a returned error; the engine
// treats any error as a dispatch failure, never as fatal.
type Executor interface {
	AttemptBooking(ctx context.Context, cfg booking.ValidatedConfig) (booking.Result, error)
}

// Notifier announces a successful booking. A failure here is logged and
// does not touch the row status already recorded.
type Notifier interface {
	BookingSucceeded(ctx context.Context, cfg booking.ValidatedConfig, slotLabel string) error
}

type noopNotifier struct{}

func (noopNotifier) BookingSucceeded(context.Context, booking.ValidatedConfig, string) error {
	return nil
}

// Engine reconciles the row table against the portal, one full pass per
// cycle. It is the only writer of row status and enable flags.
type Engine struct {
	store  Store
	exec   Executor
	notify Notifier
	log    *zap.Logger
}

func New(store Store, exec Executor, notify Notifier, log *zap.Logger) *Engine {
	if notify == nil {
		notify = noopNotifier{}
	}
	return &Engine{store: store, exec: exec, notify: notify, log: log}
}

// RunCycle makes one pass over all rows in table order. Every fault
// below the table load is converted into a per-row status transition;
// only the load itself can fail the cycle. A cancelled context stops the
// pass after the row currently being processed.
func (e *Engine) RunCycle(ctx context.Context) error {
	rows, err := e.store.LoadRows(ctx)
	if err != nil {
		e.log.Error("row table load failed, skipping cycle", zap.Error(err))
		return err
	}
	e.log.Info("cycle started", zap.Int("rows", len(rows)))

	// Identities holding an active booking, scoped to this cycle.
	// Seeded from Done rows as they are scanned, grown on success.
	satisfied := make(map[string]bool)

	for i := range rows {
		if ctx.Err() != nil {
			e.log.Info("interrupt observed, stopping cycle", zap.Int("row", rows[i].Index))
			return ctx.Err()
		}
		e.processRow(ctx, rows, i, satisfied)
	}
	e.log.Info("cycle finished")
	return nil
}

func (e *Engine) processRow(ctx context.Context, rows []booking.Row, i int, satisfied map[string]bool) {
	row := &rows[i]
	log := e.log.With(zap.Int("row", row.Index), zap.String("identity", row.Identity))

	if row.Identity != "" && satisfied[row.Identity] {
		log.Info("identity already booked this cycle, superseding")
		e.setStatus(ctx, log, row, booking.StatusSuperseded)
		return
	}

	// A Succeeded row holds the active booking and never re-enters
	// dispatch, even when a failed flag write left its enable flag Yes.
	if row.Status == booking.StatusSucceeded {
		if row.Identity != "" {
			satisfied[row.Identity] = true
		}
		log.Info("row already succeeded, skipping")
		return
	}

	cfg, verrs := booking.Validate(*row)
	if len(verrs) > 0 {
		for _, ve := range verrs {
			log.Error("row configuration invalid",
				zap.String("field", ve.Field), zap.String("reason", ve.Reason))
		}
		e.setStatus(ctx, log, row, booking.StatusInvalid)
		return
	}

	switch booking.EnableFlag(strings.TrimSpace(row.Enable)) {
	case booking.FlagDone:
		if row.Identity != "" {
			satisfied[row.Identity] = true
		}
		log.Info("row already completed, skipping")
		return
	case booking.FlagNo:
		log.Info("row disabled, skipping")
		return
	}

	// Persist Running before dispatch so an observer (or a crash) sees
	// exactly where work was interrupted.
	if !e.setStatus(ctx, log, row, booking.StatusRunning) {
		log.Warn("could not mark row as running, skipping dispatch")
		return
	}

	res, err := e.exec.AttemptBooking(ctx, cfg)
	if err != nil {
		log.Error("booking attempt failed", zap.Error(err))
	}
	if err != nil || !res.Booked {
		e.setStatus(ctx, log, row, booking.StatusFailed)
		return
	}

	log.Info("booking secured", zap.String("slot", res.SlotLabel))
	e.setStatus(ctx, log, row, booking.StatusSucceeded)
	if err := e.store.SetEnableFlag(ctx, row.Index, booking.FlagDone); err != nil {
		log.Error("enable flag update failed", zap.Error(err))
	} else {
		row.Enable = string(booking.FlagDone)
	}
	if row.Identity != "" {
		satisfied[row.Identity] = true
		e.supersedeOthers(ctx, rows, i, row.Identity)
	}
	if err := e.notify.BookingSucceeded(ctx, cfg, res.SlotLabel); err != nil {
		log.Error("success notification failed", zap.Error(err))
	}
}

// supersedeOthers sweeps every other row holding the same identity that
// is still Pending or Running, regardless of table position. Only the
// status changes; the enable flag is left to the operator.
func (e *Engine) supersedeOthers(ctx context.Context, rows []booking.Row, winner int, identity string) {
	for j := range rows {
		if j == winner || rows[j].Identity != identity {
			continue
		}
		if rows[j].Status != booking.StatusPending && rows[j].Status != booking.StatusRunning {
			continue
		}
		log := e.log.With(zap.Int("row", rows[j].Index), zap.String("identity", identity))
		log.Info("identity booked elsewhere, superseding")
		e.setStatus(ctx, log, &rows[j], booking.StatusSuperseded)
	}
}

// setStatus persists a transition, skipping the write when the status is
// already current. A failed write is logged and not retried; the next
// cycle re-derives the decision. Returns false when the write failed.
func (e *Engine) setStatus(ctx context.Context, log *zap.Logger, row *booking.Row, s booking.Status) bool {
	if row.Status == s {
		return true
	}
	if err := e.store.SetStatus(ctx, row.Index, s); err != nil {
		log.Error("status update failed", zap.String("status", string(s)), zap.Error(err))
		return false
	}
	row.Status = s
	return true
}
