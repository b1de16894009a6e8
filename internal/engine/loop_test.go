package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/dtbook/internal/booking"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingStore struct {
	mu    sync.Mutex
	loads int
}

func (s *countingStore) LoadRows(ctx context.Context) ([]booking.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return nil, nil
}

func (s *countingStore) SetStatus(context.Context, int, booking.Status) error { return nil }

func (s *countingStore) SetEnableFlag(context.Context, int, booking.EnableFlag) error { return nil }

func TestLoopRunsUntilCancelled(t *testing.T) {
	store := &countingStore{}
	loop := &Loop{
		Engine:   New(store, &stubExecutor{}, nil, zap.NewNop()),
		Interval: 10 * time.Millisecond,
		Log:      zap.NewNop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	// One immediate cycle plus at least one tick.
	require.GreaterOrEqual(t, store.loads, 2)
}
