package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingExpirer struct {
	calls atomic.Int64
	n     int64
	err   error
}

func (c *countingExpirer) ExpireSessions(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected a deadline")
	}
	return c.n, c.err
}

func TestSessionCleanup_RunOnce(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		err  error
		want int64
	}{
		{"closes sessions", 3, nil, 3},
		{"nothing to close", 0, nil, 0},
		{"store error", 5, errors.New("boom"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &countingExpirer{n: tt.n, err: tt.err}
			w := NewSessionCleanup(exp, zap.NewNop(), time.Minute, time.Second)
			if got := w.RunOnce(); got != tt.want {
				t.Errorf("RunOnce() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSessionCleanup_StartStop(t *testing.T) {
	exp := &countingExpirer{}
	w := NewSessionCleanup(exp, zap.NewNop(), 5*time.Millisecond, 0)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for exp.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if exp.calls.Load() < 2 {
		t.Fatalf("expected at least two sweeps, got %d", exp.calls.Load())
	}

	after := exp.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if exp.calls.Load() != after {
		t.Error("worker kept running after Stop")
	}
}
