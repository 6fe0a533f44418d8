// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionExpirer closes sessions whose expiry has passed and reports how many.
type SessionExpirer interface {
	ExpireSessions(ctx context.Context) (int64, error)
}

// SessionCleanup is a background worker that closes expired sessions.
type SessionCleanup struct {
	expirer  SessionExpirer
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSessionCleanup creates a new session cleanup worker.
//
// Parameters:
//   - expirer: usually the identity manager
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 minute)
//   - timeout: bound on a single sweep
func NewSessionCleanup(expirer SessionExpirer, logger *zap.Logger, interval, timeout time.Duration) *SessionCleanup {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SessionCleanup{
		expirer:  expirer,
		log:      logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call more than once.
func (w *SessionCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("session cleanup worker stopped")
}

// RunOnce performs a single sweep.
func (w *SessionCleanup) RunOnce() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	count, err := w.expirer.ExpireSessions(ctx)
	if err != nil {
		w.log.Error("failed to close expired sessions", zap.Error(err))
		return 0
	}
	if count > 0 {
		w.log.Info("closed expired sessions", zap.Int64("count", count))
	}
	return count
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}
