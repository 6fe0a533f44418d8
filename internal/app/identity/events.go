package identity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Session event kinds.
const (
	EventLogin   = "login"
	EventLogout  = "logout"
	EventExpired = "expired"
	EventRevoked = "revoked"
)

// SessionEvent describes a change in a user's signed-in state.
type SessionEvent struct {
	Kind      string
	UserID    primitive.ObjectID
	SessionID primitive.ObjectID
	At        time.Time
}

// OnSessionChange registers fn to be called after every login, logout,
// expiry and revocation. Listeners run synchronously on the caller's goroutine.
func (m *Manager) OnSessionChange(fn func(SessionEvent)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) emit(ev SessionEvent) {
	m.mu.RLock()
	listeners := make([]func(SessionEvent), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, fn := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.log.Error("session listener panicked", zap.Any("panic", r), zap.String("kind", ev.Kind))
				}
			}()
			fn(ev)
		}()
	}
}

// LogSessionEvents returns a listener that writes each event to logger.
func LogSessionEvents(logger *zap.Logger) func(SessionEvent) {
	return func(ev SessionEvent) {
		logger.Info("session changed",
			zap.String("kind", ev.Kind),
			zap.String("user_id", ev.UserID.Hex()),
			zap.String("session_id", ev.SessionID.Hex()),
			zap.Time("at", ev.At))
	}
}
