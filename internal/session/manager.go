package session

import (
	EventBus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

const (
	TopicLogin        = "session:login"
	TopicLogout       = "session:logout"
	TopicUnauthorized = "session:unauthorized"
)

// Manager is the session context shared by the HTTP client and the
// authentication gate. It owns the token store and broadcasts session
// changes; subscribers must not call back into the Manager's subscribe
// methods from inside a handler.
type Manager struct {
	store TokenStore
	bus   EventBus.Bus
}

func NewManager(store TokenStore) *Manager {
	return &Manager{store: store, bus: EventBus.New()}
}

// Token reads the stored token, empty when there is none.
func (m *Manager) Token() string {
	token, err := m.store.Load()
	if err != nil {
		zap.L().Error("session token load failed", zap.Error(err))
		return ""
	}
	return token
}

func (m *Manager) HasToken() bool {
	return m.Token() != ""
}

// Login persists a freshly issued token.
func (m *Manager) Login(token string) error {
	if err := m.store.Save(token); err != nil {
		return err
	}
	m.bus.Publish(TopicLogin)
	return nil
}

// Logout removes the token on operator request.
func (m *Manager) Logout() error {
	if err := m.store.Delete(); err != nil {
		return err
	}
	m.bus.Publish(TopicLogout)
	return nil
}

// Unauthorized is the global reaction to a 401 from any backend call: the
// token is dropped and every subscriber is told to reset.
func (m *Manager) Unauthorized() {
	if err := m.store.Delete(); err != nil {
		zap.L().Error("session token clear failed", zap.Error(err))
	}
	zap.L().Warn("backend rejected session token, session cleared")
	m.bus.Publish(TopicUnauthorized)
}

func (m *Manager) OnLogin(fn func()) error {
	return m.bus.Subscribe(TopicLogin, fn)
}

func (m *Manager) OnLogout(fn func()) error {
	return m.bus.Subscribe(TopicLogout, fn)
}

func (m *Manager) OnUnauthorized(fn func()) error {
	return m.bus.Subscribe(TopicUnauthorized, fn)
}
