package userstore

import (
	"context"
	"sync"

	sessiongate "github.com/zeroleaf/sessiongate"
)

// Memory is an in-memory user store. Intended for examples and tests; the
// engine only ever reads from it.
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]sessiongate.User
	byLogin map[string]string
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		byID:    map[string]sessiongate.User{},
		byLogin: map[string]string{},
	}
}

// Put inserts or replaces a user record.
func (m *Memory) Put(user sessiongate.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[user.ID] = user
	m.byLogin[user.Login] = user.ID
}

// FindByID implements sessiongate.UserStore.
func (m *Memory) FindByID(_ context.Context, id string) (*sessiongate.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.byID[id]
	if !ok {
		return nil, sessiongate.ErrUserNotFound
	}
	out := user
	return &out, nil
}

// FindByLogin implements sessiongate.UserStore.
func (m *Memory) FindByLogin(_ context.Context, login string) (*sessiongate.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byLogin[login]
	if !ok {
		return nil, sessiongate.ErrUserNotFound
	}
	out := m.byID[id]
	return &out, nil
}
