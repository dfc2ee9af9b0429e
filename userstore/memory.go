package userstore

import (
	"context"
	"sync"

	"authcore"
)

// Memory is a mutex-protected in-process [authcore.UserStore] for demos
// and tests. It honors the same sentinel-error contract as [Postgres].
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]authcore.UserRecord
	byEmail map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]authcore.UserRecord),
		byEmail: make(map[string]string),
	}
}

func (s *Memory) Create(_ context.Context, user authcore.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return authcore.ErrAccountExists
	}
	s.byID[user.UserID] = user
	s.byEmail[user.Email] = user.UserID
	return nil
}

func (s *Memory) GetByEmail(_ context.Context, email string) (authcore.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return authcore.UserRecord{}, authcore.ErrUserNotFound
	}
	return s.byID[id], nil
}

func (s *Memory) GetByID(_ context.Context, id string) (authcore.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return authcore.UserRecord{}, authcore.ErrUserNotFound
	}
	return user, nil
}

func (s *Memory) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return authcore.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	s.byID[id] = user
	return nil
}
