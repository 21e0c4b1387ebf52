package blacklist

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	expiresAt time.Time
}

type subjectMarker struct {
	issuedBefore time.Time
	expiresAt    time.Time
}

// Memory is an in-process blacklist. Expired entries are skipped on read and
// removed by Purge.
type Memory struct {
	mu       sync.RWMutex
	tokens   map[string]entry
	subjects map[string]subjectMarker
}

// NewMemory creates an in-memory blacklist
func NewMemory() *Memory {
	return &Memory{
		tokens:   make(map[string]entry),
		subjects: make(map[string]subjectMarker),
	}
}

// Add implements Blacklist
func (m *Memory) Add(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return ErrEmptyJTI
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[jti] = entry{expiresAt: time.Now().Add(ttl)}
	return nil
}

// AddSubject implements Blacklist
func (m *Memory) AddSubject(_ context.Context, subject string, issuedBefore time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	marker := subjectMarker{issuedBefore: issuedBefore, expiresAt: time.Now().Add(ttl)}
	// A later marker supersedes an earlier one
	if existing, ok := m.subjects[subject]; ok && existing.issuedBefore.After(marker.issuedBefore) {
		return nil
	}
	m.subjects[subject] = marker
	return nil
}

// Contains implements Blacklist
func (m *Memory) Contains(_ context.Context, jti, subject string, issuedAt time.Time) (bool, error) {
	now := time.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if e, ok := m.tokens[jti]; ok && e.expiresAt.After(now) {
		return true, nil
	}

	if marker, ok := m.subjects[subject]; ok && marker.expiresAt.After(now) {
		if issuedAt.Before(marker.issuedBefore) {
			return true, nil
		}
	}

	return false, nil
}

// Purge removes expired entries
func (m *Memory) Purge(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for jti, e := range m.tokens {
		if !e.expiresAt.After(now) {
			delete(m.tokens, jti)
		}
	}
	for subject, marker := range m.subjects {
		if !marker.expiresAt.After(now) {
			delete(m.subjects, subject)
		}
	}
}

// Len returns the number of live token entries
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}
