package otp

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const ttl = 3 * time.Minute

var (
	ErrNoCode  = errors.New("no code issued for ride")
	ErrExpired = errors.New("code expired")
	ErrBadCode = errors.New("code mismatch")
)

type entry struct {
	code     string
	issuedAt time.Time
}

// Store issues and checks pickup confirmation codes, one live code per ride.
// Re-issuing replaces the previous code.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewStoreWithClock is for tests that need a fixed clock.
func NewStoreWithClock(now func() time.Time) *Store {
	s := NewStore()
	s.now = now
	return s
}

// Issue generates a fresh 4-digit code for the ride, valid for three minutes.
func (s *Store) Issue(rideID string) string {
	code := fmt.Sprintf("%04d", rand.Intn(10000))

	s.mu.Lock()
	s.entries[rideID] = entry{code: code, issuedAt: s.now()}
	s.mu.Unlock()

	return code
}

// Validate checks code against the ride's live code. A match consumes the
// code; expiry and mismatch leave it in place so the customer can retry or
// re-issue.
func (s *Store) Validate(rideID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[rideID]
	if !ok {
		return ErrNoCode
	}
	if s.now().Sub(e.issuedAt) > ttl {
		return ErrExpired
	}
	if e.code != code {
		return ErrBadCode
	}

	delete(s.entries, rideID)
	return nil
}

// Drop discards any live code for the ride, used on session teardown.
func (s *Store) Drop(rideID string) {
	s.mu.Lock()
	delete(s.entries, rideID)
	s.mu.Unlock()
}
