// Package testutil provides shared test helpers for databases and accounts.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/store"
)

// TestStore creates a temporary SQLite store that is automatically cleaned up.
func TestStore(t testing.TB) *store.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "jotter-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := store.Open(store.DriverSQLite, dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestUser registers email in s with a dummy password hash.
func TestUser(t testing.TB, s *store.Store, email string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), email, "not-a-real-hash")
	if err != nil {
		t.Fatal(err)
	}
	return u
}

// Clock is a manual clock that advances by Step on every reading.
type Clock struct {
	mu   sync.Mutex
	t    time.Time
	Step time.Duration
}

// NewClock starts a clock at start that advances one second per reading.
func NewClock(start time.Time) *Clock {
	return &Clock{t: start, Step: time.Second}
}

// Now returns the current reading and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.Step)
	return now
}
