// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
)

// SetupTestDB creates a fresh SQLite database file with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quickly_vote_test.db")
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore returns a SQLStore over a fresh SQLite database
func SetupTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	st, err := store.NewSQLStore(SetupTestDB(t), db.DialectSQLite)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return st
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                  3318,
		DatabaseURL:           "file::memory:",
		DatabaseType:          db.DialectSQLite,
		AdminKeySalt:          "test-admin-salt",
		ElectionName:          "test-election",
		VoterIDLength:         election.DefaultVoterIDLength,
		DeadlineCheckInterval: time.Second,
	}
}

// AdminHeaders returns the X-Admin-Key header for cfg
func AdminHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{
		"X-Admin-Key": auth.GenerateAdminKey(cfg.ElectionName, cfg.AdminKeySalt),
	}
}

// Clock is a manually advanced clock for deadline tests
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTestService builds a service over st (a fresh MemStore when nil)
func NewTestService(t *testing.T, st store.Store, clock *Clock) *election.Service {
	t.Helper()

	if st == nil {
		st = store.NewMemStore()
	}
	cfg := election.Config{}
	if clock != nil {
		cfg.Now = clock.Now
	}

	svc, err := election.New(context.Background(), st, cfg)
	if err != nil {
		t.Fatalf("Failed to create election service: %v", err)
	}
	return svc
}

// VoterID returns a valid 16-digit voter id for n
func VoterID(n int) string {
	return fmt.Sprintf("%016d", n)
}

// RegisterTestVoter registers an eligible voter
func RegisterTestVoter(t *testing.T, svc *election.Service, externalID, fullName string, attrs map[string]string) models.Voter {
	t.Helper()

	v, err := svc.RegisterVoter(context.Background(), externalID, fullName, true, attrs)
	if err != nil {
		t.Fatalf("Failed to register test voter: %v", err)
	}
	return v
}

// AddTestCandidate adds a candidate; the election must be in setup
func AddTestCandidate(t *testing.T, svc *election.Service, name string) models.Candidate {
	t.Helper()

	c, err := svc.AddCandidate(context.Background(), name, "")
	if err != nil {
		t.Fatalf("Failed to add test candidate: %v", err)
	}
	return c
}

// StartTestElection starts voting without a deadline
func StartTestElection(t *testing.T, svc *election.Service) {
	t.Helper()

	if _, err := svc.StartVoting(context.Background(), nil); err != nil {
		t.Fatalf("Failed to start voting: %v", err)
	}
}

// CastTestVote submits a vote that must succeed
func CastTestVote(t *testing.T, svc *election.Service, voterID string, candidateID int64) models.Receipt {
	t.Helper()

	r, err := svc.SubmitVote(context.Background(), voterID, candidateID)
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
	return r
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
