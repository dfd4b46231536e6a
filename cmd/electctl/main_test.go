// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/router"
	"github.com/danielhkuo/quickly-vote/testutil"
)

// startServer runs the full router over a seeded service
func startServer(t *testing.T) (*httptest.Server, map[string]string) {
	t.Helper()

	cfg := testutil.GetTestConfig()
	svc := testutil.NewTestService(t, nil, nil)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(1), "Alice", map[string]string{"village": "Asante"})
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(2), "Kofi", map[string]string{"village": "Bono"})
	testutil.AddTestCandidate(t, svc, "Candidate A")
	testutil.AddTestCandidate(t, svc, "Candidate B")

	srv := httptest.NewServer(router.NewRouter(svc, cfg))
	t.Cleanup(srv.Close)

	env := map[string]string{
		"ELECTCTL_SERVER": srv.URL,
		"ADMIN_KEY_SALT":  cfg.AdminKeySalt,
		"ELECTION_NAME":   cfg.ElectionName,
	}
	return srv, env
}

func runCmd(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, func(k string) string { return env[k] }, &out)
	return out.String(), err
}

func TestRun_Lifecycle(t *testing.T) {
	_, env := startServer(t)

	out, err := runCmd(t, env, "status")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Phase: setup") {
		t.Errorf("status output missing phase: %q", out)
	}

	if _, err := runCmd(t, env, "start", "-deadline", "2999-01-01T00:00:00Z"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Cast a vote straight over HTTP
	body := `{"voter_id":"` + testutil.VoterID(1) + `","candidate_id":2}`
	resp, err := http.Post(env["ELECTCTL_SERVER"]+"/votes", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("vote failed: %d", resp.StatusCode)
	}

	out, err = runCmd(t, env, "leader")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Leading (provisional): Candidate B") {
		t.Errorf("leader output: %q", out)
	}

	_, err = runCmd(t, env, "winner")
	var apiErr *apiError
	if !errors.As(err, &apiErr) || apiErr.Kind != "ElectionStillActive" {
		t.Errorf("expected ElectionStillActive, got %v", err)
	}

	if _, err := runCmd(t, env, "end"); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	out, err = runCmd(t, env, "winner")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Winner: Candidate B") {
		t.Errorf("winner output: %q", out)
	}

	out, err = runCmd(t, env, "tally")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Final tally", "Candidate A", "Candidate B", "100.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("tally output missing %q: %q", want, out)
		}
	}

	out, err = runCmd(t, env, "stats", "-group", "village")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1 of 2 eligible voters voted (50.0%)") || !strings.Contains(out, "Asante") {
		t.Errorf("stats output: %q", out)
	}

	out, err = runCmd(t, env, "reset")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 votes; phase setup") {
		t.Errorf("reset output: %q", out)
	}
}

func TestRun_AdminKey(t *testing.T) {
	env := map[string]string{"ADMIN_KEY_SALT": "s", "ELECTION_NAME": "e"}
	out, err := runCmd(t, env, "admin-key")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != auth.GenerateAdminKey("e", "s") {
		t.Errorf("admin-key printed %q", out)
	}

	if _, err := runCmd(t, map[string]string{}, "admin-key"); err == nil {
		t.Error("expected an error without ADMIN_KEY_SALT")
	}
}

func TestRun_AdminCommandsNeedKey(t *testing.T) {
	_, env := startServer(t)
	delete(env, "ADMIN_KEY_SALT")

	if _, err := runCmd(t, env, "start"); err == nil {
		t.Error("expected start without a key to fail")
	}

	env["ADMIN_KEY"] = "wrong"
	_, err := runCmd(t, env, "start")
	var apiErr *apiError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestRun_Usage(t *testing.T) {
	tests := [][]string{
		{},
		{"bogus"},
		{"start", "-deadline", "tomorrow"},
		{"-nope"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if _, err := runCmd(t, map[string]string{"ELECTCTL_SERVER": "http://127.0.0.1:1"}, args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
