// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

// apiError is a non-2xx response from the server
type apiError struct {
	Status  int
	Kind    string
	Message string
}

func (e *apiError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", http.StatusText(e.Status), e.Status, e.Message)
}

type client struct {
	base     string
	adminKey string
	http     *http.Client
}

func newClient(base, adminKey string) *client {
	return &client{
		base:     strings.TrimRight(base, "/"),
		adminKey: adminKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// do sends body as JSON (when non-nil) and decodes a 2xx response into out
func (c *client) do(ctx context.Context, method, path string, body, out interface{}, admin bool) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		if c.adminKey == "" {
			return fmt.Errorf("%s %s needs an admin key (-key, ADMIN_KEY or ADMIN_KEY_SALT)", method, path)
		}
		req.Header.Set(middleware.AdminKeyHeader, c.adminKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			return &apiError{Status: resp.StatusCode}
		}
		return &apiError{Status: resp.StatusCode, Kind: e.Kind, Message: e.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) status(ctx context.Context) (models.ElectionStatus, error) {
	var s models.ElectionStatus
	err := c.do(ctx, http.MethodGet, "/election", nil, &s, false)
	return s, err
}

func (c *client) tally(ctx context.Context) (models.TallyResponse, error) {
	var t models.TallyResponse
	err := c.do(ctx, http.MethodGet, "/results", nil, &t, false)
	return t, err
}

func (c *client) leader(ctx context.Context) (models.Leader, error) {
	var l models.Leader
	err := c.do(ctx, http.MethodGet, "/results/leader", nil, &l, false)
	return l, err
}

func (c *client) winner(ctx context.Context) (models.Leader, error) {
	var l models.Leader
	err := c.do(ctx, http.MethodGet, "/results/winner", nil, &l, false)
	return l, err
}

func (c *client) stats(ctx context.Context, groupBy string) (models.Stats, error) {
	path := "/stats"
	if groupBy != "" {
		path += "?group_by=" + groupBy
	}
	var s models.Stats
	err := c.do(ctx, http.MethodGet, path, nil, &s, false)
	return s, err
}

func (c *client) start(ctx context.Context, deadline *time.Time) (models.ElectionState, error) {
	var s models.ElectionState
	err := c.do(ctx, http.MethodPost, "/election/start", models.StartVotingRequest{Deadline: deadline}, &s, true)
	return s, err
}

func (c *client) end(ctx context.Context) (models.ElectionState, error) {
	var s models.ElectionState
	err := c.do(ctx, http.MethodPost, "/election/end", nil, &s, true)
	return s, err
}

func (c *client) reset(ctx context.Context) (models.ResetResponse, error) {
	var r models.ResetResponse
	err := c.do(ctx, http.MethodPost, "/election/reset", nil, &r, true)
	return r, err
}
