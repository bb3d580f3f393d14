// Package e2e drives a running authgate instance over HTTP. Point
// AUTHGATE_E2E_URL at the server under test.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TestContext carries HTTP state across steps within one scenario.
type TestContext struct {
	BaseURL string
	client  *http.Client

	lastStatus int
	lastBody   map[string]any

	refreshToken string
	accessToken  string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears scenario state so scenarios stay independent.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.refreshToken = ""
	tc.accessToken = ""
}

// POST sends a JSON body and captures the response.
func (tc *TestContext) POST(path string, body any, headers map[string]string) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

// GET fetches a path and captures the response.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	_ = json.NewDecoder(resp.Body).Decode(&tc.lastBody)
	return nil
}

// LastStatus returns the status code of the most recent response.
func (tc *TestContext) LastStatus() int { return tc.lastStatus }

// ResponseField returns a field from the most recent JSON response.
func (tc *TestContext) ResponseField(field string) (any, bool) {
	v, ok := tc.lastBody[field]
	return v, ok
}

// SaveTokens remembers the token pair from the most recent response.
func (tc *TestContext) SaveTokens() error {
	access, ok := tc.lastBody["access_token"].(string)
	if !ok || access == "" {
		return fmt.Errorf("response has no access_token")
	}
	refresh, ok := tc.lastBody["refresh_token"].(string)
	if !ok || refresh == "" {
		return fmt.Errorf("response has no refresh_token")
	}
	tc.accessToken = access
	tc.refreshToken = refresh
	return nil
}

func (tc *TestContext) AccessToken() string  { return tc.accessToken }
func (tc *TestContext) RefreshToken() string { return tc.refreshToken }
