package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// tokenSlack is how long before expiry a cached token is considered stale.
const tokenSlack = 60 * time.Second

// AppTokenSource fetches and caches the QQ bot app access token. The issuing
// endpoint returns expires_in as a decimal string, not a JSON number.
type AppTokenSource struct {
	AppID      string
	AppSecret  string
	AuthURL    string
	HTTPClient *http.Client

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// Get returns a valid (fresh or cached) app access token.
func (ts *AppTokenSource) Get(ctx context.Context) (string, error) {
	ts.mu.RLock()
	if ts.token != "" && time.Until(ts.expiresAt) > tokenSlack {
		tok := ts.token
		ts.mu.RUnlock()
		return tok, nil
	}
	ts.mu.RUnlock()
	return ts.refresh(ctx)
}

func (ts *AppTokenSource) refresh(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.token != "" && time.Until(ts.expiresAt) > tokenSlack {
		return ts.token, nil
	}
	if ts.AppID == "" || ts.AppSecret == "" {
		return "", errors.New("missing app id/secret for qq app token")
	}

	body, err := json.Marshal(map[string]string{
		"appId":        ts.AppID,
		"clientSecret": ts.AppSecret,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.AuthURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	hc := ts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("qq token request failed: %s: %s", resp.Status, string(b))
	}

	var at struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&at); err != nil {
		return "", err
	}
	if at.AccessToken == "" {
		return "", errors.New("empty access_token in qq response")
	}

	ttl, err := strconv.Atoi(at.ExpiresIn)
	if err != nil || ttl <= 0 {
		ttl = 7200
	}

	ts.token = at.AccessToken
	ts.expiresAt = time.Now().Add(time.Duration(ttl) * time.Second)
	return ts.token, nil
}
