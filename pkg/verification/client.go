// Package verification calls a paid third-party identity verification
// API. Calls are rate-limited and billed per request, so they must
// always go through pkg/effectguard.
package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Result is the outcome of an identity verification check.
type Result struct {
	AccountID string    `json:"account_id"`
	Status    string    `json:"status"`
	Provider  string    `json:"provider"`
	CheckedAt time.Time `json:"checked_at"`
}

// Client is a client for the verification provider.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a verification client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type verifyRequest struct {
	AccountID string `json:"account_id"`
	Address   string `json:"address,omitempty"`
}

// Verify runs an identity verification check for the account.
func (c *Client) Verify(ctx context.Context, accountID, address string) (Result, error) {
	body, err := json.Marshal(verifyRequest{AccountID: accountID, Address: address})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checks", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("verification provider returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("failed to decode verification response: %w", err)
	}
	return result, nil
}

// MockResult builds the deterministic mock value handed to the effect
// guard for verification checks performed under impersonation.
func MockResult(accountID string, at time.Time) Result {
	return Result{
		AccountID: accountID,
		Status:    "approved",
		Provider:  "mock",
		CheckedAt: at.UTC(),
	}
}
