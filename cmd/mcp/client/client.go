// Package client provides an HTTP client for the NoSwipe matching API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Match is one surfaced prospect from the user's live batch.
type Match struct {
	CandidateID string    `json:"candidate_id"`
	Score       float64   `json:"score"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MatchesResponse is the response for the matches list endpoint.
type MatchesResponse struct {
	Data []Match `json:"data"`
}

// Compatibility is a pair score against one target profile.
type Compatibility struct {
	TargetID string  `json:"target_id"`
	Score    float64 `json:"score"`
}

// FeedbackResult reports a recorded feedback signal.
type FeedbackResult struct {
	Kind       string  `json:"kind"`
	Score      float64 `json:"score"`
	RetrainDue bool    `json:"retrain_due"`
}

// CalibrationResult reports a completed preference model calibration.
type CalibrationResult struct {
	Samples          int    `json:"samples"`
	ExtractorVersion string `json:"extractor_version"`
}

// RetrainStatus reports whether recent feedback warrants recalibration.
type RetrainStatus struct {
	RetrainRecommended bool `json:"retrain_recommended"`
	RecentEvents       int  `json:"recent_events"`
	Threshold          int  `json:"threshold"`
}

// Client is an HTTP client for the NoSwipe matching API.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	return resp, nil
}

func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// ListMatches retrieves the authenticated user's live match batch.
func (c *Client) ListMatches(ctx context.Context) ([]Match, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/matches")
	if err != nil {
		return nil, err
	}

	var result MatchesResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return result.Data, nil
}

// GetCompatibility scores the authenticated user against one other profile.
func (c *Client) GetCompatibility(ctx context.Context, targetID string) (*Compatibility, error) {
	path := "/v1/users/" + url.PathEscape(targetID) + "/compatibility"
	resp, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var result Compatibility
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// SendFeedback records one explicit or implicit feedback signal toward a
// target profile.
func (c *Client) SendFeedback(ctx context.Context, kind, targetID string) (*FeedbackResult, error) {
	path := "/v1/feedback/" + url.PathEscape(kind) + "/" + url.PathEscape(targetID)
	resp, err := c.doRequest(ctx, http.MethodPost, path)
	if err != nil {
		return nil, err
	}

	var result FeedbackResult
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Calibrate fits the authenticated user's preference model from their
// photo ratings.
func (c *Client) Calibrate(ctx context.Context) (*CalibrationResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/calibrate")
	if err != nil {
		return nil, err
	}

	var result CalibrationResult
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetRetrainStatus reports whether the authenticated user's recent
// feedback volume warrants recalibration.
func (c *Client) GetRetrainStatus(ctx context.Context) (*RetrainStatus, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/retrain-status")
	if err != nil {
		return nil, err
	}

	var result RetrainStatus
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
