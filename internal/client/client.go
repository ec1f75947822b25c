// Package client talks to the remote wine tournament API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"winetasting/internal/models"
)

// BasePath is where the tournament routes live on the API host.
const BasePath = "/api/v1/tournament"

// maxBody caps how much of a response body is read.
const maxBody = 1 << 20

// Client is a typed wrapper around the tournament REST endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a Client for the API rooted at apiURL (scheme and host, optionally a path prefix).
// Every request is bounded by timeout unless the caller's context ends sooner.
func New(apiURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(apiURL, "/") + BasePath,
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// SuggestWines asks the server for a draft participant and a suggested wine list.
// The length of the returned list is decided by the server.
func (c *Client) SuggestWines(ctx context.Context, name string, totalWines int) (*models.SuggestResponse, error) {
	q := url.Values{}
	q.Set("total_wines", strconv.Itoa(totalWines))

	var resp models.SuggestResponse
	if err := c.do(ctx, http.MethodPost, "/participants/suggest?"+q.Encode(), models.SuggestRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfirmParticipant stores the participant with its (possibly edited) wines.
func (c *Client) ConfirmParticipant(ctx context.Context, p models.Participant) (*models.Confirmation, error) {
	var resp models.Confirmation
	if err := c.do(ctx, http.MethodPost, "/participants/confirm", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListParticipants returns every confirmed participant in server order.
func (c *Client) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	var resp []models.Participant
	if err := c.do(ctx, http.MethodGet, "/participants", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SubmitVote records a ranked vote.
func (c *Client) SubmitVote(ctx context.Context, v models.Vote) (*models.Confirmation, error) {
	var resp models.Confirmation
	if err := c.do(ctx, http.MethodPost, "/votes", v, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Leaderboard returns the wines ranked by the server.
func (c *Client) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var resp []models.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/leaderboard", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// VotingStats returns the voting completion metrics.
func (c *Client) VotingStats(ctx context.Context) (*models.VotingStats, error) {
	var resp models.VotingStats
	if err := c.do(ctx, http.MethodGet, "/voting-stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
