package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBodyBytes caps how much of a failed response body is carried in
// an APIError. Admin API error bodies are small JSON objects; the cap only
// guards against a misbehaving proxy returning an HTML error page.
const maxErrorBodyBytes = 512

// Client calls the Twitch-account-linking admin API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an admin API client for the given base URL and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is returned when the admin API responds with a non-2xx status.
// It carries the status and a snippet of the response body so command
// handlers can surface a useful failure message without re-reading anything.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("admin API returned %s", e.Status)
	}
	return fmt.Sprintf("admin API returned %s: %s", e.Status, e.Body)
}

// RegisterRequest is the payload for POST /admin/register.
type RegisterRequest struct {
	Login         string `json:"login"`
	DiscordUserID string `json:"discord_user_id"`
}

// RegisterResponse is the admin API's reply to a register call.
// TwitchID is a json.Number because the API has returned it both as a
// number and as a string across versions.
type RegisterResponse struct {
	TwitchID json.Number `json:"twitch_id"`
	Created  []string    `json:"created"`
}

// UnregisterRequest is the payload for POST /admin/unregister.
// Fields left empty are omitted from the wire payload entirely.
type UnregisterRequest struct {
	Login         string `json:"login,omitempty"`
	BroadcasterID string `json:"broadcaster_id,omitempty"`
}

// UnregisterResponse is the admin API's reply to an unregister call.
type UnregisterResponse struct {
	BroadcasterID json.Number `json:"broadcaster_id"`
}

// Register links a Twitch login to a Discord user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.post(ctx, "/admin/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unregister removes a link by login and/or broadcaster ID.
func (c *Client) Unregister(ctx context.Context, req UnregisterRequest) (*UnregisterResponse, error) {
	var resp UnregisterResponse
	if err := c.post(ctx, "/admin/unregister", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends an authenticated JSON POST and decodes the response into out.
// An empty or non-JSON success body is not an error; out is left at its
// zero value. A non-2xx status produces an *APIError.
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("admin API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read admin API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(respBody))
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       snippet,
		}
	}

	if out != nil && len(respBody) > 0 {
		// Some admin endpoints reply with an empty or non-JSON body on
		// success; treat that the same as an empty object.
		_ = json.Unmarshal(respBody, out)
	}
	return nil
}
