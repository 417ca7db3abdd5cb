// Package assistant is a single-turn client for the Gemini
// generateContent endpoint backing the in-app chat.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
)

var (
	ErrNoAPIKey        = errors.New("assistant api key is not configured")
	ErrNoData          = errors.New("no data received from server")
	ErrInvalidResponse = errors.New("invalid json structure in response")
)

// HTTPError is a non-2xx answer; Body is the raw response text.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.Status, e.Body)
}

// Config selects the endpoint. Empty BaseURL and Model fall back to the
// defaults.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

func (c *Client) Model() string {
	return c.cfg.Model
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Send posts one user message and returns the first candidate's text.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}

	payload, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: message}}}}})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") +
		"/v1/models/" + url.PathEscape(c.cfg.Model) + ":generateContent?key=" + url.QueryEscape(c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(body)
		if msg == "" {
			msg = "Unknown error"
		}
		return "", &HTTPError{Status: resp.StatusCode, Body: msg}
	}
	if len(body) == 0 {
		return "", ErrNoData
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrInvalidResponse
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
