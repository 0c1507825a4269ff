// apps/go-server/internal/client/client.go
//
// HTTP client for the quiz JSON API. Implements tracker.Backend so the
// reveal tracker can play against a remote server.
//
// Error mapping:
//   - 404 → quiz.ErrNotFound (wrapped with the server message)
//   - any other non-2xx → *APIError carrying status and {error, message}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/robalobadob/redactle/apps/go-server/internal/quiz"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Label   string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Label, e.Message, e.Status)
	}
	return fmt.Sprintf("request failed (HTTP %d)", e.Status)
}

// Client talks to one server.
type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a Client for baseURL (e.g. http://localhost:3001).
// A nil hc uses a client with a 10s timeout.
func New(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url must be absolute: %q", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: u, http: hc}, nil
}

// RandomQuiz fetches GET /api/quiz/.
func (c *Client) RandomQuiz(ctx context.Context) (quiz.View, error) {
	var v quiz.View
	err := c.do(ctx, http.MethodGet, "/api/quiz/", nil, &v)
	return v, err
}

// Answer fetches GET /api/quiz/{id}/answer.
func (c *Client) Answer(ctx context.Context, id string) (quiz.Answer, error) {
	var a quiz.Answer
	err := c.do(ctx, http.MethodGet, "/api/quiz/"+url.PathEscape(id)+"/answer", nil, &a)
	return a, err
}

// Guess posts to /api/quiz/{id}/guess.
func (c *Client) Guess(ctx context.Context, id, guess string) (quiz.GuessResponse, error) {
	var g quiz.GuessResponse
	body := map[string]string{"guess": guess}
	err := c.do(ctx, http.MethodPost, "/api/quiz/"+url.PathEscape(id)+"/guess", body, &g)
	return g, err
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) error {
	var res struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &res); err != nil {
		return err
	}
	if res.Status != "ok" {
		return fmt.Errorf("server unhealthy: %q", res.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{Status: res.StatusCode}
		_ = json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(apiErr)
		if res.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", quiz.ErrNotFound, apiErr.Message)
		}
		return apiErr
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
