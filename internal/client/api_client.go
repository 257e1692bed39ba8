package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/donlopez/quiz-client/internal/session"
)

// UnauthorizedPolicy selects what the client does when the API answers 401.
// The two deployments of this product disagreed on the right behavior, so it
// is a configuration option rather than a hardcoded choice.
type UnauthorizedPolicy string

const (
	// UnauthorizedIgnore logs the failure and propagates the error untouched.
	UnauthorizedIgnore UnauthorizedPolicy = "ignore"
	// UnauthorizedForceLogout clears the stored credential and notifies the
	// OnForceLogout hook so the UI can return to the login page.
	UnauthorizedForceLogout UnauthorizedPolicy = "forceLogout"
)

// RequestError reports a transport failure or a non-2xx response from the
// quiz API. Payload carries the raw response body, if any was readable.
type RequestError struct {
	Status  int
	Method  string
	Path    string
	Payload []byte
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request %s %s failed", e.Method, e.Path)
	}
	return fmt.Sprintf("request %s %s returned status %d", e.Method, e.Path, e.Status)
}

// Message extracts the server-supplied "message" field from the error
// payload, or "" when there is none. The UI prefers it over generic text.
func (e *RequestError) Message() string {
	if len(e.Payload) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(e.Payload, &body) != nil {
		return ""
	}
	return body.Message
}

// Client performs HTTP calls against the configured quiz API base URL,
// attaching the stored bearer credential when one is present.
type Client struct {
	BaseURL       string
	HTTPClient    *http.Client
	Sessions      *session.Store
	Policy        UnauthorizedPolicy
	OnForceLogout func()
}

func NewClient(baseURL string, timeoutSec int, sessions *session.Store, policy UnauthorizedPolicy) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		Sessions: sessions,
		Policy:   policy,
	}
}

// Do issues one API call. body is JSON-encoded when non-nil, and the
// response is decoded into out when out is non-nil. Any transport failure or
// non-2xx status comes back as a *RequestError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewV4().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Sessions.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &RequestError{Method: method, Path: path}
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{
			Status:  resp.StatusCode,
			Method:  method,
			Path:    path,
			Payload: payload,
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized(reqErr)
		}
		return reqErr
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// handleUnauthorized applies exactly one of the two configured policies.
func (c *Client) handleUnauthorized(reqErr *RequestError) {
	switch c.Policy {
	case UnauthorizedForceLogout:
		if err := c.Sessions.Clear(); err != nil {
			log.Printf("[Client] failed to clear credential after 401: %v", err)
		}
		if c.OnForceLogout != nil {
			c.OnForceLogout()
		}
	default:
		log.Printf("[Client] API returned 401 for %s %s: %s", reqErr.Method, reqErr.Path, string(reqErr.Payload))
	}
}
