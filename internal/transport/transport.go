// Package transport wraps the HTTP client shared by every backend
// call: bearer auth injection, uniform error extraction, and session
// invalidation on auth failures.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/supportdesk-io/sdesk/internal/errors"
)

// SessionState is the slice of the session the transport needs: a
// token to attach and a way to drop it when the backend rejects it.
type SessionState interface {
	Token() (string, bool)
	Invalidate()
}

// Config holds transport settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Debug     bool
}

// Adapter is the single HTTP gateway to the backend.
type Adapter struct {
	http    *resty.Client
	session SessionState
	baseURL string
}

// New creates an Adapter. Every request carries the session token when
// one is present; unauthenticated endpoints ignore the header.
func New(cfg Config, session SessionState) *Adapter {
	base := strings.TrimRight(cfg.BaseURL, "/")

	client := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent).
		SetDebug(cfg.Debug)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if token, ok := session.Token(); ok {
			req.SetHeader("Authorization", "Bearer "+token)
		}
		return nil
	})

	return &Adapter{http: client, session: session, baseURL: base}
}

// BaseURL returns the normalized backend base URL.
func (a *Adapter) BaseURL() string {
	return a.baseURL
}

// Get performs a GET request and decodes the response into result.
func (a *Adapter) Get(ctx context.Context, path string, result interface{}) error {
	return a.do(ctx, resty.MethodGet, path, nil, result)
}

// Post performs a POST request with a JSON body.
func (a *Adapter) Post(ctx context.Context, path string, body, result interface{}) error {
	return a.do(ctx, resty.MethodPost, path, body, result)
}

// Patch performs a PATCH request with a JSON body.
func (a *Adapter) Patch(ctx context.Context, path string, body, result interface{}) error {
	return a.do(ctx, resty.MethodPatch, path, body, result)
}

// Delete performs a DELETE request.
func (a *Adapter) Delete(ctx context.Context, path string) error {
	return a.do(ctx, resty.MethodDelete, path, nil, nil)
}

// Upload sends a file as multipart form data under the "file" field.
// resty generates the multipart boundary; the request must not carry a
// fixed Content-Type.
func (a *Adapter) Upload(ctx context.Context, path, filename string, content io.Reader, result interface{}) error {
	resp, err := a.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, content).
		Post(path)
	if err != nil {
		return &errors.NetworkError{Operation: "POST", URL: a.requestURL(path), Err: err}
	}
	return a.finish(resp, result)
}

// Ping checks backend reachability without touching the session.
func (a *Adapter) Ping(ctx context.Context) error {
	var out map[string]interface{}
	return a.Get(ctx, "/health", &out)
}

func (a *Adapter) do(ctx context.Context, method, path string, body, result interface{}) error {
	req := a.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &errors.NetworkError{Operation: method, URL: a.requestURL(path), Err: err}
	}
	return a.finish(resp, result)
}

// finish maps the response to the error taxonomy and decodes the body.
func (a *Adapter) finish(resp *resty.Response, result interface{}) error {
	code := resp.StatusCode()
	switch {
	case code == 401 || code == 403:
		// The backend no longer accepts the token. Drop it so
		// the next action starts from a signed-out state.
		a.session.Invalidate()
		return errors.ErrSessionExpired
	case code == 404:
		return errors.ErrNotFound
	case !resp.IsSuccess():
		return errors.NewAPIError(code, errorMessage(resp))
	}

	if result == nil || code == 204 || len(resp.Body()) == 0 {
		return nil
	}
	if raw, ok := result.(*string); ok {
		*raw = string(resp.Body())
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("decoding %s response: %w", resp.Request.URL, err)
	}
	return nil
}

// errorMessage extracts a human-readable message from an error body.
// The backend reports errors as {"detail": "..."}; other shapes fall
// back to message/error fields, then the HTTP status text.
func errorMessage(resp *resty.Response) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		var detail string
		if len(body.Detail) > 0 && json.Unmarshal(body.Detail, &detail) == nil && detail != "" {
			return detail
		}
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	slog.Debug("unparseable error body", "status", resp.StatusCode(), "bytes", len(resp.Body()))
	return resp.Status()
}

func (a *Adapter) requestURL(path string) string {
	u, err := url.JoinPath(a.baseURL, path)
	if err != nil {
		return a.baseURL + path
	}
	return u
}
