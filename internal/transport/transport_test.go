package transport

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportdesk-io/sdesk/internal/errors"
)

// fakeSession is a minimal SessionState for transport tests.
type fakeSession struct {
	token       string
	invalidated bool
}

func (s *fakeSession) Token() (string, bool) { return s.token, s.token != "" }

func (s *fakeSession) Invalidate() { s.invalidated = true; s.token = "" }

func newTestAdapter(baseURL string, session *fakeSession) *Adapter {
	return New(Config{
		BaseURL:   baseURL,
		Timeout:   2 * time.Second,
		UserAgent: "sdesk-test",
	}, session)
}

func TestBearerHeaderWhenLoggedIn(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	session := &fakeSession{token: "tok-1"}
	adapter := newTestAdapter(server.URL, session)

	var out map[string]any
	require.NoError(t, adapter.Get(context.Background(), "/tickets", &out))
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestNoBearerHeaderWhenLoggedOut(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL, &fakeSession{})

	var out map[string]any
	require.NoError(t, adapter.Get(context.Background(), "/health", &out))
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedInvalidatesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	session := &fakeSession{token: "stale"}
	adapter := newTestAdapter(server.URL, session)

	err := adapter.Get(context.Background(), "/tickets", nil)
	assert.True(t, errors.IsSessionExpired(err))
	assert.True(t, session.invalidated)
}

func TestForbiddenInvalidatesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	session := &fakeSession{token: "tok"}
	adapter := newTestAdapter(server.URL, session)

	err := adapter.Get(context.Background(), "/tickets/x/audit", nil)
	assert.True(t, errors.IsSessionExpired(err))
	assert.True(t, session.invalidated)
}

func TestNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	adapter := newTestAdapter(server.URL, &fakeSession{token: "tok"})

	err := adapter.Get(context.Background(), "/tickets/missing", nil)
	assert.True(t, errors.IsNotFound(err))
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail field", `{"detail": "title is required"}`, "title is required"},
		{"message field", `{"message": "too many requests"}`, "too many requests"},
		{"error field", `{"error": "nope"}`, "nope"},
		{"non-string detail falls through", `{"detail": [{"loc": "title"}]}`, "422 "},
		{"empty body", ``, "422 "},
		{"garbage body", `<html>`, "422 "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			adapter := newTestAdapter(server.URL, &fakeSession{})

			err := adapter.Get(context.Background(), "/tickets", nil)
			require.Error(t, err)
			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
			assert.Contains(t, apiErr.Message, strings.TrimSpace(tt.want))
		})
	}
}

func TestPayloadTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		io.WriteString(w, `{"detail": "attachment exceeds 5MB"}`)
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL, &fakeSession{token: "tok"})

	err := adapter.Upload(context.Background(), "/tickets/1/attachments", "big.bin", strings.NewReader("xx"), nil)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.StatusCode)
	assert.Equal(t, "attachment exceeds 5MB", apiErr.Message)
}

func TestUploadIsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)
		assert.NotEmpty(t, params["boundary"])

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notes.txt", header.Filename)
		content, _ := io.ReadAll(file)
		assert.Equal(t, "hello", string(content))

		json.NewEncoder(w).Encode(map[string]string{"id": "a1"})
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL, &fakeSession{token: "tok"})

	var out map[string]string
	err := adapter.Upload(context.Background(), "/tickets/1/attachments", "notes.txt", strings.NewReader("hello"), &out)
	require.NoError(t, err)
	assert.Equal(t, "a1", out["id"])
}

func TestNoContentResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL, &fakeSession{token: "tok"})

	var out map[string]any
	assert.NoError(t, adapter.Delete(context.Background(), "/tickets/1"))
	assert.NoError(t, adapter.Patch(context.Background(), "/tickets/1/status", map[string]string{"status": "open"}, &out))
}

func TestRawTextResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "pong")
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL, &fakeSession{})

	var raw string
	require.NoError(t, adapter.Get(context.Background(), "/ping", &raw))
	assert.Equal(t, "pong", raw)
}

func TestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	adapter := newTestAdapter(server.URL, &fakeSession{})

	err := adapter.Get(context.Background(), "/health", nil)
	assert.True(t, errors.IsNetwork(err))
}
