package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-logr/logr"
)

func serveTestRequest(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postGraphQL(t *testing.T, h http.Handler, query string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		t.Fatalf("failed to encode request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return serveTestRequest(t, h, req)
}

func TestRouter(t *testing.T) {
	testCore, cleanup := setupQueryTestCore(t)
	defer cleanup()

	router := newRouter(testCore, logr.Discard(), true)

	t.Run("POST query", func(t *testing.T) {
		rec := postGraphQL(t, router, `{ authorCount bookCount(authorName: "anyone") }`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `{"data":{"authorCount":5,"bookCount":7}}` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("POST mutation", func(t *testing.T) {
		rec := postGraphQL(t, router, `mutation { editAuthor(name: "Sandi Metz", setBornTo: 1955) { name born } }`)
		if got := strings.TrimSpace(rec.Body.String()); got != `{"data":{"editAuthor":{"name":"Sandi Metz","born":1955}}}` {
			t.Errorf("body = %s", got)
		}

		author, err := testCore.AuthorByName("Sandi Metz")
		if err != nil {
			t.Fatalf("AuthorByName() error = %v", err)
		}
		if author.Born == nil || *author.Born != 1955 {
			t.Errorf("born = %v, want 1955", author.Born)
		}
	})

	t.Run("POST mutation error", func(t *testing.T) {
		rec := postGraphQL(t, router, `mutation { editAuthor(name: "Nonexistent", setBornTo: 1900) { name } }`)

		var resp struct {
			Errors []struct {
				Message string   `json:"message"`
				Path    []string `json:"path"`
			} `json:"errors"`
			Data map[string]any `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(resp.Errors) != 1 || resp.Errors[0].Message != `author not found: "Nonexistent"` {
			t.Errorf("errors = %+v", resp.Errors)
		}
		if v, ok := resp.Data["editAuthor"]; !ok || v != nil {
			t.Errorf("data = %v, want editAuthor: null", resp.Data)
		}
	})

	t.Run("GET serves the playground", func(t *testing.T) {
		rec := serveTestRequest(t, router, httptest.NewRequest(http.MethodGet, "/graphql", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "<html") {
			t.Error("expected playground HTML")
		}
	})

	t.Run("GET with query executes it", func(t *testing.T) {
		target := "/graphql?query=" + url.QueryEscape(`{ authorCount }`)
		rec := serveTestRequest(t, router, httptest.NewRequest(http.MethodGet, target, nil))
		if got := strings.TrimSpace(rec.Body.String()); got != `{"data":{"authorCount":5}}` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("healthz", func(t *testing.T) {
		rec := serveTestRequest(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
			t.Errorf("body = %s", got)
		}
	})
}

func TestRouterWithoutPlayground(t *testing.T) {
	testCore, cleanup := setupQueryTestCore(t)
	defer cleanup()

	router := newRouter(testCore, logr.Discard(), false)

	rec := serveTestRequest(t, router, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	if strings.Contains(rec.Body.String(), "<html") {
		t.Error("playground served although disabled")
	}
}

func TestRequestLogger(t *testing.T) {
	testCore, cleanup := setupQueryTestCore(t)
	defer cleanup()

	var buf bytes.Buffer
	router := newRouter(testCore, logr.New(&captureSink{w: &buf}), true)

	serveTestRequest(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	got := buf.String()
	if !strings.Contains(got, "request") || !strings.Contains(got, "/healthz") {
		t.Errorf("log = %q, want a request line for /healthz", got)
	}
}

// captureSink is a minimal logr.LogSink writing messages and values to w.
type captureSink struct {
	w *bytes.Buffer
}

func (s *captureSink) Init(logr.RuntimeInfo)  {}
func (s *captureSink) Enabled(level int) bool { return true }
func (s *captureSink) Info(level int, msg string, kv ...any) {
	s.w.WriteString(msg)
	for _, v := range kv {
		s.w.WriteString(" ")
		s.w.WriteString(strings.TrimSpace(toString(v)))
	}
	s.w.WriteString("\n")
}
func (s *captureSink) Error(err error, msg string, kv ...any) { s.Info(0, msg, kv...) }
func (s *captureSink) WithValues(kv ...any) logr.LogSink       { return s }
func (s *captureSink) WithName(name string) logr.LogSink       { return s }

func toString(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
