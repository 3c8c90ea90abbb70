package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RowanDark/cipherlab/internal/crack"
	"github.com/RowanDark/cipherlab/internal/logging"
	"github.com/RowanDark/cipherlab/internal/testutil"
)

const dickens = testutil.Dickens

// setupTestServer creates a server whose audit trail is captured in the
// returned buffer.
func setupTestServer(t *testing.T, token string) (*Server, *bytes.Buffer) {
	t.Helper()

	var audit bytes.Buffer
	auditLogger, err := logging.NewAuditLogger("api", logging.WithWriter(&audit), logging.WithoutStdout())
	if err != nil {
		t.Fatalf("failed to create audit logger: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv, err := NewServer(Config{
		Addr:      "127.0.0.1:0",
		AuthToken: token,
		Crack:     crack.NewService(crack.WithAuditLogger(auditLogger), crack.WithLogger(logger)),
		Audit:     auditLogger,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv, &audit
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func TestNewServerRequiresAddr(t *testing.T) {
	if _, err := NewServer(Config{Addr: "  "}); err == nil {
		t.Fatal("expected error for blank address")
	}
}

func TestHealthzAndRequestID(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	rr := doRequest(t, h, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
	if id := rr.Header().Get(RequestIDHeader); len(id) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", id)
	}

	rr = doRequest(t, h, http.MethodGet, "/healthz", "", http.Header{RequestIDHeader: {"abc-123"}})
	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected caller request id to be echoed, got %q", got)
	}
}

func TestMetricsEndpointRecordsRoutes(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	doRequest(t, h, http.MethodPost, "/api/v1/cipher/encrypt", `{"cipher":"caesar","text":"abc","key":1}`, nil)

	rr := doRequest(t, h, http.MethodGet, "/metrics", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	want := `cipherlab_http_requests_total{route="/api/v1/cipher/encrypt",code="200"}`
	if !strings.Contains(rr.Body.String(), want) {
		t.Fatalf("metrics output missing %s:\n%s", want, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `cipherlab_cipher_operations_total{cipher="caesar",direction="encrypt"}`) {
		t.Fatalf("metrics output missing cipher operation counter:\n%s", rr.Body.String())
	}
}

func TestAuthToken(t *testing.T) {
	srv, audit := setupTestServer(t, "s3cret")
	h := srv.Handler()

	tests := []struct {
		name       string
		path       string
		header     http.Header
		wantStatus int
	}{
		{"healthz is open", "/healthz", nil, http.StatusOK},
		{"missing token", "/api/v1/cipher/operations", nil, http.StatusUnauthorized},
		{"wrong scheme", "/api/v1/cipher/operations", http.Header{"Authorization": {"Basic s3cret"}}, http.StatusUnauthorized},
		{"wrong token", "/api/v1/cipher/operations", http.Header{"Authorization": {"Bearer nope"}}, http.StatusUnauthorized},
		{"valid token", "/api/v1/cipher/operations", http.Header{"Authorization": {"Bearer s3cret"}}, http.StatusOK},
		{"case-insensitive scheme", "/api/v1/cipher/operations", http.Header{"Authorization": {"bearer s3cret"}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodGet, tt.path, "", tt.header)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}

	if !strings.Contains(audit.String(), `"event_type":"auth_denied"`) {
		t.Fatalf("expected auth_denied audit event, got %s", audit.String())
	}
	if strings.Contains(audit.String(), "nope") {
		t.Fatalf("audit trail must not contain presented tokens: %s", audit.String())
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, audit := setupTestServer(t, "")
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never became ready: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
	if !strings.Contains(audit.String(), "http api stopped") {
		t.Fatalf("expected lifecycle events, got %s", audit.String())
	}
}
