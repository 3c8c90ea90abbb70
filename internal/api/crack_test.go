package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/RowanDark/cipherlab/internal/cipher"
	"github.com/RowanDark/cipherlab/internal/crack"
)

func TestCrackCaesar(t *testing.T) {
	srv, audit := setupTestServer(t, "")
	h := srv.Handler()

	payload := `{"ciphertext":` + strconv.Quote(cipher.CaesarEncrypt(dickens, 11)) + `}`
	rr := doRequest(t, h, http.MethodPost, "/api/v1/crack/caesar", payload, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var result crack.CaesarResult
	decodeBody(t, rr, &result)
	if result.BestShift != 11 {
		t.Fatalf("expected best shift 11, got %d", result.BestShift)
	}
	if result.BestPlaintext != dickens {
		t.Fatalf("unexpected plaintext %q", result.BestPlaintext)
	}
	if len(result.TopByScore) != 5 || len(result.TopByChiSquared) != 3 {
		t.Fatalf("expected 5+3 candidates, got %d+%d", len(result.TopByScore), len(result.TopByChiSquared))
	}

	requestID := rr.Header().Get(RequestIDHeader)
	if !strings.Contains(audit.String(), `"request_id":"`+requestID+`"`) {
		t.Fatalf("crack audit event should carry the request id %s: %s", requestID, audit.String())
	}
}

func TestCrackVigenere(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	ct := strconv.Quote(cipher.VigenereEncrypt(dickens, "KEY"))
	tests := []struct {
		name    string
		payload string
		wantKey string
		maxLen  int
	}{
		{"numeric max key length", `{"ciphertext":` + ct + `,"maxKeyLength":4}`, "KEY", 4},
		{"string max key length", `{"ciphertext":` + ct + `,"maxKeyLength":"4"}`, "KEY", 4},
		{"default max key length", `{"ciphertext":` + ct + `}`, "KEY", 10},
		{"unparseable max key length falls back", `{"ciphertext":` + ct + `,"maxKeyLength":"lots"}`, "KEY", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, "/api/v1/crack/vigenere", tt.payload, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var result crack.VigenereResult
			decodeBody(t, rr, &result)
			if result.BestKey != tt.wantKey {
				t.Fatalf("expected key %s, got %s", tt.wantKey, result.BestKey)
			}
			for _, c := range result.TopResults {
				if c.KeyLength > tt.maxLen {
					t.Fatalf("key %s exceeds max length %d", c.Key, tt.maxLen)
				}
			}
		})
	}
}

func TestCrackRailFence(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	rr := doRequest(t, h, http.MethodPost, "/api/v1/crack/railfence", `{"ciphertext":"WECRLTEERDSOEEFEAOCAIVDEN"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var result crack.RailFenceResult
	decodeBody(t, rr, &result)
	if len(result.Candidates) != 9 {
		t.Fatalf("expected 9 candidates, got %d", len(result.Candidates))
	}
	if result.Candidates[1].Rails != 3 || result.Candidates[1].Text != "WEAREDISCOVEREDFLEEATONCE" {
		t.Fatalf("unexpected 3-rail candidate %+v", result.Candidates[1])
	}

	rr = doRequest(t, h, http.MethodPost, "/api/v1/crack/railfence", `{"ciphertext":"abc"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for short text, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"candidates":[]`) {
		t.Fatalf("expected an empty candidate list, got %s", rr.Body.String())
	}
}

func TestCrackErrors(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	tests := []struct {
		name       string
		endpoint   string
		method     string
		payload    string
		wantStatus int
	}{
		{"caesar wrong method", "/api/v1/crack/caesar", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"caesar no letters", "/api/v1/crack/caesar", http.MethodPost, `{"ciphertext":"1234"}`, http.StatusBadRequest},
		{"vigenere empty body", "/api/v1/crack/vigenere", http.MethodPost, ``, http.StatusBadRequest},
		{"vigenere invalid json", "/api/v1/crack/vigenere", http.MethodPost, `[1,2]`, http.StatusBadRequest},
		{"railfence blank", "/api/v1/crack/railfence", http.MethodPost, `{"ciphertext":"   "}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, tt.method, tt.endpoint, tt.payload, nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestCrackContextErrors(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	tests := []struct {
		name       string
		ctx        context.Context
		wantStatus int
	}{
		{"canceled request returns 408", canceled, http.StatusRequestTimeout},
		{"expired request returns 504", expired, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/crack/caesar", strings.NewReader(`{"ciphertext":"Khoor"}`))
			req = req.WithContext(tt.ctx)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestLegacyVigenereDecrypt(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	rr := doRequest(t, h, http.MethodPost, "/api/vigenere/decrypt", `{"ciphertext":"Lxfopv ef rnhr!","key":"lemon"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp LegacyDecryptResponse
	decodeBody(t, rr, &resp)
	if resp.DecryptedText != "Attack at dawn!" {
		t.Fatalf("unexpected plaintext %q", resp.DecryptedText)
	}
	if resp.WordStats.Total != 3 || resp.WordStats.Count != 3 || resp.WordStats.Percentage != 100 {
		t.Fatalf("unexpected word stats %+v", resp.WordStats)
	}

	rr = doRequest(t, h, http.MethodPost, "/api/vigenere/decrypt", `{"ciphertext":"abc","key":""}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing key, got %d", rr.Code)
	}
}

func TestLegacyVigenereCrack(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	ct := strconv.Quote(cipher.VigenereEncrypt(dickens, "KEY"))
	payload := `{"ciphertext":` + ct + `,"maxKeyLength":"6","targetRecognition":"0","maxIterations":"40","useBruteForce":true}`
	rr := doRequest(t, h, http.MethodPost, "/api/vigenere/crack", payload, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp LegacyCrackResponse
	decodeBody(t, rr, &resp)
	if resp.BestKey != "KEY" || resp.TopResults[0].Key != "KEY" {
		t.Fatalf("expected KEY, got %s", resp.BestKey)
	}
	if resp.FullDecryption != dickens {
		t.Fatalf("unexpected decryption %q", resp.FullDecryption)
	}
	if !resp.TargetReached || !resp.UseBruteForce {
		t.Fatalf("expected target reached and brute force echoed, got %+v", resp)
	}
	if resp.TopResults[0].WordStats.Total == 0 {
		t.Fatal("expected word stats on results")
	}

	payload = `{"ciphertext":` + ct + `,"maxKeyLength":3,"targetRecognition":101}`
	rr = doRequest(t, h, http.MethodPost, "/api/vigenere/crack", payload, nil)
	decodeBody(t, rr, &resp)
	if resp.TargetReached {
		t.Fatal("a target above 100 percent can never be reached")
	}
}
