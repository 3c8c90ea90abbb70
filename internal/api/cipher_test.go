package api

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/RowanDark/cipherlab/internal/cipher"
)

func TestCipherTransform(t *testing.T) {
	srv, audit := setupTestServer(t, "")
	h := srv.Handler()

	tests := []struct {
		name     string
		endpoint string
		payload  string
		want     string
	}{
		{
			name:     "caesar encrypt with numeric key",
			endpoint: "/api/v1/cipher/encrypt",
			payload:  `{"cipher":"caesar","text":"Hello, World!","key":3}`,
			want:     "Khoor, Zruog!",
		},
		{
			name:     "caesar decrypt with shift alias",
			endpoint: "/api/v1/cipher/decrypt",
			payload:  `{"cipher":"Caesar","text":"Khoor, Zruog!","shift":"3"}`,
			want:     "Hello, World!",
		},
		{
			name:     "vigenere decrypt",
			endpoint: "/api/v1/cipher/decrypt",
			payload:  `{"cipher":"vigenère","text":"Lxfopv ef rnhr!","key":"LEMON"}`,
			want:     "Attack at dawn!",
		},
		{
			name:     "rail fence decrypt with rails alias",
			endpoint: "/api/v1/cipher/decrypt",
			payload:  `{"cipher":"rail-fence","text":"WECRLTEERDSOEEFEAOCAIVDEN","rails":3}`,
			want:     "WEAREDISCOVEREDFLEEATONCE",
		},
		{
			name:     "rail fence encrypt with input alias",
			endpoint: "/api/v1/cipher/encrypt",
			payload:  `{"cipher":"railfence","input":"WEAREDISCOVEREDFLEEATONCE","key":"3"}`,
			want:     "WECRLTEERDSOEEFEAOCAIVDEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, tt.endpoint, tt.payload, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp CipherResponse
			decodeBody(t, rr, &resp)
			if resp.Output != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, resp.Output)
			}
		})
	}

	if !strings.Contains(audit.String(), `"event_type":"decrypt"`) {
		t.Fatalf("expected decrypt audit events, got %s", audit.String())
	}
	if strings.Contains(audit.String(), "LEMON") {
		t.Fatalf("audit trail must not contain keys: %s", audit.String())
	}
}

func TestCipherErrorStatusCodes(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	tests := []struct {
		name       string
		endpoint   string
		method     string
		payload    string
		wantStatus int
		wantKind   cipher.ErrorKind
	}{
		{"encrypt wrong method returns 405", "/api/v1/cipher/encrypt", http.MethodGet, "", http.StatusMethodNotAllowed, ""},
		{"encrypt invalid json returns 400", "/api/v1/cipher/encrypt", http.MethodPost, `{"cipher":`, http.StatusBadRequest, ""},
		{"encrypt missing cipher returns 400", "/api/v1/cipher/encrypt", http.MethodPost, `{"text":"abc","key":1}`, http.StatusBadRequest, ""},
		{"encrypt unknown cipher returns 400", "/api/v1/cipher/encrypt", http.MethodPost, `{"cipher":"enigma","text":"abc","key":1}`, http.StatusBadRequest, ""},
		{"encrypt empty text returns 400", "/api/v1/cipher/encrypt", http.MethodPost, `{"cipher":"caesar","text":"","key":1}`, http.StatusBadRequest, cipher.KindEmptyInput},
		{"encrypt bad shift returns 400", "/api/v1/cipher/encrypt", http.MethodPost, `{"cipher":"caesar","text":"abc","key":"three"}`, http.StatusBadRequest, cipher.KindInvalidKey},
		{"vigenere without key letters returns 400", "/api/v1/cipher/decrypt", http.MethodPost, `{"cipher":"vigenere","text":"abc","key":"123"}`, http.StatusBadRequest, cipher.KindInvalidKey},
		{"rail count too large returns 400", "/api/v1/cipher/encrypt", http.MethodPost, `{"cipher":"railfence","text":"abcd","key":4}`, http.StatusBadRequest, cipher.KindInvalidKey},
		{"pipeline missing operations returns 400", "/api/v1/cipher/pipeline", http.MethodPost, `{"input":"test"}`, http.StatusBadRequest, ""},
		{"pipeline unknown operation returns 400", "/api/v1/cipher/pipeline", http.MethodPost, `{"input":"test","operations":[{"name":"base64_decode"}]}`, http.StatusBadRequest, ""},
		{"pipeline failing step returns 400", "/api/v1/cipher/pipeline", http.MethodPost, `{"input":"test","operations":[{"name":"caesar_encrypt","parameters":{"shift":"x"}}]}`, http.StatusBadRequest, cipher.KindInvalidKey},
		{"operations wrong method returns 405", "/api/v1/cipher/operations", http.MethodPost, "", http.StatusMethodNotAllowed, ""},
		{"operations unknown cipher filter returns 400", "/api/v1/cipher/operations?cipher=enigma", http.MethodGet, "", http.StatusBadRequest, ""},
		{"detect empty input returns 400", "/api/v1/cipher/detect", http.MethodPost, `{"input":""}`, http.StatusBadRequest, ""},
		{"detect without letters returns 422", "/api/v1/cipher/detect", http.MethodPost, `{"input":"12345 !!"}`, http.StatusUnprocessableEntity, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, tt.method, tt.endpoint, tt.payload, nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantKind != "" {
				var body map[string]string
				decodeBody(t, rr, &body)
				if body["kind"] != string(tt.wantKind) {
					t.Fatalf("expected kind %q, got %q", tt.wantKind, body["kind"])
				}
				if body["error"] == "" {
					t.Fatal("expected a display message")
				}
			}
		})
	}
}

func TestCipherPipelineRoundTrip(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	ops := `[{"name":"vigenere_encrypt","parameters":{"key":"lemon"}},{"name":"railfence_encrypt","parameters":{"rails":3}}]`
	rr := doRequest(t, h, http.MethodPost, "/api/v1/cipher/pipeline", `{"input":"attack at dawn","operations":`+ops+`}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var forward CipherResponse
	decodeBody(t, rr, &forward)
	if want := cipher.RailFenceEncrypt(cipher.VigenereEncrypt("attack at dawn", "lemon"), 3); forward.Output != want {
		t.Fatalf("expected %q, got %q", want, forward.Output)
	}

	payload := `{"input":` + strconv.Quote(forward.Output) + `,"reverse":true,"operations":` + ops + `}`
	rr = doRequest(t, h, http.MethodPost, "/api/v1/cipher/pipeline", payload, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var back CipherResponse
	decodeBody(t, rr, &back)
	if back.Output != "attack at dawn" {
		t.Fatalf("expected round trip, got %q", back.Output)
	}
	if strings.Join(back.Operations, ",") != "railfence_decrypt,vigenere_decrypt" {
		t.Fatalf("unexpected reversed operations %v", back.Operations)
	}
}

func TestCipherListOperations(t *testing.T) {
	srv, _ := setupTestServer(t, "")
	h := srv.Handler()

	rr := doRequest(t, h, http.MethodGet, "/api/v1/cipher/operations", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var all struct {
		Operations []OperationInfo `json:"operations"`
	}
	decodeBody(t, rr, &all)
	if len(all.Operations) != 7 {
		t.Fatalf("expected 7 operations, got %d", len(all.Operations))
	}
	for _, op := range all.Operations {
		if !op.Reversible {
			t.Fatalf("operation %s should be reversible", op.Name)
		}
	}

	rr = doRequest(t, h, http.MethodGet, "/api/v1/cipher/operations?cipher=rail-fence", "", nil)
	var rail struct {
		Operations []OperationInfo `json:"operations"`
	}
	decodeBody(t, rr, &rail)
	if len(rail.Operations) != 2 {
		t.Fatalf("expected 2 rail fence operations, got %d", len(rail.Operations))
	}
}

func TestCipherDetect(t *testing.T) {
	srv, audit := setupTestServer(t, "")
	h := srv.Handler()

	payload := `{"input":` + strconv.Quote(cipher.CaesarEncrypt(dickens, 7)) + `}`
	rr := doRequest(t, h, http.MethodPost, "/api/v1/cipher/detect", payload, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp CipherDetectResponse
	decodeBody(t, rr, &resp)
	if len(resp.Detections) == 0 {
		t.Fatal("expected detections")
	}
	top := resp.Detections[0]
	if top.Cipher != cipher.Caesar {
		t.Fatalf("expected caesar first, got %s", top.Cipher)
	}
	if top.Shift == nil || *top.Shift != 7 {
		t.Fatalf("expected shift 7, got %v", top.Shift)
	}
	if !strings.Contains(audit.String(), `"event_type":"detect"`) {
		t.Fatalf("expected detect audit event, got %s", audit.String())
	}
}
