package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/RowanDark/cipherlab/internal/cipher"
)

const maxBodyBytes = 1 << 20

var errInvalidJSON = errors.New("invalid json")

// readJSON reads the request body for field-by-field access. Clients send
// numbers both as JSON numbers and as strings, so handlers pick fields out
// with gjson instead of decoding into fixed structs.
func readJSON(w http.ResponseWriter, r *http.Request) (gjson.Result, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return gjson.Result{}, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return gjson.Parse("{}"), nil
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errInvalidJSON
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return gjson.Result{}, errInvalidJSON
	}
	return parsed, nil
}

// stringField returns the first of paths present in body, rendered as text.
func stringField(body gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := body.Get(p); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return ""
}

// intField reads an integer sent either as a number or a numeric string.
func intField(body gjson.Result, path string) (int, bool) {
	v := body.Get(path)
	switch v.Type {
	case gjson.Number:
		return int(v.Int()), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// writeError maps err onto a status code. Context errors come first so a
// cancelled request is never reported as a user mistake.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(r.Context().Err(), context.Canceled):
		http.Error(w, "request canceled", http.StatusRequestTimeout)
		return
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "request timeout", http.StatusGatewayTimeout)
		return
	}
	if ue, ok := cipher.AsUserError(err); ok {
		status := http.StatusBadRequest
		if ue.Kind == cipher.KindNoViableCandidates {
			status = http.StatusUnprocessableEntity
		}
		s.writeJSON(w, status, map[string]string{
			"error": ue.Message,
			"kind":  string(ue.Kind),
		})
		return
	}
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
