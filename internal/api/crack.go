package api

import (
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/RowanDark/cipherlab/internal/crack"
)

func (s *Server) handleCrackCaesar(w http.ResponseWriter, r *http.Request) {
	body, ok := s.crackRequest(w, r)
	if !ok {
		return
	}
	result, err := s.crack.Caesar(r.Context(), ciphertextField(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleCrackVigenere accepts maxKeyLength, shiftsPerPosition and
// combinationCap alongside the ciphertext. Omitted fields fall back to the
// service defaults.
func (s *Server) handleCrackVigenere(w http.ResponseWriter, r *http.Request) {
	body, ok := s.crackRequest(w, r)
	if !ok {
		return
	}
	result, err := s.crack.Vigenere(r.Context(), ciphertextField(body), vigenereOptions(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCrackRailFence(w http.ResponseWriter, r *http.Request) {
	body, ok := s.crackRequest(w, r)
	if !ok {
		return
	}
	result, err := s.crack.RailFence(r.Context(), ciphertextField(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) crackRequest(w http.ResponseWriter, r *http.Request) (gjson.Result, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return gjson.Result{}, false
	}
	body, err := readJSON(w, r)
	if err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return gjson.Result{}, false
	}
	return body, true
}

func ciphertextField(body gjson.Result) string {
	return stringField(body, "ciphertext", "text", "input")
}

func vigenereOptions(body gjson.Result) crack.VigenereOptions {
	var opts crack.VigenereOptions
	if v := body.Get("maxKeyLength"); v.Exists() && v.Type != gjson.Null {
		opts.MaxKeyLength = crack.ParseMaxKeyLength(v.String())
	}
	if n, ok := intField(body, "shiftsPerPosition"); ok && n > 0 {
		opts.ShiftsPerPosition = n
	}
	if n, ok := intField(body, "combinationCap"); ok && n > 0 {
		opts.CombinationCap = n
	}
	return opts
}
