package api

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/RowanDark/cipherlab/internal/cipher"
	"github.com/RowanDark/cipherlab/internal/logging"
	"github.com/RowanDark/cipherlab/internal/observability/metrics"
	"github.com/RowanDark/cipherlab/internal/wordstats"
)

// defaultTargetRecognition is the word recognition percentage the mobile
// client asks for when it sends none.
const defaultTargetRecognition = 90

// LegacyDecryptResponse is the /api/vigenere/decrypt reply.
type LegacyDecryptResponse struct {
	DecryptedText string          `json:"decryptedText"`
	WordStats     wordstats.Stats `json:"wordStats"`
}

// LegacyCrackResult is one entry of LegacyCrackResponse.TopResults.
type LegacyCrackResult struct {
	Key                string          `json:"key"`
	KeyLength          int             `json:"keyLength"`
	Preview            string          `json:"preview"`
	Score              float64         `json:"score"`
	ChiSquared         float64         `json:"chiSquared"`
	IndexOfCoincidence float64         `json:"indexOfCoincidence"`
	WordStats          wordstats.Stats `json:"wordStats"`
}

// LegacyCrackResponse is the /api/vigenere/crack reply.
type LegacyCrackResponse struct {
	TopResults     []LegacyCrackResult `json:"topResults"`
	BestKey        string              `json:"bestKey"`
	FullDecryption string              `json:"fullDecryption"`
	TargetReached  bool                `json:"targetReached"`
	UseBruteForce  bool                `json:"useBruteForce"`
}

func (s *Server) handleLegacyVigenereDecrypt(w http.ResponseWriter, r *http.Request) {
	body, ok := s.crackRequest(w, r)
	if !ok {
		return
	}
	ciphertext := ciphertextField(body)
	key := stringField(body, "key")
	if strings.TrimSpace(ciphertext) == "" {
		s.writeError(w, r, cipher.NewUserError(cipher.KindEmptyInput, "Please enter ciphertext"))
		return
	}
	plaintext, err := cipher.Decrypt(cipher.Vigenere, ciphertext, key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	metrics.RecordCipherOperation(string(cipher.Vigenere), string(cipher.OperationTypeDecrypt))
	_ = s.audit.Emit(logging.AuditEvent{
		RequestID: logging.RequestIDFromContext(r.Context()),
		EventType: logging.EventDecrypt,
		Cipher:    string(cipher.Vigenere),
		Decision:  logging.DecisionAllow,
		Metadata:  map[string]any{"key": key, "ciphertext": ciphertext},
	})

	s.writeJSON(w, http.StatusOK, LegacyDecryptResponse{
		DecryptedText: plaintext,
		WordStats:     wordstats.Recognize(plaintext),
	})
}

// handleLegacyVigenereCrack serves the remote crack mode of the mobile client.
// maxIterations bounds the keys tried per key length; useBruteForce is
// accepted and echoed.
func (s *Server) handleLegacyVigenereCrack(w http.ResponseWriter, r *http.Request) {
	body, ok := s.crackRequest(w, r)
	if !ok {
		return
	}
	opts := vigenereOptions(body)
	if n, ok := intField(body, "maxIterations"); ok && n > 0 {
		opts.CombinationCap = n
	}
	target := float64(defaultTargetRecognition)
	if v := body.Get("targetRecognition"); v.Exists() && v.Type != gjson.Null {
		target = v.Float()
	}

	result, err := s.crack.Vigenere(r.Context(), ciphertextField(body), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := LegacyCrackResponse{
		TopResults:     make([]LegacyCrackResult, 0, len(result.TopResults)),
		BestKey:        result.BestKey,
		FullDecryption: result.BestPlaintext,
		UseBruteForce:  body.Get("useBruteForce").Bool(),
	}
	for _, c := range result.TopResults {
		resp.TopResults = append(resp.TopResults, LegacyCrackResult{
			Key:                c.Key,
			KeyLength:          c.KeyLength,
			Preview:            c.Preview,
			Score:              c.Score,
			ChiSquared:         c.ChiSquared,
			IndexOfCoincidence: c.IndexOfCoincidence,
			WordStats:          wordstats.Recognize(c.Plaintext),
		})
	}
	if len(resp.TopResults) > 0 {
		resp.TargetReached = resp.TopResults[0].WordStats.Percentage >= target
	}
	s.writeJSON(w, http.StatusOK, resp)
}
