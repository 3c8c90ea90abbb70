package api

import (
	"errors"
	"net/http"

	"github.com/RowanDark/cipherlab/internal/cipher"
	"github.com/RowanDark/cipherlab/internal/logging"
	"github.com/RowanDark/cipherlab/internal/observability/metrics"
)

// CipherResponse is returned by the encrypt, decrypt and pipeline endpoints.
type CipherResponse struct {
	Output     string   `json:"output"`
	Cipher     string   `json:"cipher,omitempty"`
	Operations []string `json:"operations,omitempty"`
}

// CipherDetectResponse lists detector guesses, most confident first.
type CipherDetectResponse struct {
	Detections []cipher.DetectionResult `json:"detections"`
}

// OperationInfo describes one registered operation.
type OperationInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Cipher      string `json:"cipher"`
	Description string `json:"description"`
	Reversible  bool   `json:"reversible"`
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	s.handleTransform(w, r, cipher.OperationTypeEncrypt)
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	s.handleTransform(w, r, cipher.OperationTypeDecrypt)
}

// handleTransform serves {cipher, text, key}. The key may also arrive under
// the cipher's own parameter name ("shift", "rails").
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request, dir cipher.OperationType) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := readJSON(w, r)
	if err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	name := stringField(body, "cipher")
	if name == "" {
		http.Error(w, "cipher field is required", http.StatusBadRequest)
		return
	}
	kind, err := cipher.ParseKind(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	text := stringField(body, "text", "input")
	key := stringField(body, "key", kind.KeyParam())

	var output string
	if dir == cipher.OperationTypeEncrypt {
		output, err = cipher.Encrypt(kind, text, key)
	} else {
		output, err = cipher.Decrypt(kind, text, key)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	metrics.RecordCipherOperation(string(kind), string(dir))
	eventType := logging.EventEncrypt
	if dir == cipher.OperationTypeDecrypt {
		eventType = logging.EventDecrypt
	}
	_ = s.audit.Emit(logging.AuditEvent{
		RequestID: logging.RequestIDFromContext(r.Context()),
		EventType: eventType,
		Cipher:    string(kind),
		Decision:  logging.DecisionAllow,
		Metadata:  map[string]any{"key": key, "text": text, "output": output},
	})

	s.writeJSON(w, http.StatusOK, CipherResponse{Output: output, Cipher: string(kind)})
}

// handlePipeline runs {input, operations: [{name, parameters}]}. With
// "reverse": true the inverse chain is run instead.
func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := readJSON(w, r)
	if err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	pipeline := &cipher.Pipeline{Reversible: body.Get("reverse").Bool()}
	for _, step := range body.Get("operations").Array() {
		cfg := cipher.OperationConfig{Name: step.Get("name").String()}
		if params, ok := step.Get("parameters").Value().(map[string]interface{}); ok {
			cfg.Parameters = params
		}
		if _, exists := cipher.GetOperation(cfg.Name); !exists {
			http.Error(w, "unknown operation: "+cfg.Name, http.StatusBadRequest)
			return
		}
		pipeline.Operations = append(pipeline.Operations, cfg)
	}
	if len(pipeline.Operations) == 0 {
		http.Error(w, "operations are required", http.StatusBadRequest)
		return
	}
	if pipeline.Reversible {
		if pipeline, err = pipeline.Reverse(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	input := stringField(body, "input", "text")
	result, err := pipeline.Execute(r.Context(), []byte(input))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	names := make([]string, len(pipeline.Operations))
	for i, op := range pipeline.Operations {
		names[i] = op.Name
	}
	_ = s.audit.Emit(logging.AuditEvent{
		RequestID: logging.RequestIDFromContext(r.Context()),
		EventType: logging.EventPipeline,
		Decision:  logging.DecisionAllow,
		Metadata:  map[string]any{"operations": names, "input": input, "output": string(result)},
	})

	s.writeJSON(w, http.StatusOK, CipherResponse{Output: string(result), Operations: names})
}

func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var ops []cipher.Operation
	if name := r.URL.Query().Get("cipher"); name != "" {
		kind, err := cipher.ParseKind(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ops = cipher.ListOperationsByCipher(kind)
	} else {
		ops = cipher.ListOperations()
	}

	opList := make([]OperationInfo, 0, len(ops))
	for _, op := range ops {
		_, reversible := op.Reverse()
		opList = append(opList, OperationInfo{
			Name:        op.Name(),
			Type:        string(op.Type()),
			Cipher:      string(op.Cipher()),
			Description: op.Description(),
			Reversible:  reversible,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"operations": opList,
	})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := readJSON(w, r)
	if err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	input := stringField(body, "input", "ciphertext", "text")
	if input == "" {
		http.Error(w, "input field is required", http.StatusBadRequest)
		return
	}

	detector := cipher.NewClassicalDetector()
	detections, err := detector.Detect(r.Context(), []byte(input))
	if err != nil {
		if errors.Is(err, cipher.ErrEmptyInput) {
			s.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":      err.Error(),
				"detections": []cipher.DetectionResult{},
			})
			return
		}
		s.writeError(w, r, err)
		return
	}
	if detections == nil {
		detections = []cipher.DetectionResult{}
	}

	meta := map[string]any{"ciphertext": input, "guesses": len(detections)}
	if len(detections) > 0 {
		meta["top"] = string(detections[0].Cipher)
	}
	_ = s.audit.Emit(logging.AuditEvent{
		RequestID: logging.RequestIDFromContext(r.Context()),
		EventType: logging.EventDetect,
		Decision:  logging.DecisionInfo,
		Metadata:  meta,
	})

	s.writeJSON(w, http.StatusOK, CipherDetectResponse{Detections: detections})
}
