package cipher

import (
	"context"
	"fmt"
)

// OperationType defines the direction of a transformation operation
type OperationType string

const (
	OperationTypeEncrypt OperationType = "encrypt"
	OperationTypeDecrypt OperationType = "decrypt"
)

// Operation represents a single transformation that can be applied to text
type Operation interface {
	// Name returns the unique identifier for this operation
	Name() string

	// Type returns the direction of this operation
	Type() OperationType

	// Cipher returns the cipher family the operation belongs to
	Cipher() Kind

	// Description returns a human-readable description
	Description() string

	// Execute applies the operation to the input text. params carries the
	// key material ("shift", "key" or "rails").
	Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error)

	// Reverse returns the inverse operation if available
	Reverse() (Operation, bool)
}

// OperationConfig represents one step of a pipeline
type OperationConfig struct {
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// Pipeline represents a chain of operations that are applied in order
type Pipeline struct {
	Operations []OperationConfig `json:"operations"`
	Reversible bool              `json:"reversible"`
}

// Execute runs the pipeline on the input text
func (p *Pipeline) Execute(ctx context.Context, input []byte) ([]byte, error) {
	result := input
	var err error

	for i, opConfig := range p.Operations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		op, exists := GetOperation(opConfig.Name)
		if !exists {
			return nil, fmt.Errorf("unknown operation at step %d: %s", i, opConfig.Name)
		}

		result, err = op.Execute(ctx, result, opConfig.Parameters)
		if err != nil {
			return nil, fmt.Errorf("operation %s failed at step %d: %w", opConfig.Name, i, err)
		}
	}

	return result, nil
}

// Reverse builds the pipeline that undoes p. Steps are inverted and run in
// the opposite order; each inverse reuses the parameters of its step since
// every cipher here decrypts with the key it encrypted with.
func (p *Pipeline) Reverse() (*Pipeline, error) {
	if !p.Reversible {
		return nil, fmt.Errorf("pipeline is not reversible")
	}

	reversed := &Pipeline{
		Operations: make([]OperationConfig, len(p.Operations)),
		Reversible: true,
	}

	for i, opConfig := range p.Operations {
		op, exists := GetOperation(opConfig.Name)
		if !exists {
			return nil, fmt.Errorf("unknown operation: %s", opConfig.Name)
		}

		reverseOp, ok := op.Reverse()
		if !ok {
			return nil, fmt.Errorf("operation %s is not reversible", opConfig.Name)
		}

		reversed.Operations[len(p.Operations)-1-i] = OperationConfig{
			Name:       reverseOp.Name(),
			Parameters: opConfig.Parameters,
		}
	}

	return reversed, nil
}

// DetectionResult is one guess at which cipher produced a ciphertext
type DetectionResult struct {
	Cipher     Kind    `json:"cipher"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
	Reasoning  string  `json:"reasoning"`
	// KeyLengthEstimate is the Friedman estimate for Vigenère guesses
	KeyLengthEstimate int `json:"key_length_estimate,omitempty"`
	// Shift is the most likely Caesar shift for Caesar guesses
	Shift *int `json:"shift,omitempty"`
}

// Detector identifies the cipher family of a ciphertext
type Detector interface {
	// Detect attempts to identify the cipher used to produce input
	Detect(ctx context.Context, input []byte) ([]DetectionResult, error)

	// SupportedCiphers returns the cipher families this detector can identify
	SupportedCiphers() []Kind
}

// BaseOperation provides common functionality for operations
type BaseOperation struct {
	NameValue        string
	TypeValue        OperationType
	CipherValue      Kind
	DescriptionValue string
	ReverseOp        Operation
}

func (b *BaseOperation) Name() string {
	return b.NameValue
}

func (b *BaseOperation) Type() OperationType {
	return b.TypeValue
}

func (b *BaseOperation) Cipher() Kind {
	return b.CipherValue
}

func (b *BaseOperation) Description() string {
	return b.DescriptionValue
}

func (b *BaseOperation) Reverse() (Operation, bool) {
	if b.ReverseOp == nil {
		return nil, false
	}
	return b.ReverseOp, true
}
