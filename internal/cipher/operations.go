package cipher

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// Encrypt applies cipher kind to plaintext. key is the textual form of the
// key: a shift for Caesar, a keyword for Vigenère, a rail count for Rail
// Fence.
func Encrypt(kind Kind, plaintext, key string) (string, error) {
	return apply(kind, OperationTypeEncrypt, plaintext, key)
}

// Decrypt reverses Encrypt with the same key.
func Decrypt(kind Kind, ciphertext, key string) (string, error) {
	return apply(kind, OperationTypeDecrypt, ciphertext, key)
}

func apply(kind Kind, dir OperationType, text, key string) (string, error) {
	if text == "" {
		return "", NewUserError(KindEmptyInput, "Please enter text to transform")
	}
	encrypt := dir == OperationTypeEncrypt

	switch kind {
	case Caesar:
		shift, err := ParseShift(key)
		if err != nil {
			return "", err
		}
		if encrypt {
			return CaesarEncrypt(text, shift), nil
		}
		return CaesarDecrypt(text, shift), nil
	case Vigenere:
		if NormalizeKey(key) == "" {
			return "", NewUserError(KindInvalidKey, "Please enter a key")
		}
		if encrypt {
			return VigenereEncrypt(text, key), nil
		}
		return VigenereDecrypt(text, key), nil
	case RailFence:
		rails, err := ParseRails(key, utf8.RuneCountInString(text))
		if err != nil {
			return "", err
		}
		if encrypt {
			return RailFenceEncrypt(text, rails), nil
		}
		return RailFenceDecrypt(text, rails), nil
	default:
		return "", fmt.Errorf("unsupported cipher %q", kind)
	}
}

// keyedOp is shared by the keyed encrypt/decrypt operations.
func keyedOp(op Operation, input []byte, params map[string]interface{}) ([]byte, error) {
	kind := op.Cipher()
	key, ok := paramString(params, kind.KeyParam())
	if !ok {
		key, _ = paramString(params, "key")
	}
	out, err := apply(kind, op.Type(), string(input), key)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// Caesar Operations

// CaesarEncryptOp shifts letters forward by the "shift" parameter
type CaesarEncryptOp struct {
	BaseOperation
}

func (op *CaesarEncryptOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return keyedOp(op, input, params)
}

// CaesarDecryptOp shifts letters back by the "shift" parameter
type CaesarDecryptOp struct {
	BaseOperation
}

func (op *CaesarDecryptOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return keyedOp(op, input, params)
}

// ROT13Op is the Caesar shift of 13, which is its own inverse
type ROT13Op struct {
	BaseOperation
}

func (op *ROT13Op) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return []byte(CaesarEncrypt(string(input), 13)), nil
}

// Vigenère Operations

// VigenereEncryptOp adds the repeating "key" parameter to the letters
type VigenereEncryptOp struct {
	BaseOperation
}

func (op *VigenereEncryptOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return keyedOp(op, input, params)
}

// VigenereDecryptOp subtracts the repeating "key" parameter from the letters
type VigenereDecryptOp struct {
	BaseOperation
}

func (op *VigenereDecryptOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return keyedOp(op, input, params)
}

// Rail Fence Operations

// RailFenceEncryptOp transposes text along a zig-zag of "rails" rows
type RailFenceEncryptOp struct {
	BaseOperation
}

func (op *RailFenceEncryptOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return keyedOp(op, input, params)
}

// RailFenceDecryptOp undoes RailFenceEncryptOp
type RailFenceDecryptOp struct {
	BaseOperation
}

func (op *RailFenceDecryptOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return keyedOp(op, input, params)
}

// init registers the classical cipher operations
func init() {
	caesarEncrypt := &CaesarEncryptOp{
		BaseOperation: BaseOperation{
			NameValue:        "caesar_encrypt",
			TypeValue:        OperationTypeEncrypt,
			CipherValue:      Caesar,
			DescriptionValue: "Shift each letter forward by a fixed amount",
		},
	}
	caesarDecrypt := &CaesarDecryptOp{
		BaseOperation: BaseOperation{
			NameValue:        "caesar_decrypt",
			TypeValue:        OperationTypeDecrypt,
			CipherValue:      Caesar,
			DescriptionValue: "Shift each letter back by a fixed amount",
		},
	}
	caesarEncrypt.ReverseOp = caesarDecrypt
	caesarDecrypt.ReverseOp = caesarEncrypt

	rot13 := &ROT13Op{
		BaseOperation: BaseOperation{
			NameValue:        "rot13",
			TypeValue:        OperationTypeEncrypt,
			CipherValue:      Caesar,
			DescriptionValue: "Caesar shift of 13 (self-inverse)",
		},
	}
	rot13.ReverseOp = rot13

	vigenereEncrypt := &VigenereEncryptOp{
		BaseOperation: BaseOperation{
			NameValue:        "vigenere_encrypt",
			TypeValue:        OperationTypeEncrypt,
			CipherValue:      Vigenere,
			DescriptionValue: "Encrypt with a repeating keyword",
		},
	}
	vigenereDecrypt := &VigenereDecryptOp{
		BaseOperation: BaseOperation{
			NameValue:        "vigenere_decrypt",
			TypeValue:        OperationTypeDecrypt,
			CipherValue:      Vigenere,
			DescriptionValue: "Decrypt with a repeating keyword",
		},
	}
	vigenereEncrypt.ReverseOp = vigenereDecrypt
	vigenereDecrypt.ReverseOp = vigenereEncrypt

	railEncrypt := &RailFenceEncryptOp{
		BaseOperation: BaseOperation{
			NameValue:        "railfence_encrypt",
			TypeValue:        OperationTypeEncrypt,
			CipherValue:      RailFence,
			DescriptionValue: "Write text in a zig-zag over N rails and read row by row",
		},
	}
	railDecrypt := &RailFenceDecryptOp{
		BaseOperation: BaseOperation{
			NameValue:        "railfence_decrypt",
			TypeValue:        OperationTypeDecrypt,
			CipherValue:      RailFence,
			DescriptionValue: "Recover text written in a zig-zag over N rails",
		},
	}
	railEncrypt.ReverseOp = railDecrypt
	railDecrypt.ReverseOp = railEncrypt

	mustRegister(
		caesarEncrypt, caesarDecrypt, rot13,
		vigenereEncrypt, vigenereDecrypt,
		railEncrypt, railDecrypt,
	)
}
