// Package cipher implements the Caesar, Vigenère and Rail Fence ciphers and
// exposes them as named, chainable operations.
//
// # Overview
//
// Every cipher is available three ways:
//   - plain functions (CaesarEncrypt, VigenereDecrypt, RailFenceEncrypt, ...)
//     that never fail and treat degenerate keys as the identity
//   - Encrypt and Decrypt, which take the key in its textual form and return
//     a *UserError for blank input or an unusable key
//   - registered Operations that can be chained into a Pipeline
//
// # Quick Start
//
//	op, _ := cipher.GetOperation("caesar_encrypt")
//	out, _ := op.Execute(ctx, []byte("Hello, World!"), map[string]interface{}{"shift": 3})
//	// out: []byte("Khoor, Zruog!")
//
// # Transformation Pipelines
//
//	pipeline := &cipher.Pipeline{
//	    Operations: []cipher.OperationConfig{
//	        {Name: "vigenere_encrypt", Parameters: map[string]interface{}{"key": "LEMON"}},
//	        {Name: "railfence_encrypt", Parameters: map[string]interface{}{"rails": 3}},
//	    },
//	    Reversible: true,
//	}
//	encrypted, _ := pipeline.Execute(ctx, []byte("attack at dawn"))
//	reversed, _ := pipeline.Reverse()
//	plain, _ := reversed.Execute(ctx, encrypted)
//
// # Detection
//
// ClassicalDetector guesses the cipher family of a ciphertext from its index
// of coincidence and how well its letter histogram fits English, directly or
// after a Caesar shift.
//
// # Available Operations
//
//   - caesar_encrypt/decrypt - shift letters by "shift"
//   - rot13 - Caesar shift of 13
//   - vigenere_encrypt/decrypt - repeating keyword "key"
//   - railfence_encrypt/decrypt - zig-zag transposition over "rails" rows
//
// # Thread Safety
//
// The operation registry is thread-safe and can be accessed concurrently.
// Individual operations are stateless and safe for concurrent use.
package cipher
