// Package crack recovers keys and plaintexts from Caesar, Vigenère and Rail
// Fence ciphertexts without knowing the key.
//
// The crackers (Caesar, Vigenere, RailFence) are plain functions: they hold no
// state, never block on I/O and return the same result for the same input.
// Service wraps them for servers, adding cancellation, configured defaults,
// metrics and audit events.
package crack
