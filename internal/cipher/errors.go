package cipher

import "errors"

// ErrorKind classifies recoverable user mistakes.
type ErrorKind string

const (
	KindEmptyInput         ErrorKind = "empty_input"
	KindInvalidKey         ErrorKind = "invalid_key"
	KindNoViableCandidates ErrorKind = "no_viable_candidates"
)

var (
	ErrEmptyInput         = errors.New("empty input")
	ErrInvalidKey         = errors.New("invalid key")
	ErrNoViableCandidates = errors.New("no viable candidates")
)

// UserError is returned for input the caller should fix: blank ciphertext,
// unusable keys, or searches that found nothing. Message is fit for display.
type UserError struct {
	Kind    ErrorKind
	Message string
}

// NewUserError builds a UserError of the given kind.
func NewUserError(kind ErrorKind, message string) *UserError {
	return &UserError{Kind: kind, Message: message}
}

func (e *UserError) Error() string {
	return e.Message
}

// Is lets errors.Is match a UserError against the package sentinels.
func (e *UserError) Is(target error) bool {
	switch target {
	case ErrEmptyInput:
		return e.Kind == KindEmptyInput
	case ErrInvalidKey:
		return e.Kind == KindInvalidKey
	case ErrNoViableCandidates:
		return e.Kind == KindNoViableCandidates
	}
	return false
}

// AsUserError unwraps err to a *UserError when it is one.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
