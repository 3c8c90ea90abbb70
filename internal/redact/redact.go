// Package redact scrubs values before they reach logs: credentials are masked
// and long message bodies (ciphertexts, plaintexts) are cut down to a prefix.
package redact

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	neverPersistKey = "never_persist"
	redactedSecret  = "[REDACTED_SECRET]"

	// TextLimit is the number of runes of a text field kept in logs.
	TextLimit = 64
)

// secretKeys are masked wherever they appear in a map, at any depth.
var secretKeys = map[string]struct{}{
	"key":           {},
	"auth_token":    {},
	"authorization": {},
	"password":      {},
	"secret":        {},
	"token":         {},
}

// textKeys hold user text that is truncated rather than masked.
var textKeys = map[string]struct{}{
	"text":       {},
	"input":      {},
	"output":     {},
	"ciphertext": {},
	"plaintext":  {},
	"preview":    {},
}

var (
	kvSecretRe = regexp.MustCompile(`(?i)((?:api|auth|token|secret|password)[-_ ]*(?:key|token)?\s*[:=]\s*)(['\"]?)([A-Za-z0-9+/=_\-.]{8,})(['\"]?)`)
	bearerRe   = regexp.MustCompile(`(?i)\b(bearer|token)\s+([A-Za-z0-9._\-]{10,})`)
)

// String masks credential-looking fragments in a free-form message.
func String(in string) string {
	if strings.TrimSpace(in) == "" {
		return in
	}
	masked := kvSecretRe.ReplaceAllString(in, `$1$2`+redactedSecret+`$4`)
	return bearerRe.ReplaceAllString(masked, `$1 `+redactedSecret)
}

// Truncate keeps the first limit runes of s and notes how much was dropped.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		limit = TextLimit
	}
	n := utf8.RuneCountInString(s)
	if n <= limit {
		return s
	}
	runes := []rune(s)
	return fmt.Sprintf("%s…(%d more chars)", string(runes[:limit]), n-limit)
}

// Interface redacts recognised sensitive values within nested structures.
func Interface(value any) any {
	switch v := value.(type) {
	case string:
		return String(v)
	case fmt.Stringer:
		return String(v.String())
	case []string:
		return Slice(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Interface(elem)
		}
		return out
	case map[string]string:
		return MapString(v)
	case map[string]any:
		return Map(v)
	default:
		return value
	}
}

// Map redacts a metadata map. Secret keys are replaced outright, text keys
// are truncated, and any key named in a "never_persist" entry is masked.
func Map(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	hidden := neverPersist(in[neverPersistKey])
	out := make(map[string]any, len(in))
	for k, v := range in {
		if strings.EqualFold(k, neverPersistKey) {
			continue
		}
		out[k] = redactField(k, v, hidden)
	}
	return out
}

// MapString is Map for string-valued maps.
func MapString(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	hidden := neverPersist(in[neverPersistKey])
	out := make(map[string]string, len(in))
	for k, v := range in {
		if strings.EqualFold(k, neverPersistKey) {
			continue
		}
		if s, ok := redactField(k, v, hidden).(string); ok {
			out[k] = s
		}
	}
	return out
}

// Slice redacts sensitive values within a slice of strings.
func Slice(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = String(v)
	}
	return out
}

func redactField(key string, value any, hidden map[string]struct{}) any {
	lower := strings.ToLower(strings.TrimSpace(key))
	if _, ok := hidden[key]; ok {
		return redactedSecret
	}
	if _, ok := secretKeys[lower]; ok {
		return redactedSecret
	}
	if _, ok := textKeys[lower]; ok {
		if s, isString := value.(string); isString {
			return Truncate(s, TextLimit)
		}
	}
	return Interface(value)
}

// neverPersist reads the list of keys a caller asked to keep out of logs. It
// accepts a comma separated string or a list.
func neverPersist(value any) map[string]struct{} {
	var raw []string
	switch v := value.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, elem := range v {
			raw = append(raw, fmt.Sprint(elem))
		}
	}
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(raw))
	for _, key := range raw {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = struct{}{}
		}
	}
	return out
}
