package cipher

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind names a cipher family.
type Kind string

const (
	Caesar    Kind = "caesar"
	Vigenere  Kind = "vigenere"
	RailFence Kind = "railfence"
)

// Kinds lists every supported cipher family.
func Kinds() []Kind {
	return []Kind{Caesar, Vigenere, RailFence}
}

// ParseKind accepts the usual spellings of a cipher name ("rail-fence",
// "Rail Fence", "vigenère", ...).
func ParseKind(name string) (Kind, error) {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = strings.NewReplacer("-", "", "_", "", " ", "", "è", "e").Replace(cleaned)
	switch cleaned {
	case "caesar", "shift":
		return Caesar, nil
	case "vigenere":
		return Vigenere, nil
	case "railfence", "rail", "zigzag":
		return RailFence, nil
	default:
		return "", fmt.Errorf("unsupported cipher %q", name)
	}
}

// KeyParam is the pipeline parameter that carries this cipher's key.
func (k Kind) KeyParam() string {
	switch k {
	case Caesar:
		return "shift"
	case RailFence:
		return "rails"
	default:
		return "key"
	}
}

// ParseShift reads a Caesar shift. Any integer is accepted; it is reduced
// modulo 26 when applied.
func ParseShift(s string) (int, error) {
	shift, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, NewUserError(KindInvalidKey, "Please enter a valid numeric key")
	}
	return shift, nil
}

// ParseRails reads a rail count and checks that it transposes a text of
// length runes, i.e. lies in [2, length-1].
func ParseRails(s string, length int) (int, error) {
	rails, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, NewUserError(KindInvalidKey, "Please enter a valid numeric rail count")
	}
	if rails < 2 || rails > length-1 {
		if length < 3 {
			return 0, NewUserError(KindInvalidKey, "Text is too short for a rail fence")
		}
		return 0, NewUserError(KindInvalidKey, fmt.Sprintf("Rail count must be between 2 and %d", length-1))
	}
	return rails, nil
}

// paramString extracts a parameter as text regardless of whether it arrived
// as a JSON string or number.
func paramString(params map[string]interface{}, name string) (string, bool) {
	v, ok := params[name]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}
