// Package env reads CIPHERLAB_* environment variables, honouring renamed
// variables for one release with a deprecation warning.
package env

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	warnMu     sync.Mutex
	warnLogger = func(oldKey, newKey string) {
		slog.Warn("environment variable is deprecated", slog.String("variable", oldKey), slog.String("replacement", newKey))
	}
	warnedKeys sync.Map
)

// Lookup returns the trimmed value of newKey. When only one of the legacy
// keys is set its value is used and a warning is logged once per key. Blank
// values count as unset.
func Lookup(newKey string, legacyKeys ...string) (string, bool) {
	if v, ok := lookupTrimmed(newKey); ok {
		return v, true
	}
	for _, oldKey := range legacyKeys {
		if v, ok := lookupTrimmed(oldKey); ok {
			logDeprecated(oldKey, newKey)
			return v, true
		}
	}
	return "", false
}

func lookupTrimmed(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func logDeprecated(oldKey, newKey string) {
	onceIface, _ := warnedKeys.LoadOrStore(oldKey, &sync.Once{})
	once := onceIface.(*sync.Once)
	once.Do(func() {
		warnMu.Lock()
		logger := warnLogger
		warnMu.Unlock()
		logger(oldKey, newKey)
	})
}

// ResetWarningsForTesting clears the cached once guards so tests can verify
// warning behaviour deterministically.
func ResetWarningsForTesting() {
	warnMu.Lock()
	warnedKeys = sync.Map{}
	warnMu.Unlock()
}

// SetWarnLoggerForTesting swaps the function used for warnings. The returned
// function restores the previous one and should be deferred in tests.
func SetWarnLoggerForTesting(fn func(oldKey, newKey string)) (restore func()) {
	warnMu.Lock()
	previous := warnLogger
	warnLogger = fn
	warnMu.Unlock()
	return func() {
		warnMu.Lock()
		warnLogger = previous
		warnMu.Unlock()
	}
}
