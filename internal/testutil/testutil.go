// Package testutil holds fixtures and helpers shared by the cipherlab tests.
package testutil

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
)

// EnvPrefix prefixes every environment variable cipherlab reads.
const EnvPrefix = "CIPHERLAB_"

// Dickens is a long English passage. It carries enough letters for the
// frequency statistics and the Vigenère key-length search to be decisive.
const Dickens = "It was the best of times, it was the worst of times, it was the age of wisdom, " +
	"it was the age of foolishness, it was the epoch of belief, it was the epoch of incredulity, " +
	"it was the season of Light, it was the season of Darkness, it was the spring of hope, " +
	"it was the winter of despair, we had everything before us, we had nothing before us."

// SyncBuffer is a bytes.Buffer that is safe to write from several goroutines,
// such as an audit sink shared by a server and the test reading it.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// IsolateEnv points HOME and the working directory at a fresh temporary
// directory and blanks every CIPHERLAB_* variable for the rest of the test.
// It returns the directory.
func IsolateEnv(t testing.TB) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, EnvPrefix) {
			t.Setenv(name, "")
		}
	}
	return dir
}
