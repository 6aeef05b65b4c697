// Package testutil provides shared test utilities and fixtures.
//
// It holds the file fixtures used by the command and config tests: config
// documents, interval files and scratch database paths under t.TempDir.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WriteFile writes body to name inside dir and returns the full path.
func WriteFile(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	AssertNoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	AssertNoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// WriteIntervals writes an interval file whose first line is header and whose
// remaining lines are rows, each terminated by a newline.
func WriteIntervals(t testing.TB, dir, name, header string, rows ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	return WriteFile(t, dir, name, b.String())
}

// TempDBPath returns a database path inside a fresh temporary directory.
func TempDBPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "habitat.db")
}
