package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteCSV writes the lines joined by newlines to a file in a temp dir and returns its path.
func WriteCSV(t testing.TB, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "query_data.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("failed to write csv fixture: %v", err)
	}

	return path
}
