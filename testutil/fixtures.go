// Package testutil provides an in-memory tool gateway and fixture helpers
// for exercising orchestration code in tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/autoflow"
)

// LoadFixture reads a file from the calling package's testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", path))
	if err != nil {
		t.Fatalf("load fixture %s: %v", path, err)
	}
	return data
}

// LoadFixtureString reads a testdata file as a string.
func LoadFixtureString(t *testing.T, path string) string {
	t.Helper()
	return string(LoadFixture(t, path))
}

// LoadWorkflowFixture parses a YAML workflow definition from testdata.
// The definition is validated; a broken fixture fails the test.
func LoadWorkflowFixture(t *testing.T, path string) *autoflow.WorkflowDefinition {
	t.Helper()

	def, err := autoflow.ParseWorkflow(LoadFixture(t, path))
	if err != nil {
		t.Fatalf("parse workflow fixture %s: %v", path, err)
	}
	return def
}

// CopyFixture copies a testdata file into a temporary directory and
// returns the copy's path, for tests that read through the filesystem.
func CopyFixture(t *testing.T, path string) string {
	t.Helper()
	return TempFile(t, filepath.Base(path), LoadFixture(t, path))
}

// TempDir creates a temporary directory that is removed when the test ends.
func TempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// TempFile creates a temporary file with the given content and returns
// its path. The file is removed when the test ends.
func TempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("create temp file %s: %v", name, err)
	}
	return path
}

// TempFileString creates a temporary file with string content.
func TempFileString(t *testing.T, name, content string) string {
	return TempFile(t, name, []byte(content))
}
