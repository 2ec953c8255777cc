package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	out := &bytes.Buffer{}

	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_InvalidWorkflowFile(t *testing.T) {
	t.Parallel()

	invalidHCL := `
		workflow "broken" {
			node "a" {
		// Missing closing braces here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0600), "failed to set up test file")

	out := &bytes.Buffer{}
	err := run(out, []string{"-log-level", "error", filePath})

	require.Error(t, err, "run() should surface the workflow load failure")
	require.Contains(t, err.Error(), "failed to load workflow")
}

func TestRun_CompletesWorkflow(t *testing.T) {
	t.Parallel()

	wf := `
workflow "echo" {
  node "in" {
    type = "input"
  }

  node "out" {
    type = "output"
    config {
      source = "in"
    }
  }

  edge "e1" {
    source = "in"
    target = "out"
  }
}
`
	filePath := filepath.Join(t.TempDir(), "echo.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(wf), 0600))

	out := &bytes.Buffer{}
	err := run(out, []string{"-log-level", "error", "-input", `{"greeting": "hello"}`, filePath})

	require.NoError(t, err)
	require.Contains(t, out.String(), `"greeting": "hello"`)
}
