package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/testgen/report"
)

func TestRunDiff_MissingFlags(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runDiff([]string{"--config", "whatever.yaml"}, stdout, stderr)

	assert.Equal(t, ExitCodeUsageError, exitCode)
}

func TestRunDiff_ConfigNotFound(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runDiff([]string{"--config", "/nonexistent/config.yaml", "--base", "a", "--run", "b"}, stdout, stderr)

	assert.Equal(t, ExitCodeError, exitCode)
	assert.Contains(t, stderr.String(), ErrMsgLoadConfig)
}

func TestRunDiff_UnknownRunIDFails(t *testing.T) {
	storeDir := t.TempDir()
	content := "target_package: string-utils\n" +
		"signatures:\n  - \"titleCase(s)\"\n" +
		"output_dir: " + t.TempDir() + "\n" +
		"artifact_store:\n  driver: filesystem\n  connection_string: " + storeDir + "\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runDiff([]string{"--config", path, "--base", "missing-base", "--run", "missing-run"}, stdout, stderr)

	assert.Equal(t, ExitCodeError, exitCode)
	assert.Contains(t, stderr.String(), ErrMsgLoadReport)
}

func TestRunDiff_ComparesTwoStoredRuns(t *testing.T) {
	storeDir := t.TempDir()
	content := "target_package: string-utils\n" +
		"signatures:\n  - \"titleCase(s)\"\n" +
		"output_dir: " + t.TempDir() + "\n" +
		"artifact_store:\n  driver: filesystem\n  connection_string: " + storeDir + "\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := report.NewFilesystemStore(storeDir)
	require.NoError(t, err)

	baseline := &report.Report{
		TargetPackage: "string-utils",
		GeneratedAt:   time.Now(),
		Tests: []report.TestRecord{
			{File: "test1.js", Function: "string-utils.titleCase", Outcome: "failed"},
		},
		Coverage: report.CoverageSnapshot{TotalStatements: 10, CoveredStatements: 2},
	}
	current := &report.Report{
		TargetPackage: "string-utils",
		GeneratedAt:   time.Now(),
		Tests: []report.TestRecord{
			{File: "test1.js", Function: "string-utils.titleCase", Outcome: "passed"},
		},
		Coverage: report.CoverageSnapshot{TotalStatements: 10, CoveredStatements: 8},
	}

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "run-base", baseline))
	require.NoError(t, store.Save(ctx, "run-current", current))
	require.NoError(t, store.Close())

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runDiff([]string{"--config", path, "--base", "run-base", "--run", "run-current"}, stdout, stderr)

	require.Equal(t, ExitCodeSuccess, exitCode, stderr.String())
	assert.Contains(t, stdout.String(), "string-utils.titleCase")
	assert.Contains(t, stdout.String(), "Coverage change: +60.0%")
}
