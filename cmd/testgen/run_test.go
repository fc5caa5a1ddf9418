package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGenerate_MissingConfigFlag(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runGenerate(nil, stdout, stderr)

	assert.Equal(t, ExitCodeUsageError, exitCode)
	assert.Contains(t, stderr.String(), ErrMsgMissingConfig)
}

func TestRunGenerate_ConfigNotFound(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runGenerate([]string{"--config", "/nonexistent/config.yaml"}, stdout, stderr)

	assert.Equal(t, ExitCodeError, exitCode)
	assert.Contains(t, stderr.String(), ErrMsgLoadConfig)
}

func TestRunGenerate_InvalidConfigRejectedBeforeAnyWork(t *testing.T) {
	path := writeTempConfig(t, testInvalidConfigYAML)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runGenerate([]string{"--config", path}, stdout, stderr)

	assert.Equal(t, ExitCodeError, exitCode)
	assert.Contains(t, stderr.String(), ErrMsgInvalidConfig)
}

func TestRunGenerate_BadSignatureFailsFast(t *testing.T) {
	outDir := t.TempDir()
	content := "target_package: string-utils\n" +
		"signatures:\n  - \"not a valid signature\"\n" +
		"output_dir: " + outDir + "\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runGenerate([]string{"--config", path}, stdout, stderr)

	assert.Equal(t, ExitCodeError, exitCode)
	assert.Contains(t, stderr.String(), ErrMsgRunFailed)
}
