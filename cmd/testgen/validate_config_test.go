package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testValidConfigYAML = `
target_package: string-utils
signatures:
  - "titleCase(s)"
output_dir: /tmp/testgen-out
`

const testInvalidConfigYAML = `
signatures: []
output_dir: ""
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunValidateConfig_MissingFlag(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runValidateConfig(nil, stdout, stderr)

	assert.Equal(t, ExitCodeUsageError, exitCode)
	assert.Contains(t, stderr.String(), ErrMsgMissingConfig)
}

func TestRunValidateConfig_FileNotFound(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runValidateConfig([]string{"--config", "/nonexistent/config.yaml"}, stdout, stderr)

	assert.Equal(t, ExitCodeError, exitCode)
	assert.Contains(t, stderr.String(), ErrMsgLoadConfig)
}

func TestRunValidateConfig_ValidConfig(t *testing.T) {
	path := writeTempConfig(t, testValidConfigYAML)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runValidateConfig([]string{"--config", path}, stdout, stderr)

	assert.Equal(t, ExitCodeSuccess, exitCode)
	assert.Contains(t, stdout.String(), "config is valid")
}

func TestRunValidateConfig_InvalidConfigListsIssues(t *testing.T) {
	path := writeTempConfig(t, testInvalidConfigYAML)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := runValidateConfig([]string{"--config", path}, stdout, stderr)

	assert.Equal(t, ExitCodeError, exitCode)
	assert.Contains(t, stderr.String(), "target_package")
	assert.Contains(t, stderr.String(), "signatures")
	assert.Contains(t, stderr.String(), "output_dir")
}
