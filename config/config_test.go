package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "testgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ParsesFullConfig(t *testing.T) {
	path := writeConfig(t, `
target_package: string-utils
signatures:
  - "string-utils.titleCase(s)"
output_dir: ./out
temperatures: [0.2, 0.8]
deadline: 30s
max_completions_per_prompt: 4
provider:
  endpoint: https://api.example.com/v1/completions
  model: gpt-test
  rate_per_second: 2
  burst: 5
artifact_store:
  driver: filesystem
  connection_string: ./out/runs
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "string-utils", cfg.TargetPackage)
	assert.Equal(t, []float64{0.2, 0.8}, cfg.Temperatures)
	assert.Equal(t, "gpt-test", cfg.Provider.Model)
	assert.Equal(t, "filesystem", cfg.ArtifactStore.Driver)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_ReportsEveryMissingField(t *testing.T) {
	cfg := &Config{}
	result := cfg.Validate()
	assert.False(t, result.IsValid())
	assert.Len(t, result.Issues, 3)
}

func TestValidate_RejectsNegativeTemperature(t *testing.T) {
	cfg := &Config{
		TargetPackage: "p",
		Signatures:    []string{"p.f()"},
		OutputDir:     "./out",
		Temperatures:  []float64{0.2, -0.1},
	}
	result := cfg.Validate()
	assert.False(t, result.IsValid())
	assert.Len(t, result.Issues, 1)
}

func TestValidate_RequiresConnectionStringWithDriver(t *testing.T) {
	cfg := &Config{
		TargetPackage: "p",
		Signatures:    []string{"p.f()"},
		OutputDir:     "./out",
		ArtifactStore: ArtifactStoreConfig{Driver: "postgres"},
	}
	result := cfg.Validate()
	assert.False(t, result.IsValid())
}

func TestValidate_ValidConfigHasNoIssues(t *testing.T) {
	cfg := &Config{
		TargetPackage: "p",
		Signatures:    []string{"p.f()"},
		OutputDir:     "./out",
	}
	assert.True(t, cfg.Validate().IsValid())
	assert.NoError(t, cfg.ValidateOrError())
}

func TestValidateOrError_AggregatesIssuesIntoMetadata(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateOrError()
	require.Error(t, err)
}
