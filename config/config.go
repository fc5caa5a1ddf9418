// Package config loads and validates the YAML configuration that drives a
// generation run: which package to target, which temperatures to sweep,
// how long to run, and where prompts and the resulting report land.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/itsatony/go-cuserr"
	"gopkg.in/yaml.v3"
)

const (
	errCodeConfig       = "TESTGEN_CONFIG"
	errMsgReadConfig    = "failed to read config file"
	errMsgParseConfig   = "failed to parse config file"
	errMsgInvalidConfig = "config failed validation"
)

// Config is the top-level shape of a testgen run's YAML configuration file.
type Config struct {
	// TargetPackage is the npm-style package name under test.
	TargetPackage string `yaml:"target_package"`

	// Signatures lists the `[class ]accessPath(params)[ async]` function
	// signatures to generate tests for.
	Signatures []string `yaml:"signatures"`

	// OutputDir is where generated prompt and test files are written.
	OutputDir string `yaml:"output_dir"`

	// SnippetsDir, if set, is scanned for "*.snippets.yaml" usage-snippet
	// files.
	SnippetsDir string `yaml:"snippets_dir"`

	// Temperatures is the ordered list of sampling temperatures the
	// generation loop sweeps. Defaults to testgen.DefaultTemperatures when
	// empty.
	Temperatures []float64 `yaml:"temperatures"`

	// Deadline bounds an entire generation run, across every configured
	// signature. 0 means no deadline.
	Deadline time.Duration `yaml:"deadline"`

	// MaxCompletionsPerPrompt sets how many completions are requested per
	// prompt. Values below 1 (including the unset 0) request one.
	MaxCompletionsPerPrompt int `yaml:"max_completions_per_prompt"`

	// Provider configures the completion backend.
	Provider ProviderConfig `yaml:"provider"`

	// ArtifactStore configures where the run's report is persisted.
	ArtifactStore ArtifactStoreConfig `yaml:"artifact_store"`
}

// ProviderConfig configures an HTTP completion provider.
type ProviderConfig struct {
	Endpoint      string  `yaml:"endpoint"`
	APIKey        string  `yaml:"api_key"`
	Model         string  `yaml:"model"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// ArtifactStoreConfig configures an ArtifactStore driver by name and
// connection string, mirroring the storage-driver registry pattern: a
// driver name ("filesystem", "postgres", "memory") plus an opaque DSN that
// driver interprets.
type ArtifactStoreConfig struct {
	Driver           string `yaml:"driver"`
	ConnectionString string `yaml:"connection_string"`
}

// Load reads and parses the YAML configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cuserr.WrapStdError(err, errCodeConfig, errMsgReadConfig)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cuserr.WrapStdError(err, errCodeConfig, errMsgParseConfig)
	}

	return &cfg, nil
}

// ValidationIssue is one problem found while validating a Config.
type ValidationIssue struct {
	Field   string
	Message string
}

// ValidationResult is the set of issues found validating a Config. An empty
// result means the config is valid.
type ValidationResult struct {
	Issues []ValidationIssue
}

// IsValid reports whether no issues were found.
func (r *ValidationResult) IsValid() bool {
	return len(r.Issues) == 0
}

// Validate checks c for the minimum configuration a run needs: a target
// package, at least one signature, and an output directory. It returns a
// ValidationResult listing every problem found, not just the first.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	if c.TargetPackage == "" {
		result.Issues = append(result.Issues, ValidationIssue{Field: "target_package", Message: "must not be empty"})
	}
	if len(c.Signatures) == 0 {
		result.Issues = append(result.Issues, ValidationIssue{Field: "signatures", Message: "must list at least one function signature"})
	}
	if c.OutputDir == "" {
		result.Issues = append(result.Issues, ValidationIssue{Field: "output_dir", Message: "must not be empty"})
	}
	for i, t := range c.Temperatures {
		if t < 0 {
			result.Issues = append(result.Issues, ValidationIssue{
				Field:   "temperatures",
				Message: "entry " + strconv.Itoa(i) + " must be non-negative",
			})
		}
	}
	if c.ArtifactStore.Driver != "" && c.ArtifactStore.ConnectionString == "" {
		result.Issues = append(result.Issues, ValidationIssue{Field: "artifact_store.connection_string", Message: "required when a driver is set"})
	}

	return result
}

// ValidateOrError is a convenience wrapper returning a go-cuserr validation
// error aggregating every issue, or nil when the config is valid.
func (c *Config) ValidateOrError() error {
	result := c.Validate()
	if result.IsValid() {
		return nil
	}

	err := cuserr.NewValidationError(errCodeConfig, errMsgInvalidConfig)
	for i, issue := range result.Issues {
		err = err.WithMetadata("issue_"+strconv.Itoa(i), issue.Field+": "+issue.Message)
	}
	return err
}
