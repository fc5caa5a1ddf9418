// Package validator runs candidate test sources in a sandboxed node
// process and classifies the result into a testgen.TestOutcome.
package validator

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/itsatony/go-cuserr"
	"go.uber.org/zap"

	"github.com/itsatony/testgen"
)

const (
	errMsgSandboxSetup = "failed to set up sandbox directory"
	errCodeSandbox     = "TESTGEN_SANDBOX"
)

// NodeSandboxOption is a functional option for configuring a NodeSandbox.
type NodeSandboxOption func(*NodeSandbox)

// WithLogger sets the logger a NodeSandbox uses for per-run diagnostics.
// Default: zap.NewNop().
func WithLogger(logger *zap.Logger) NodeSandboxOption {
	return func(s *NodeSandbox) { s.logger = logger }
}

// WithNodeBinary overrides the node executable invoked. Default: "node".
func WithNodeBinary(path string) NodeSandboxOption {
	return func(s *NodeSandbox) { s.nodeBinary = path }
}

// WithTimeout bounds a single validation run when the caller's context
// carries no deadline of its own. Default: testgen.DefaultValidateTimeout.
func WithTimeout(d time.Duration) NodeSandboxOption {
	return func(s *NodeSandbox) { s.timeout = d }
}

// WithBaseDir sets the parent directory new per-call sandbox directories are
// created under. Default: os.TempDir().
func WithBaseDir(dir string) NodeSandboxOption {
	return func(s *NodeSandbox) { s.baseDir = dir }
}

// NodeSandbox validates candidate test sources by writing them to a fresh
// temporary directory and running `node --test` against them.
type NodeSandbox struct {
	nodeBinary string
	baseDir    string
	timeout    time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	coverage testgen.CoverageSummary
}

// NewNodeSandbox builds a NodeSandbox.
func NewNodeSandbox(opts ...NodeSandboxOption) *NodeSandbox {
	s := &NodeSandbox{
		nodeBinary: "node",
		baseDir:    os.TempDir(),
		timeout:    testgen.DefaultValidateTimeout,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ testgen.Validator = (*NodeSandbox)(nil)

// Validate writes source to a file named after name inside a fresh sandbox
// directory and runs it under node. It classifies the result into exactly one of
// testgen.TestOutcome's four variants and always cleans up the sandbox
// directory before returning, on every exit path.
func (s *NodeSandbox) Validate(ctx context.Context, name, source string) (testgen.TestOutcome, error) {
	dir, err := os.MkdirTemp(s.baseDir, "testgen-sandbox-*")
	if err != nil {
		return testgen.TestOutcome{}, cuserr.WrapStdError(err, errCodeSandbox, errMsgSandboxSetup)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, sandboxFileName(name))
	if err := os.WriteFile(file, []byte(source), 0o600); err != nil {
		return testgen.TestOutcome{}, cuserr.WrapStdError(err, errCodeSandbox, errMsgSandboxSetup)
	}

	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, s.nodeBinary, "--test", file)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	switch {
	case runCtx.Err() != nil:
		return testgen.PendingOutcome(), runCtx.Err()
	case err == nil:
		return testgen.PassedOutcome(nil, nil), nil
	default:
		message := stderr.String()
		if message == "" {
			message = err.Error()
		}
		s.logger.Debug("sandbox run failed", zap.String("function", name), zap.String("stderr", message))
		return testgen.FailedOutcome(message), nil
	}
}

// CoverageSummary returns the most recently recorded coverage snapshot. This
// sandbox does not instrument coverage by default; callers that need it
// should record one via RecordCoverage after parsing node's coverage report.
func (s *NodeSandbox) CoverageSummary() testgen.CoverageSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coverage
}

// RecordCoverage stores summary as the latest coverage snapshot.
func (s *NodeSandbox) RecordCoverage(summary testgen.CoverageSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coverage = summary
}

func sandboxFileName(name string) string {
	var b []byte
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b = append(b, byte(r))
		} else {
			b = append(b, '_')
		}
	}
	if len(b) == 0 {
		b = []byte("test")
	}
	return string(b) + "_" + strconv.FormatInt(int64(len(name)), 10) + ".test.js"
}
