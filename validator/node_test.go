package validator

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/testgen"
)

func newSummary(total int) testgen.CoverageSummary {
	return testgen.CoverageSummary{TotalStatements: total}
}

func requireNode(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node binary not available")
	}
}

func TestE2E_NodeSandbox_PassingSourcePasses(t *testing.T) {
	requireNode(t)

	s := NewNodeSandbox(WithTimeout(5 * time.Second))
	outcome, err := s.Validate(context.Background(), "sample", `
const { describe, it } = require('node:test');
const assert = require('node:assert');
describe('sample', function() {
  it('passes', function() {
    assert.ok(true);
  });
});
`)
	require.NoError(t, err)
	assert.True(t, outcome.IsPassed())
}

func TestE2E_NodeSandbox_FailingSourceFails(t *testing.T) {
	requireNode(t)

	s := NewNodeSandbox(WithTimeout(5 * time.Second))
	outcome, err := s.Validate(context.Background(), "sample", `
const { describe, it } = require('node:test');
const assert = require('node:assert');
describe('sample', function() {
  it('fails', function() {
    assert.ok(false);
  });
});
`)
	require.NoError(t, err)
	assert.True(t, outcome.IsFailed())
}

func TestE2E_NodeSandbox_DeadlineExceededIsPending(t *testing.T) {
	requireNode(t)

	s := NewNodeSandbox(WithTimeout(10 * time.Millisecond))
	outcome, err := s.Validate(context.Background(), "sample", `
const { describe, it } = require('node:test');
describe('sample', function() {
  it('hangs', function(done) {
    setTimeout(done, 5000);
  });
});
`)
	assert.Error(t, err)
	assert.Equal(t, "pending", outcome.Kind)
}

func TestNodeSandbox_CoverageSummaryDefaultsEmpty(t *testing.T) {
	s := NewNodeSandbox()
	assert.Equal(t, 0, s.CoverageSummary().TotalStatements)

	s.RecordCoverage(newSummary(42))
	assert.Equal(t, 42, s.CoverageSummary().TotalStatements)
}
