package testgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordTestInfo_NewSourceGetsNextID(t *testing.T) {
	c := NewCollector()
	fn := testFunction()
	p := NewPrompt(fn, nil)

	first := c.RecordTestInfo("source-a", p, fn.AccessPath)
	second := c.RecordTestInfo("source-b", p, fn.AccessPath)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, OutcomeKindOther, first.Outcome.Kind)
}

func TestRecordTestInfo_DuplicateSourceAppendsPrompt(t *testing.T) {
	c := NewCollector()
	fn := testFunction()
	p1 := NewPrompt(fn, nil)
	p2 := NewPrompt(fn, []string{"snippet"})

	first := c.RecordTestInfo("same-source", p1, fn.AccessPath)
	second := c.RecordTestInfo("same-source", p2, fn.AccessPath)

	assert.Same(t, first, second)
	assert.Len(t, first.Prompts, 2)
}

func TestRecordTestResult_OverwritesOutcome(t *testing.T) {
	c := NewCollector()
	fn := testFunction()
	p := NewPrompt(fn, nil)
	info := c.RecordTestInfo("source", p, fn.AccessPath)

	c.RecordTestResult(info, 0.2, PassedOutcome(nil, nil))
	assert.True(t, info.Outcome.IsPassed())
}

func TestRecordPromptInfo_KeyedByAssembledText(t *testing.T) {
	c := NewCollector()
	fn := testFunction()
	p := NewPrompt(fn, nil)

	first := c.RecordPromptInfo(p, 0.2, nil)
	second := c.RecordPromptInfo(p, 0.8, nil)

	assert.Same(t, first, second)
	assert.Equal(t, 0.2, first.Temperature)
}

func TestAllTests_OrderedByID(t *testing.T) {
	c := NewCollector()
	fn := testFunction()
	p := NewPrompt(fn, nil)

	c.RecordTestInfo("a", p, fn.AccessPath)
	c.RecordTestInfo("b", p, fn.AccessPath)
	c.RecordTestInfo("c", p, fn.AccessPath)

	all := c.AllTests()
	for i, info := range all {
		assert.Equal(t, i+1, info.ID)
	}
}

func TestCoverageInfo_ReflectsLatestRecorded(t *testing.T) {
	c := NewCollector()
	_, ok := c.CoverageInfo()
	assert.False(t, ok)

	c.RecordCoverageInfo(CoverageSummary{TotalStatements: 10, CoveredStatements: 7})
	summary, ok := c.CoverageInfo()
	assert.True(t, ok)
	assert.Equal(t, 7, summary.CoveredStatements)
}

func TestOutcomeConstructors(t *testing.T) {
	assert.True(t, PassedOutcome(nil, nil).IsPassed())
	assert.True(t, FailedOutcome("boom").IsFailed())
	assert.False(t, PendingOutcome().IsPassed())
	assert.False(t, OtherOutcome().IsFailed())

	withInfo := FailedOutcomeWithInfo(ErrInfo{Message: "m", Code: "E1"})
	assert.Equal(t, "E1", withInfo.Err.Code)
}
