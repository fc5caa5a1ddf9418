package testgen

import (
	"strconv"
	"sync"
)

// ErrInfo carries the optional fields a Failed outcome's error record may
// include.
type ErrInfo struct {
	Message string
	Code    string
	Stack   string
}

// CoverageReport and CoverageData are opaque payloads a Validator attaches
// to a Passed outcome; the engine stores and forwards them without
// inspecting their contents.
type CoverageReport struct {
	Summary string
	Raw     map[string]any
}

type CoverageData struct {
	CoveredStatements int
	TotalStatements   int
}

// TestOutcome is a tagged variant: exactly one of the four kinds is active,
// identified by Kind. Only Passed outcomes contribute to coverage.
type TestOutcome struct {
	Kind           string
	CoverageReport *CoverageReport
	CoverageData   *CoverageData
	Err            *ErrInfo
}

// PassedOutcome builds a Passed outcome, optionally carrying coverage.
func PassedOutcome(report *CoverageReport, data *CoverageData) TestOutcome {
	return TestOutcome{Kind: OutcomeKindPassed, CoverageReport: report, CoverageData: data}
}

// FailedOutcome builds a Failed outcome from an error message.
func FailedOutcome(message string) TestOutcome {
	return TestOutcome{Kind: OutcomeKindFailed, Err: &ErrInfo{Message: message}}
}

// FailedOutcomeWithInfo builds a Failed outcome from a full error record.
func FailedOutcomeWithInfo(info ErrInfo) TestOutcome {
	return TestOutcome{Kind: OutcomeKindFailed, Err: &info}
}

// PendingOutcome and OtherOutcome build the remaining two variants.
func PendingOutcome() TestOutcome { return TestOutcome{Kind: OutcomeKindPending} }
func OtherOutcome() TestOutcome   { return TestOutcome{Kind: OutcomeKindOther} }

// IsPassed reports whether the outcome is the Passed variant.
func (o TestOutcome) IsPassed() bool { return o.Kind == OutcomeKindPassed }

// IsFailed reports whether the outcome is the Failed variant.
func (o TestOutcome) IsFailed() bool { return o.Kind == OutcomeKindFailed }

// TestInfo is the collector's record of one distinct assembled test source.
// Its uniqueness key is Source: two TestInfo records never share a Source.
type TestInfo struct {
	ID      int
	Name    string
	Source  string
	Outcome TestOutcome
	Prompts []*Prompt
	API     string
}

// PromptInfo is the collector's record of one distinct prompt object,
// stored at most once per distinct assembled prompt text.
type PromptInfo struct {
	ID          int
	Prompt      *Prompt
	File        string
	Temperature float64
	Completions map[string]struct{}
}

// Collector holds the keyed structures the generation loop reads and
// writes: a map from assembled test source to TestInfo, a map from
// assembled prompt text to PromptInfo, and the latest coverage summary. It
// is owned exclusively by the Generator during a run and is not otherwise
// safe to share across concurrent generation runs; the mutex guards against
// incidental concurrent reads by a driver (e.g. a reporting goroutine)
// while generation for a later function is still running.
type Collector struct {
	mu sync.RWMutex

	testsBySource  map[string]*TestInfo
	promptsByText  map[string]*PromptInfo
	nextTestID     int
	nextPromptID   int
	coverage       CoverageSummary
	haveCoverage   bool
}

// CoverageSummary is the latest aggregate coverage snapshot a Validator can
// report. The engine stores it verbatim.
type CoverageSummary struct {
	TotalStatements   int
	CoveredStatements int
	PerFunction       map[string]float64
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		testsBySource: make(map[string]*TestInfo),
		promptsByText: make(map[string]*PromptInfo),
	}
}

// RecordTestInfo deduplicates by source: if source is already known, prompt
// is appended to the existing record and that record is returned; otherwise
// a fresh TestInfo is created with the next id, an initial Other outcome,
// and prompts=[prompt].
func (c *Collector) RecordTestInfo(source string, prompt *Prompt, api string) *TestInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	if info, ok := c.testsBySource[source]; ok {
		info.Prompts = append(info.Prompts, prompt)
		return info
	}

	c.nextTestID++
	info := &TestInfo{
		ID:      c.nextTestID,
		Name:    TestFilePrefix + strconv.Itoa(c.nextTestID) + TestFileExtension,
		Source:  source,
		Outcome: OtherOutcome(),
		Prompts: []*Prompt{prompt},
		API:     api,
	}
	c.testsBySource[source] = info
	return info
}

// RecordTestResult overwrites info's outcome. temperature is accepted for
// external bookkeeping (a driver may want to log it) but is not stored on
// TestInfo.
func (c *Collector) RecordTestResult(info *TestInfo, temperature float64, outcome TestOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = temperature
	info.Outcome = outcome
}

// RecordPromptInfo registers prompt exactly once, keyed by its assembled
// text, with a monotonically assigned id and file name.
func (c *Collector) RecordPromptInfo(prompt *Prompt, temperature float64, completions map[string]struct{}) *PromptInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := prompt.Assemble()
	if info, ok := c.promptsByText[key]; ok {
		return info
	}

	c.nextPromptID++
	info := &PromptInfo{
		ID:          c.nextPromptID,
		Prompt:      prompt,
		File:        PromptFilePrefix + strconv.Itoa(c.nextPromptID) + PromptFileExtension,
		Temperature: temperature,
		Completions: completions,
	}
	c.promptsByText[key] = info
	return info
}

// RecordCoverageInfo stores summary verbatim as the latest coverage
// snapshot.
func (c *Collector) RecordCoverageInfo(summary CoverageSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coverage = summary
	c.haveCoverage = true
}

// CoverageInfo returns the latest recorded coverage summary, if any.
func (c *Collector) CoverageInfo() (CoverageSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.coverage, c.haveCoverage
}

// TestInfoFor returns the TestInfo recorded for source, if any.
func (c *Collector) TestInfoFor(source string) (*TestInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.testsBySource[source]
	return info, ok
}

// PromptInfoFor returns the PromptInfo recorded for an assembled prompt
// text, if any.
func (c *Collector) PromptInfoFor(assembledText string) (*PromptInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.promptsByText[assembledText]
	return info, ok
}

// AllTests returns every recorded TestInfo, in ascending id order.
func (c *Collector) AllTests() []*TestInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*TestInfo, len(c.testsBySource))
	for _, info := range c.testsBySource {
		out[info.ID-1] = info
	}
	return out
}

// AllPrompts returns every recorded PromptInfo, in ascending id order.
func (c *Collector) AllPrompts() []*PromptInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*PromptInfo, len(c.promptsByText))
	for _, info := range c.promptsByText {
		out[info.ID-1] = info
	}
	return out
}
