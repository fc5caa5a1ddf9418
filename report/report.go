// Package report models a completed generation run as a Report, renders it
// to Markdown, diffs it against a prior run, and persists it through a
// pluggable ArtifactStore.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// PromptRecord is one prompt's contribution to a run: its file name, the
// temperature it was tried at, and how many distinct completions it
// produced.
type PromptRecord struct {
	File            string
	Function        string
	Temperature     float64
	CompletionCount int
	Passed          bool
}

// TestRecord is one distinct generated test's contribution to a run.
type TestRecord struct {
	File     string
	Function string
	Outcome  string
}

// Report is the full record of one generation run over a target package.
type Report struct {
	TargetPackage string
	GeneratedAt   time.Time
	Prompts       []PromptRecord
	Tests         []TestRecord
	Coverage      CoverageSnapshot
}

// CoverageSnapshot mirrors testgen.CoverageSummary without importing the
// root package, so report stays usable by tooling that only has access to
// a rendered/stored report.
type CoverageSnapshot struct {
	TotalStatements   int
	CoveredStatements int
}

// Percent returns covered/total as a percentage, or 0 when total is 0.
func (c CoverageSnapshot) Percent() float64 {
	if c.TotalStatements == 0 {
		return 0
	}
	return 100 * float64(c.CoveredStatements) / float64(c.TotalStatements)
}

// PassRate returns the fraction of functions with at least one passing
// test, as a percentage.
func (r *Report) PassRate() float64 {
	if len(r.Tests) == 0 {
		return 0
	}
	passingFunctions := make(map[string]bool)
	for _, t := range r.Tests {
		if t.Outcome == "passed" {
			passingFunctions[t.Function] = true
		}
	}
	allFunctions := make(map[string]bool)
	for _, t := range r.Tests {
		allFunctions[t.Function] = true
	}
	if len(allFunctions) == 0 {
		return 0
	}
	return 100 * float64(len(passingFunctions)) / float64(len(allFunctions))
}

// Render builds a Markdown summary of r.
func Render(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Generation report: %s\n\n", r.TargetPackage)
	fmt.Fprintf(&b, "Generated at: %s\n\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Functions with a passing test: %.1f%%\n", r.PassRate())
	fmt.Fprintf(&b, "- Statement coverage: %.1f%% (%d/%d)\n", r.Coverage.Percent(), r.Coverage.CoveredStatements, r.Coverage.TotalStatements)
	fmt.Fprintf(&b, "- Prompts: %d\n", len(r.Prompts))
	fmt.Fprintf(&b, "- Tests: %d\n\n", len(r.Tests))

	b.WriteString("## Tests\n\n")
	b.WriteString("| File | Function | Outcome |\n")
	b.WriteString("|---|---|---|\n")
	tests := append([]TestRecord(nil), r.Tests...)
	sort.Slice(tests, func(i, j int) bool { return tests[i].File < tests[j].File })
	for _, t := range tests {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", t.File, t.Function, t.Outcome)
	}

	return b.String()
}

// Delta is the result of comparing two reports: functions that newly pass,
// functions that regressed from passing to not passing, and the coverage
// point change.
type Delta struct {
	NewlyPassing []string
	Regressed    []string
	CoverageDiff float64
}

// Diff compares current against baseline.
func Diff(current, baseline *Report) *Delta {
	currentPass := passingSet(current)
	baselinePass := passingSet(baseline)

	delta := &Delta{
		CoverageDiff: current.Coverage.Percent() - baseline.Coverage.Percent(),
	}

	for fn := range currentPass {
		if !baselinePass[fn] {
			delta.NewlyPassing = append(delta.NewlyPassing, fn)
		}
	}
	for fn := range baselinePass {
		if !currentPass[fn] {
			delta.Regressed = append(delta.Regressed, fn)
		}
	}
	sort.Strings(delta.NewlyPassing)
	sort.Strings(delta.Regressed)

	return delta
}

func passingSet(r *Report) map[string]bool {
	out := make(map[string]bool)
	if r == nil {
		return out
	}
	for _, t := range r.Tests {
		if t.Outcome == "passed" {
			out[t.Function] = true
		}
	}
	return out
}
