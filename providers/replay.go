package providers

import (
	"context"
	"fmt"
)

// ReplayProvider serves precomputed completions keyed by (prompt,
// temperature), for deterministic tests and for replaying a recorded run
// without a live model. A miss yields an empty result, same as a live
// provider that declines to answer.
type ReplayProvider struct {
	fixtures map[string]map[string]struct{}
}

// NewReplayProvider builds a ReplayProvider from a fixture map keyed by
// fmt.Sprintf("%.4f|%s", temperature, prompt).
func NewReplayProvider(fixtures map[string]map[string]struct{}) *ReplayProvider {
	return &ReplayProvider{fixtures: fixtures}
}

// Record adds or replaces the fixture for one (prompt, temperature) pair.
func (p *ReplayProvider) Record(prompt string, temperature float64, completions ...string) {
	if p.fixtures == nil {
		p.fixtures = make(map[string]map[string]struct{})
	}
	set := make(map[string]struct{}, len(completions))
	for _, c := range completions {
		set[c] = struct{}{}
	}
	p.fixtures[replayKey(prompt, temperature)] = set
}

// Complete satisfies testgen.CompletionProvider.
func (p *ReplayProvider) Complete(_ context.Context, prompt string, temperature float64) (map[string]struct{}, error) {
	set, ok := p.fixtures[replayKey(prompt, temperature)]
	if !ok {
		return map[string]struct{}{}, nil
	}
	out := make(map[string]struct{}, len(set))
	for c := range set {
		out[c] = struct{}{}
	}
	return out, nil
}

func replayKey(prompt string, temperature float64) string {
	return fmt.Sprintf("%.4f|%s", temperature, prompt)
}
