package testgen

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// scriptedProvider returns, for each temperature, a fixed set of
// completions regardless of prompt text, letting tests drive the worklist
// deterministically.
type scriptedProvider struct {
	byTemperature map[float64][]string
}

func (p *scriptedProvider) Complete(_ context.Context, _ string, temperature float64) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, c := range p.byTemperature[temperature] {
		out[c] = struct{}{}
	}
	return out, nil
}

// keywordValidator passes any source containing "PASS" and fails everything
// else with a fixed message.
type keywordValidator struct{}

func (keywordValidator) Validate(_ context.Context, _ string, source string) (TestOutcome, error) {
	for i := 0; i+4 <= len(source); i++ {
		if source[i:i+4] == "PASS" {
			return PassedOutcome(nil, nil), nil
		}
	}
	return FailedOutcome("expected PASS"), nil
}

func (keywordValidator) CoverageSummary() CoverageSummary { return CoverageSummary{} }

func TestGenerateAndValidate_StopsAtFirstPassingTemperature(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := &scriptedProvider{byTemperature: map[float64][]string{
		0.2: {"assert.ok(PASS);"},
		0.8: {"assert.ok(true);"},
	}}
	collector := NewCollector()
	g := NewGenerator(provider, keywordValidator{}, nil, collector,
		WithTemperatures(0.2, 0.8),
		WithRefiners(), // isolate: no refiner-driven expansion
	)

	err := g.GenerateAndValidate(context.Background(), testFunction())
	require.NoError(t, err)

	tests := collector.AllTests()
	require.Len(t, tests, 1)
	assert.True(t, tests[0].Outcome.IsPassed())
}

func TestGenerateAndValidate_FallsThroughToNextTemperatureOnFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := &scriptedProvider{byTemperature: map[float64][]string{
		0.2: {"assert.ok(false);"},
		0.8: {"assert.ok(PASS);"},
	}}
	collector := NewCollector()
	g := NewGenerator(provider, keywordValidator{}, nil, collector,
		WithTemperatures(0.2, 0.8),
		WithRefiners(),
	)

	err := g.GenerateAndValidate(context.Background(), testFunction())
	require.NoError(t, err)

	tests := collector.AllTests()
	require.Len(t, tests, 2)

	var sawPass bool
	for _, info := range tests {
		if info.Outcome.IsPassed() {
			sawPass = true
		}
	}
	assert.True(t, sawPass)
}

func TestGenerateAndValidate_EmptyCompletionRecordedAsFailed(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := &scriptedProvider{byTemperature: map[float64][]string{
		0.2: {"   \n  "},
	}}
	collector := NewCollector()
	g := NewGenerator(provider, keywordValidator{}, nil, collector,
		WithTemperatures(0.2),
		WithRefiners(),
	)

	err := g.GenerateAndValidate(context.Background(), testFunction())
	require.NoError(t, err)

	tests := collector.AllTests()
	require.Len(t, tests, 1)
	assert.True(t, tests[0].Outcome.IsFailed())
	assert.Equal(t, ErrMsgEmptyCompletion, tests[0].Outcome.Err.Message)
}

func TestGenerateAndValidate_UnrepairableSyntaxRecordedAsFailed(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := &scriptedProvider{byTemperature: map[float64][]string{
		0.2: {"assert.ok(a]);"},
	}}
	collector := NewCollector()
	g := NewGenerator(provider, keywordValidator{}, nil, collector,
		WithTemperatures(0.2),
		WithRefiners(),
	)

	err := g.GenerateAndValidate(context.Background(), testFunction())
	require.NoError(t, err)

	tests := collector.AllTests()
	require.Len(t, tests, 1)
	assert.True(t, tests[0].Outcome.IsFailed())
	assert.Equal(t, ErrMsgInvalidSyntax, tests[0].Outcome.Err.Message)
}

func TestGenerateAndValidate_FailureSpawnsRetryProvenance(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := &scriptedProvider{byTemperature: map[float64][]string{
		0.2: {"assert.ok(false);"},
	}}
	collector := NewCollector()
	g := NewGenerator(provider, keywordValidator{}, nil, collector,
		WithTemperatures(0.2),
		WithRefiners(retryWithError{}),
	)

	err := g.GenerateAndValidate(context.Background(), testFunction())
	require.NoError(t, err)

	prompts := collector.AllPrompts()
	require.Len(t, prompts, 2) // the initial prompt plus the retry prompt
	var foundRetryProvenance bool
	for _, info := range prompts {
		for _, prov := range info.Prompt.Provenance {
			if prov.Refiner == RefinerNameRetryWithError {
				foundRetryProvenance = true
			}
		}
	}
	assert.True(t, foundRetryProvenance)
}

func TestGenerateAndValidate_DistinctSourcesEachValidated(t *testing.T) {
	defer goleak.VerifyNone(t)

	calls := 0
	countingValidator := validatorFunc(func(_ context.Context, _ string, _ string) (TestOutcome, error) {
		calls++
		return FailedOutcome("nope"), nil
	})

	provider := &scriptedProvider{byTemperature: map[float64][]string{
		0.2: {"assert.ok(false);"},
	}}
	collector := NewCollector()
	g := NewGenerator(provider, countingValidator, nil, collector,
		WithTemperatures(0.2),
		WithRefiners(docCommentIncluder{}),
	)

	err := g.GenerateAndValidate(context.Background(), testFunction())
	require.NoError(t, err)
	assert.Equal(t, 2, calls) // initial prompt, then the doc-comment refinement — distinct sources
}

func TestGenerateAndValidate_RespectsCanceledContext(t *testing.T) {
	provider := &scriptedProvider{byTemperature: map[float64][]string{0.2: {"x"}}}
	collector := NewCollector()
	g := NewGenerator(provider, keywordValidator{}, nil, collector, WithTemperatures(0.2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.GenerateAndValidate(ctx, testFunction())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateAndValidate_SnippetsFromMap(t *testing.T) {
	defer goleak.VerifyNone(t)

	snippetMap := SnippetMap(func(name string) ([]string, bool) {
		if name == "titleCase" {
			return []string{"titleCase('a')"}, true
		}
		return nil, false
	})

	provider := &scriptedProvider{byTemperature: map[float64][]string{
		0.2: {"assert.ok(PASS);"},
	}}
	collector := NewCollector()
	g := NewGenerator(provider, keywordValidator{}, snippetMap, collector,
		WithTemperatures(0.2),
		WithRefiners(),
	)

	err := g.GenerateAndValidate(context.Background(), testFunction())
	require.NoError(t, err)

	prompts := collector.AllPrompts()
	require.Len(t, prompts, 1)
	assert.Equal(t, []string{"titleCase('a')"}, prompts[0].Prompt.Snippets)
}

func TestGenerateAndValidate_DeterministicWithinTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	provider := &scriptedProvider{byTemperature: map[float64][]string{0.2: {"assert.ok(PASS);"}}}
	collector := NewCollector()
	g := NewGenerator(provider, keywordValidator{}, nil, collector, WithTemperatures(0.2))

	err := g.GenerateAndValidate(ctx, testFunction())
	assert.NoError(t, err)
}

type validatorFunc func(ctx context.Context, name, source string) (TestOutcome, error)

func (f validatorFunc) Validate(ctx context.Context, name, source string) (TestOutcome, error) {
	return f(ctx, name, source)
}

func (validatorFunc) CoverageSummary() CoverageSummary { return CoverageSummary{} }
