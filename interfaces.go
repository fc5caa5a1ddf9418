package testgen

import "context"

// CompletionProvider asks an LLM completion endpoint for candidate test
// bodies for an assembled prompt at a given temperature. Implementations
// MUST swallow transport/upstream failures into an empty result (logging a
// diagnostic themselves) rather than returning an error — the generation
// loop never retries a provider failure, so a non-nil error here is treated
// identically to an empty set, but a well-behaved provider never produces
// one.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string, temperature float64) (map[string]struct{}, error)
}

// Validator executes a candidate test source in a sandbox and classifies
// the result into one of TestOutcome's four variants. CoverageSummary
// reflects whatever coverage has accumulated across every Validate call so
// far; the Generator never calls it — the CLI reads it once, after every
// configured function has been processed.
type Validator interface {
	Validate(ctx context.Context, name, source string) (TestOutcome, error)
	CoverageSummary() CoverageSummary
}

// SnippetMap looks up usage snippets mined for a function by name. A
// missing entry and an empty slice are both valid "no snippets" answers:
// either suppresses the snippets section and disables SnippetIncluder.
type SnippetMap func(functionName string) ([]string, bool)
