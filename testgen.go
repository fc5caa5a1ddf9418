// Package testgen drives LLM-assisted unit test generation for the exported
// functions of a target package.
//
// The engine repeatedly assembles a prompt from a function's signature (plus,
// as refinement progresses, its doc comment, usage snippets, and source
// body), asks a completion provider for candidate test bodies, runs each
// candidate through a sandboxed validator, and records the outcome. Prompts
// that produced an unsatisfactory completion are refined into successor
// prompts by a fixed, ordered set of refiners until the worklist is empty.
// Once a temperature has produced a passing test, no later temperature is
// tried.
//
// # Basic usage
//
//	collector := testgen.NewCollector()
//	gen := testgen.NewGenerator(provider, validator, snippetMap, collector,
//	    testgen.WithLogger(logger),
//	    testgen.WithTemperatures(0.2, 0.7),
//	)
//	err := gen.GenerateAndValidate(ctx, fn)
//
// # Data model
//
// A Function is an immutable description of one exported function. A Prompt
// pairs a Function with PromptOptions and an ordered snippet list; its
// identity for deduplication purposes is its assembled text, not the Go
// object holding it. A Collector owns the mapping from assembled test source
// to TestInfo and from assembled prompt text to PromptInfo, and is the only
// mutable shared state the generation loop touches.
//
// # Refiners
//
// Four refiners run in a fixed order after every completion is validated:
// SnippetIncluder, RetryWithError, DocCommentIncluder, and
// FunctionBodyIncluder. Each inspects the prompt, the completion, and the
// outcome, and proposes zero or more successor prompts carrying provenance
// back to the prompt, test, and refiner that produced them.
package testgen
