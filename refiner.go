package testgen

// Refiner is a named strategy that, given a prompt and the outcome of
// validating one of its completions, proposes zero or more successor
// prompts. Refiners never read shared mutable state; they are pure over
// (prompt, completion, outcome).
type Refiner interface {
	Name() string
	Refine(p *Prompt, completion string, outcome TestOutcome) []*Prompt
}

// DefaultRefiners returns the four concrete refiners in their fixed
// application order: SnippetIncluder, RetryWithError, DocCommentIncluder,
// FunctionBodyIncluder.
func DefaultRefiners() []Refiner {
	return []Refiner{
		snippetIncluder{},
		retryWithError{},
		docCommentIncluder{},
		functionBodyIncluder{},
	}
}

// snippetIncluder turns on snippet inclusion when the function has at least
// one mined usage snippet and the prompt does not already include them.
type snippetIncluder struct{}

func (snippetIncluder) Name() string { return RefinerNameSnippetIncluder }

func (snippetIncluder) Refine(p *Prompt, _ string, _ TestOutcome) []*Prompt {
	if p.Options.IncludeSnippets || len(p.Snippets) == 0 {
		return nil
	}
	next := p.withOptions(PromptOptions{
		IncludeSnippets:     true,
		IncludeDocComment:   p.Options.IncludeDocComment,
		IncludeFunctionBody: p.Options.IncludeFunctionBody,
	})
	return []*Prompt{next}
}

// retryWithError emits a retry prompt carrying the failing completion and
// its error message, unless p is itself already a retry prompt (invariant
// 4: retry is non-chaining) or the outcome was not Failed.
type retryWithError struct{}

func (retryWithError) Name() string { return RefinerNameRetryWithError }

func (retryWithError) Refine(p *Prompt, completion string, outcome TestOutcome) []*Prompt {
	if p.IsRetry() || !outcome.IsFailed() {
		return nil
	}
	message := ""
	if outcome.Err != nil {
		message = outcome.Err.Message
	}
	retry, err := newRetryPrompt(p, completion, message)
	if err != nil {
		return nil
	}
	return []*Prompt{retry}
}

// docCommentIncluder turns on doc-comment inclusion when the function has a
// doc comment and the prompt does not already include it.
type docCommentIncluder struct{}

func (docCommentIncluder) Name() string { return RefinerNameDocCommentIncluder }

func (docCommentIncluder) Refine(p *Prompt, _ string, _ TestOutcome) []*Prompt {
	if p.Options.IncludeDocComment || p.Function.DocComment == "" {
		return nil
	}
	next := p.withOptions(PromptOptions{
		IncludeSnippets:     p.Options.IncludeSnippets,
		IncludeDocComment:   true,
		IncludeFunctionBody: p.Options.IncludeFunctionBody,
	})
	return []*Prompt{next}
}

// functionBodyIncluder turns on function-body inclusion when the function
// has a non-empty body and the prompt does not already include it.
type functionBodyIncluder struct{}

func (functionBodyIncluder) Name() string { return RefinerNameFunctionBodyIncluder }

func (functionBodyIncluder) Refine(p *Prompt, _ string, _ TestOutcome) []*Prompt {
	if p.Options.IncludeFunctionBody || p.Function.Body == "" {
		return nil
	}
	next := p.withOptions(PromptOptions{
		IncludeSnippets:     p.Options.IncludeSnippets,
		IncludeDocComment:   p.Options.IncludeDocComment,
		IncludeFunctionBody: true,
	})
	return []*Prompt{next}
}
