package testgen

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// PromptOptions is a configuration of three recognized booleans. All default
// to false for the initial prompt; each of the three includer refiners flips
// exactly one on when it produces a successor, and RetryWithError keeps them
// unchanged.
type PromptOptions struct {
	IncludeSnippets     bool
	IncludeDocComment   bool
	IncludeFunctionBody bool
}

// Provenance is the triple that caused a prompt to be produced: the parent
// prompt, the test id the parent's completion was validated against, and the
// name of the refiner that emitted this prompt. A refined prompt carries one
// provenance record per independent path that reached it.
type Provenance struct {
	OriginalPrompt *Prompt
	TestID         int
	Refiner        string
}

// retryPayload is the extra state a retry prompt carries: the failing
// completion body and the error message the validator reported for it.
// Modeled as an optional field rather than a subtype, keeping Prompt a
// single, closed data shape.
type retryPayload struct {
	FailingBody  string
	ErrorMessage string
}

// Prompt is the structured state from which assembled text is derived. Its
// identity for deduplication purposes is its assembled text, not the Go
// pointer — two distinct *Prompt values that assemble to the same string are
// the same prompt. hash caches a stable digest of that text; it is never
// exposed outside the package, and the collector and generation loop key
// their maps on the assembled text itself.
type Prompt struct {
	Function   *Function
	Snippets   []string
	Options    PromptOptions
	Provenance []Provenance

	retry *retryPayload

	assembled string
	hashed    string
}

// NewPrompt builds the initial prompt for a function: no snippets options
// set, carrying whichever snippets were mined for it (the snippets section
// is only rendered when IncludeSnippets is later turned on by a refiner).
func NewPrompt(fn *Function, snippets []string) *Prompt {
	return &Prompt{
		Function: fn,
		Snippets: append([]string(nil), snippets...),
	}
}

// withOptions returns a copy of p with the given options, sharing the same
// Function and Snippets slice (snippets are never mutated, so sharing is
// safe) and starting with an empty provenance list — the caller is
// responsible for tagging provenance before the prompt is enqueued.
func (p *Prompt) withOptions(opts PromptOptions) *Prompt {
	return &Prompt{
		Function: p.Function,
		Snippets: p.Snippets,
		Options:  opts,
	}
}

// newRetryPrompt builds a retry specialization of p carrying the failing
// completion and its error message. p itself must not already be a retry
// prompt: retry prompts never chain.
func newRetryPrompt(p *Prompt, failingBody, errorMessage string) (*Prompt, error) {
	if p.IsRetry() {
		return nil, NewRetryChainingError()
	}
	return &Prompt{
		Function: p.Function,
		Snippets: p.Snippets,
		Options:  p.Options,
		retry: &retryPayload{
			FailingBody:  failingBody,
			ErrorMessage: errorMessage,
		},
	}, nil
}

// IsRetry reports whether p is a retry prompt.
func (p *Prompt) IsRetry() bool {
	return p.retry != nil
}

// addProvenance appends a provenance record. A prompt may carry several if
// it was independently reached more than once.
func (p *Prompt) addProvenance(prov Provenance) {
	p.Provenance = append(p.Provenance, prov)
}

// importsHeader returns the three-line imports header binding the package
// under test to its sanitized name.
func importsHeader(fn *Function) string {
	bound := sanitize(fn.Package)
	var b strings.Builder
	b.WriteString("const { describe, it } = require('node:test');\n")
	b.WriteString("const assert = require('node:assert');\n")
	b.WriteString("const " + bound + " = require('" + fn.Package + "');\n")
	return b.String()
}

// snippetsSection renders the usage-snippets section, present only when
// IncludeSnippets is set.
func snippetsSection(snippets []string) string {
	var b strings.Builder
	for i, snippet := range snippets {
		b.WriteString(UsageCommentPrefix)
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		for _, line := range strings.Split(snippet, "\n") {
			b.WriteString(LineCommentPrefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// signatureLine renders the function's signature as a single commented-out
// line.
func signatureLine(fn *Function) string {
	return LineCommentPrefix + fn.AccessPath + fn.Signature + "\n"
}

// Assemble builds the prompt's textual identity: imports, usage snippets
// (if enabled), doc comment (if enabled and present), signature, function
// body (if enabled and non-empty), suite header, and test-case header, in
// that order. For a retry prompt the suite/test-case headers and the
// preceding sections are replaced by the base assembly with stub headers,
// followed by the failing body, the error trailer, and the original
// test-case header.
func (p *Prompt) Assemble() string {
	if p.assembled != "" {
		return p.assembled
	}

	fn := p.Function
	var b strings.Builder
	b.WriteString(importsHeader(fn))

	if p.Options.IncludeSnippets && len(p.Snippets) > 0 {
		b.WriteString(snippetsSection(p.Snippets))
	}

	if p.Options.IncludeDocComment && fn.DocComment != "" {
		b.WriteString(trimAndCombineDocComment(fn.DocComment))
	}

	b.WriteString(signatureLine(fn))

	if p.Options.IncludeFunctionBody && fn.Body != "" {
		b.WriteString(commentOut(fn.Body))
	}

	if p.retry != nil {
		b.WriteString(StubSuiteHeader)
		b.WriteString(StubTestCaseHeader)
		base := b.String()

		var r strings.Builder
		r.WriteString(base)
		r.WriteString(p.retry.FailingBody)
		r.WriteByte('\n')
		r.WriteString(RetryTrailerPrefix)
		r.WriteString(p.retry.ErrorMessage)
		r.WriteString(RetryTrailerSuffix)
		r.WriteString(TestCaseHeaderPrefix)
		r.WriteString(fn.AccessPath)
		r.WriteString(TestCaseHeaderSuffix)

		p.assembled = r.String()
		return p.assembled
	}

	b.WriteString(SuiteHeaderPrefix)
	b.WriteString(sanitize(fn.Package))
	b.WriteString(SuiteHeaderSuffix)
	b.WriteString(TestCaseHeaderPrefix)
	b.WriteString(fn.AccessPath)
	b.WriteString(TestCaseHeaderSuffix)

	p.assembled = b.String()
	return p.assembled
}

// hash returns a stable digest of the assembled text, cached on first
// computation. No map in the package is currently keyed on it; object
// identity and this hash are both internal — only the assembled text is ever
// compared across package boundaries.
func (p *Prompt) hash() string {
	if p.hashed == "" {
		sum := sha256.Sum256([]byte(p.Assemble()))
		p.hashed = hex.EncodeToString(sum[:])
	}
	return p.hashed
}

// CompleteTest builds a candidate test source from a completion body.
// Headers are replaced with stable stubs so that two differently-named API
// functions whose bodies coincide deduplicate to the same test source. The
// body is appended with a fixed 8-space indent, the result is run through
// closeBrackets, and on success the final two closers are normalized to a
// pretty two-line suffix. Returns ("", false) when closeBrackets cannot
// repair the completion.
func (p *Prompt) CompleteTest(body string, stubHeaders bool) (string, bool) {
	var b strings.Builder

	fn := p.Function
	b.WriteString(importsHeader(fn))

	if p.Options.IncludeSnippets && len(p.Snippets) > 0 {
		b.WriteString(snippetsSection(p.Snippets))
	}
	if p.Options.IncludeDocComment && fn.DocComment != "" {
		b.WriteString(trimAndCombineDocComment(fn.DocComment))
	}
	b.WriteString(signatureLine(fn))
	if p.Options.IncludeFunctionBody && fn.Body != "" {
		b.WriteString(commentOut(fn.Body))
	}

	if stubHeaders {
		b.WriteString(StubSuiteHeader)
		b.WriteString(StubTestCaseHeader)
	} else {
		b.WriteString(SuiteHeaderPrefix)
		b.WriteString(sanitize(fn.Package))
		b.WriteString(SuiteHeaderSuffix)
		b.WriteString(TestCaseHeaderPrefix)
		b.WriteString(fn.AccessPath)
		b.WriteString(TestCaseHeaderSuffix)
	}

	b.WriteString(indentFirstNonWhitespace(body, 8))

	fragment, ok := closeBrackets(b.String())
	if !ok {
		return "", false
	}

	return prettifyClosers(fragment.Source), true
}

// indentFirstNonWhitespace applies n spaces of indent before the first
// non-whitespace character of body, leaving the rest untouched.
func indentFirstNonWhitespace(body string, n int) string {
	i := 0
	for i < len(body) && (body[i] == ' ' || body[i] == '\t' || body[i] == '\n' || body[i] == '\r') {
		i++
	}
	return strings.Repeat(" ", n) + body[i:]
}

// prettifyClosers normalizes the final two closing brackets to the
// conventional two-line suite/test-case closer.
func prettifyClosers(source string) string {
	trimmed := strings.TrimRight(source, " \t\n\r")
	trimmed = strings.TrimSuffix(trimmed, "})")
	trimmed = strings.TrimRight(trimmed, " \t\n\r")
	trimmed = strings.TrimSuffix(trimmed, "})")
	trimmed = strings.TrimRight(trimmed, " \t\n\r")
	return trimmed + "\n" + PrettySuffix
}
