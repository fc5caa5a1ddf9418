package testgen

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Generator drives the worklist-based generation loop: for each configured
// temperature, it assembles prompts, asks a CompletionProvider for
// candidate bodies, validates them, and lets the configured refiners
// propose successor prompts, stopping at the first temperature that
// produces a passing test.
type Generator struct {
	provider  CompletionProvider
	validator Validator
	snippets  SnippetMap
	collector *Collector
	cfg       *generatorConfig
}

// NewGenerator builds a Generator. snippets may be nil, meaning no function
// has mined usage snippets.
func NewGenerator(provider CompletionProvider, validator Validator, snippets SnippetMap, collector *Collector, opts ...GeneratorOption) *Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return &Generator{
		provider:  provider,
		validator: validator,
		snippets:  snippets,
		collector: collector,
		cfg:       cfg,
	}
}

// GenerateAndValidate runs the generation loop for fn across the configured
// temperatures in order, stopping early once a temperature yields a passing
// test (invariant: the loop never revisits a lower temperature after a
// higher one has started). It returns a non-nil error only when ctx is
// canceled or its deadline elapses.
func (g *Generator) GenerateAndValidate(ctx context.Context, fn *Function) error {
	for _, temperature := range g.cfg.temperatures {
		if err := ctx.Err(); err != nil {
			return err
		}

		passed, err := g.runTemperature(ctx, fn, temperature)
		if err != nil {
			return err
		}
		if passed {
			g.cfg.logger.Info("generation passed",
				zap.String("function", fn.AccessPath),
				zap.Float64("temperature", temperature))
			break
		}
	}
	return nil
}

func (g *Generator) snippetsFor(fn *Function) []string {
	if g.snippets == nil {
		return nil
	}
	if found, ok := g.snippets(fn.Name); ok {
		return found
	}
	return nil
}

// runTemperature runs one full LIFO worklist pass at a fixed temperature. It
// resets the "seen" set for every temperature: a prompt text produced at
// one temperature is eligible to be tried again at another.
func (g *Generator) runTemperature(ctx context.Context, fn *Function, temperature float64) (bool, error) {
	seen := make(map[string]*Prompt)
	worklist := []*Prompt{NewPrompt(fn, g.snippetsFor(fn))}

	generatedPassing := false
	steps := 0

	for len(worklist) > 0 {
		steps++
		if steps%DefaultDeadlineCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return generatedPassing, err
			}
		}

		p := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		key := p.Assemble()
		if existing, ok := seen[key]; ok {
			existing.Provenance = append(existing.Provenance, p.Provenance...)
			continue
		}
		seen[key] = p

		completions, err := g.provider.Complete(ctx, key, temperature)
		if err != nil {
			g.cfg.logger.Warn("completion provider failed, treating as empty",
				zap.Error(err), zap.String("function", fn.AccessPath))
			completions = nil
		}

		for completion := range completions {
			info, outcome := g.validateCompletion(ctx, p, completion, temperature)
			if outcome.IsPassed() {
				generatedPassing = true
			}

			testID := info.ID

			g.cfg.trace.record(TraceEvent{
				Function:    fn.AccessPath,
				Temperature: temperature,
				Prompt:      key,
				Outcome:     outcome.Kind,
			})

			for _, refiner := range g.cfg.refiners {
				for _, next := range refiner.Refine(p, completion, outcome) {
					next.addProvenance(Provenance{
						OriginalPrompt: p,
						TestID:         testID,
						Refiner:        refiner.Name(),
					})
					g.cfg.trace.record(TraceEvent{
						Function:    fn.AccessPath,
						Temperature: temperature,
						Refiner:     refiner.Name(),
					})
					worklist = append(worklist, next)
				}
			}
		}

		g.collector.RecordPromptInfo(p, temperature, completions)
	}

	return generatedPassing, nil
}

// validateCompletion classifies one raw completion body and always records
// the outcome against a TestInfo, even when the completion is empty or
// unrepairable: those have no valid JS test source to key on, so they are
// keyed on the prompt's assembled text plus a marker distinguishing "empty"
// from "invalid", which still lets two identical failing attempts against
// the same prompt dedupe into one record. A syntactically valid completion
// that assembles to a test source already recorded for some other prompt
// short-circuits: the validator is not invoked a second time, and the
// existing outcome is reused, but the new prompt is still attached to that
// TestInfo's Prompts list.
func (g *Generator) validateCompletion(ctx context.Context, p *Prompt, raw string, temperature float64) (*TestInfo, TestOutcome) {
	trimmed := trimCompletion(raw)
	if strings.TrimSpace(trimmed) == "" {
		return g.recordOutcome(p, p.Assemble()+EmptyCompletionKeySuffix, temperature, FailedOutcome(ErrMsgEmptyCompletion))
	}

	source, ok := p.CompleteTest(trimmed, true)
	if !ok {
		key := p.Assemble() + InvalidSyntaxKeySuffix + trimmed
		return g.recordOutcome(p, key, temperature, FailedOutcome(ErrMsgInvalidSyntax))
	}

	if existing, already := g.collector.TestInfoFor(source); already {
		g.collector.RecordTestInfo(source, p, p.Function.AccessPath)
		return existing, existing.Outcome
	}

	outcome, err := g.validator.Validate(ctx, p.Function.AccessPath, source)
	if err != nil {
		outcome = FailedOutcome(ErrMsgValidatorFailure)
	}

	return g.recordOutcome(p, source, temperature, outcome)
}

// recordOutcome records source (or a synthetic key, for completions that
// never produced a real source) against the collector and stamps outcome
// onto the resulting TestInfo.
func (g *Generator) recordOutcome(p *Prompt, source string, temperature float64, outcome TestOutcome) (*TestInfo, TestOutcome) {
	info := g.collector.RecordTestInfo(source, p, p.Function.AccessPath)
	g.collector.RecordTestResult(info, temperature, outcome)
	return info, outcome
}
