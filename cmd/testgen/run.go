package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itsatony/testgen"
	"github.com/itsatony/testgen/config"
	"github.com/itsatony/testgen/providers"
	"github.com/itsatony/testgen/report"
	"github.com/itsatony/testgen/snippets"
	"github.com/itsatony/testgen/validator"
)

func runGenerate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(CmdNameRun, flag.ContinueOnError)
	configPath := fs.String(FlagConfig, "", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFormat, err)
		return ExitCodeUsageError
	}
	if *configPath == "" {
		fmt.Fprintln(stderr, ErrMsgMissingConfig)
		return ExitCodeUsageError
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadConfig, err)
		return ExitCodeError
	}
	if verr := cfg.ValidateOrError(); verr != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidConfig, verr)
		return ExitCodeError
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx := context.Background()
	if cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Deadline)
		defer cancel()
	}

	var snippetMap testgen.SnippetMap
	if cfg.SnippetsDir != "" {
		idx, err := snippets.LoadDir(cfg.SnippetsDir)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRunFailed, err)
			return ExitCodeError
		}
		snippetMap = idx.AsSnippetMap()
	}

	provider := providers.NewHTTPProvider(cfg.Provider.Endpoint, cfg.Provider.APIKey, cfg.Provider.Model,
		providers.WithHTTPLogger(logger),
		providers.WithRateLimit(cfg.Provider.RatePerSecond, cfg.Provider.Burst),
		providers.WithNumCompletions(maxInt(cfg.MaxCompletionsPerPrompt, 1)),
	)

	sandbox := validator.NewNodeSandbox(
		validator.WithLogger(logger),
		validator.WithBaseDir(cfg.OutputDir),
	)

	collector := testgen.NewCollector()

	genOpts := []testgen.GeneratorOption{testgen.WithLogger(logger)}
	if len(cfg.Temperatures) > 0 {
		genOpts = append(genOpts, testgen.WithTemperatures(cfg.Temperatures...))
	}
	generator := testgen.NewGenerator(provider, sandbox, snippetMap, collector, genOpts...)

	for _, sig := range cfg.Signatures {
		fn, err := testgen.ParseSignature(sig)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRunFailed, err)
			return ExitCodeError
		}
		fn.Package = cfg.TargetPackage

		if err := generator.GenerateAndValidate(ctx, fn); err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRunFailed, err)
			return ExitCodeError
		}
	}

	r := buildReport(cfg.TargetPackage, collector, sandbox.CoverageSummary())
	fmt.Fprint(stdout, report.Render(r))

	if cfg.ArtifactStore.Driver != "" {
		store, err := report.OpenArtifactStore(cfg.ArtifactStore.Driver, cfg.ArtifactStore.ConnectionString)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRunFailed, err)
			return ExitCodeError
		}
		defer store.Close()

		runID := uuid.NewString()
		if err := store.Save(ctx, runID, r); err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRunFailed, err)
			return ExitCodeError
		}
	}

	return ExitCodeSuccess
}

func buildReport(targetPackage string, collector *testgen.Collector, coverage testgen.CoverageSummary) *report.Report {
	r := &report.Report{
		TargetPackage: targetPackage,
		GeneratedAt:   time.Now(),
		Coverage: report.CoverageSnapshot{
			TotalStatements:   coverage.TotalStatements,
			CoveredStatements: coverage.CoveredStatements,
		},
	}

	for _, p := range collector.AllPrompts() {
		r.Prompts = append(r.Prompts, report.PromptRecord{
			File:            p.File,
			Function:        p.Prompt.Function.AccessPath,
			Temperature:     p.Temperature,
			CompletionCount: len(p.Completions),
		})
	}

	for _, t := range collector.AllTests() {
		function := t.API
		r.Tests = append(r.Tests, report.TestRecord{
			File:     t.Name,
			Function: function,
			Outcome:  t.Outcome.Kind,
		})
	}

	return r
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
