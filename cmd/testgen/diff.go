package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/testgen/config"
	"github.com/itsatony/testgen/report"
)

func runDiff(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(CmdNameDiff, flag.ContinueOnError)
	configPath := fs.String(FlagConfig, "", "")
	baseRun := fs.String(FlagBaseRun, "", "")
	currentRun := fs.String(FlagRun, "", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFormat, err)
		return ExitCodeUsageError
	}
	if *configPath == "" || *baseRun == "" || *currentRun == "" {
		fmt.Fprintln(stderr, "--config, --base, and --run are all required")
		return ExitCodeUsageError
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadConfig, err)
		return ExitCodeError
	}

	store, err := report.OpenArtifactStore(cfg.ArtifactStore.Driver, cfg.ArtifactStore.ConnectionString)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadReport, err)
		return ExitCodeError
	}
	defer store.Close()

	ctx := context.Background()
	baseline, err := store.Load(ctx, *baseRun)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadReport, err)
		return ExitCodeError
	}
	current, err := store.Load(ctx, *currentRun)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadReport, err)
		return ExitCodeError
	}

	delta := report.Diff(current, baseline)
	fmt.Fprintf(stdout, "Coverage change: %+.1f%%\n", delta.CoverageDiff)
	fmt.Fprintf(stdout, "Newly passing (%d):\n", len(delta.NewlyPassing))
	for _, fn := range delta.NewlyPassing {
		fmt.Fprintf(stdout, "  + %s\n", fn)
	}
	fmt.Fprintf(stdout, "Regressed (%d):\n", len(delta.Regressed))
	for _, fn := range delta.Regressed {
		fmt.Fprintf(stdout, "  - %s\n", fn)
	}

	return ExitCodeSuccess
}
