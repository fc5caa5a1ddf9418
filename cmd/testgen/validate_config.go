package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/testgen/config"
)

func runValidateConfig(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(CmdNameValidateConfig, flag.ContinueOnError)
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

	result := cfg.Validate()
	if result.IsValid() {
		fmt.Fprintln(stdout, "config is valid")
		return ExitCodeSuccess
	}

	fmt.Fprintln(stderr, ErrMsgInvalidConfig+":")
	for _, issue := range result.Issues {
		fmt.Fprintf(stderr, "  [%s] %s\n", issue.Field, issue.Message)
	}
	return ExitCodeError
}
