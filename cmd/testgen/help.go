package main

import (
	"fmt"
	"io"
)

func runHelp(args []string, stdout io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stdout, HelpMainUsage)
		return ExitCodeSuccess
	}

	switch args[0] {
	case CmdNameRun:
		fmt.Fprintln(stdout, HelpRunUsage)
	case CmdNameValidateConfig:
		fmt.Fprintln(stdout, HelpValidateConfigUsage)
	case CmdNameDiff:
		fmt.Fprintln(stdout, HelpDiffUsage)
	case CmdNameVersion:
		fmt.Fprintln(stdout, HelpVersionUsage)
	case CmdNameHelp:
		fmt.Fprintln(stdout, HelpHelpUsage)
	default:
		fmt.Fprintln(stdout, HelpMainUsage)
		return ExitCodeUsageError
	}
	return ExitCodeSuccess
}
