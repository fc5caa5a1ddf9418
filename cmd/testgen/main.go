// Command testgen generates and validates unit tests for the functions
// named in a YAML config file, and reports the results.
package main

import (
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is the CLI entry point, separated from main for testability.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runHelp(nil, stdout)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case CmdNameRun:
		return runGenerate(cmdArgs, stdout, stderr)
	case CmdNameValidateConfig:
		return runValidateConfig(cmdArgs, stdout, stderr)
	case CmdNameDiff:
		return runDiff(cmdArgs, stdout, stderr)
	case CmdNameVersion:
		return runVersion(cmdArgs, stdout, stderr)
	case CmdNameHelp:
		return runHelp(cmdArgs, stdout)
	default:
		return runHelp([]string{cmd}, stdout)
	}
}
