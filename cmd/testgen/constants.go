package main

// Command names.
const (
	CmdNameRun            = "run"
	CmdNameValidateConfig = "validate-config"
	CmdNameDiff           = "diff"
	CmdNameVersion        = "version"
	CmdNameHelp           = "help"
)

// Flag names.
const (
	FlagConfig  = "config"
	FlagFormat  = "format"
	FlagBaseRun = "base"
	FlagRun     = "run"
)

// Flag defaults.
const (
	FlagDefaultFormat = "text"
)

// Output formats.
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes.
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeUsageError = 2
)

// Error messages.
const (
	ErrMsgMissingConfig = "config file required"
	ErrMsgInvalidFormat = "invalid output format"
	ErrMsgLoadConfig    = "failed to load config"
	ErrMsgInvalidConfig = "config failed validation"
	ErrMsgRunFailed     = "generation run failed"
	ErrMsgLoadReport    = "failed to load report"
)

// Help text.
const (
	HelpMainUsage = `testgen - generates and validates unit tests from function signatures

Usage:
    testgen <command> [options]

Commands:
    run               Generate and validate tests for a configured package
    validate-config   Validate a config file without running generation
    diff              Compare two stored reports
    version           Show version information
    help              Show help for a command

Use "testgen help <command>" for more information about a command.`

	HelpRunUsage = `Generate and validate tests for a configured package

Usage:
    testgen run --config <file>

Options:
    --config <file>   Path to the YAML config file (required)`

	HelpValidateConfigUsage = `Validate a config file without running generation

Usage:
    testgen validate-config --config <file>

Options:
    --config <file>   Path to the YAML config file (required)`

	HelpDiffUsage = `Compare two stored reports

Usage:
    testgen diff --config <file> --base <run-id> --run <run-id>

Options:
    --config <file>   Path to the YAML config file (required)
    --base <run-id>   Baseline run id
    --run <run-id>    Run id to compare against the baseline`

	HelpVersionUsage = `Show version information

Usage:
    testgen version [options]

Options:
    --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    testgen help [command]`
)

// Format strings.
const (
	FmtErrorWithCause = "%s: %v\n"
)
