package flags

// Package flags defines canonical CLI flag names shared across the CLI and engine.
// Keeping these as constants helps avoid drift between Cobra flag wiring and other
// code paths that reference flags (e.g. help text and error messages).
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Assignment.Name, flags.FlagName, "", "...")
//	arg := "--" + flags.FlagName
const (
	// Assignment
	FlagNumber   = "number"
	FlagName     = "name"
	FlagDeadline = "deadline"
	FlagTests    = "tests"

	// Targeting
	FlagRoster    = "roster"
	FlagOrg       = "org"
	FlagTargetDir = "target-dir"
	FlagExclude   = "exclude"
	FlagMaxRepos  = "max-repos"
	FlagDryRun    = "dry-run"

	// Output
	FlagConsoleFormat = "console-format"
	FlagOut           = "out"
	FlagOutFormat     = "out-format"
	FlagNoConsole     = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
)
