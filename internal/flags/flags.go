// Package flags defines canonical CLI flag names shared across the CLI and the
// config loader. Keeping these as constants helps avoid drift between Cobra
// flag wiring and the koanf keys the loader maps explicitly set flags onto.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&kind, flags.FlagKind, "auto", "...")
//	key, ok := flags.ConfigKey(flags.FlagKind) // "input.kind"
package flags

const (
	// Root
	FlagConfig  = "config"
	FlagVerbose = "verbose"

	// Input
	FlagKind = "kind"
	FlagCert = "cert"
	FlagCRL  = "crl"

	// Lints
	FlagFilter      = "filter"
	FlagFailOn      = "fail-on"
	FlagZLint       = "zlint"
	FlagZLintConfig = "zlint-config"

	// Output
	FlagConsoleFormat = "console-format"
	FlagReport        = "report"
	FlagOut           = "out"
	FlagOutFormat     = "out-format"
	FlagNoConsole     = "no-console"
	FlagNoColor       = "no-color"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagLintWorkers = "lint-workers"

	// lints list
	FlagQuiet  = "quiet"
	FlagFormat = "format"
)

// configKeys maps flags backed by a config field to their koanf key.
// --cert and --crl are shorthands resolved by the CLI into input.kind.
var configKeys = map[string]string{
	FlagVerbose:       "runtime.verbose",
	FlagKind:          "input.kind",
	FlagFilter:        "lints.filter",
	FlagFailOn:        "lints.fail_on",
	FlagZLint:         "lints.zlint",
	FlagZLintConfig:   "lints.zlint_config",
	FlagConsoleFormat: "output.console_format",
	FlagReport:        "output.report",
	FlagOut:           "output.out",
	FlagOutFormat:     "output.out_format",
	FlagNoConsole:     "output.no_console",
	FlagNoColor:       "output.no_color",
	FlagConcurrency:   "runtime.concurrency",
	FlagLintWorkers:   "runtime.lint_workers",
}

// ConfigKey returns the koanf key for a flag name.
func ConfigKey(flag string) (string, bool) {
	key, ok := configKeys[flag]
	return key, ok
}
