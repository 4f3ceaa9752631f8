package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"x509lint/internal/config"
	"x509lint/internal/engine"
	"x509lint/internal/flags"
)

var lintCmd = &cobra.Command{
	Use:   "lint [FILE...]",
	Short: "Lint certificates and CRLs",
	Long: `Lint X.509 certificates and CRLs and report warnings and errors.

Input:
	Each FILE may hold PEM (one or more blocks), base64, raw DER, or an openssl
	text dump followed by PEM. With no FILE, or when FILE is -, standard input is read.
	Every document is decoded as a certificate first, then as a CRL, unless
	--kind (or --cert / --crl) forces one.

Configuration:
	Settings are read from, in increasing precedence: built-in defaults, the
	YAML file given by --config (or x509lint.yaml in the working directory),
	X509LINT_* environment variables (X509LINT_LINTS__FAIL_ON=error), and flags.

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --report: write a Markdown report
	- --no-console: suppress the console sink

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (run.started, document.result, run.finished).

Exit codes:
	0 = no findings at or above --fail-on
	1 = findings at or above --fail-on
	2 = partial failure (some documents could not be decoded)
	3 = fatal error (invalid configuration, unreadable input)

Examples:
	# Lint a certificate bundle
	x509lint lint chain.pem

	# Only fail on errors, and include the zlint corpus
	x509lint lint --fail-on error --zlint cert.der

	# Machine-readable events on stdout
	x509lint lint --console-format ndjson ca.crl
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadLintConfig(cmd, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}
		setupLogging(cfg.Runtime.Verbose)

		eng := engine.NewEngine(logrus.StandardLogger())
		os.Exit(eng.Run(cmd.Context(), cfg))
	},
}

// loadLintConfig merges defaults, config file, environment and flags, then
// applies the positional files and the --cert / --crl shorthands.
func loadLintConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	fs := cmd.Flags()
	cfg, used, err := config.Load(cfgFile, fs)
	if err != nil {
		return nil, err
	}
	if used != "" {
		logrus.WithField("path", used).Debug("loaded config file")
	}

	cfg.Input.Files = args
	if err := applyKindShorthands(fs, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyKindShorthands(fs *pflag.FlagSet, cfg *config.Config) error {
	cert, _ := fs.GetBool(flags.FlagCert)
	crl, _ := fs.GetBool(flags.FlagCRL)
	if cert && crl {
		return fmt.Errorf("--%s and --%s are mutually exclusive", flags.FlagCert, flags.FlagCRL)
	}
	if !cert && !crl {
		return nil
	}
	want := config.KindCert
	name := flags.FlagCert
	if crl {
		want = config.KindCRL
		name = flags.FlagCRL
	}
	if fs.Changed(flags.FlagKind) {
		if kind, _ := fs.GetString(flags.FlagKind); kind != want {
			return fmt.Errorf("--%s conflicts with --%s=%s", name, flags.FlagKind, kind)
		}
	}
	cfg.Input.Kind = want
	return nil
}

func registerLintFlags(fs *pflag.FlagSet) {
	// MAINTAINER NOTE: flags backed by a config field need an entry in
	// internal/flags/flags.go:configKeys, otherwise the loader ignores them.
	d := config.New()

	// Input
	fs.String(flags.FlagKind, d.Input.Kind, "Document kind: auto|cert|crl (default: auto)")
	fs.Bool(flags.FlagCert, false, "Decode every document as a certificate (same as --kind cert)")
	fs.Bool(flags.FlagCRL, false, "Decode every document as a CRL (same as --kind crl)")

	// Lints
	fs.String(flags.FlagFilter, d.Lints.Filter, "Only run lints whose name starts with this prefix (e.g. rfc:serial)")
	fs.String(flags.FlagFailOn, d.Lints.FailOn, "Lowest finding status that fails the run: warn|error (default: warn)")
	fs.Bool(flags.FlagZLint, d.Lints.ZLint, "Also run the zlint lints (names prefixed with zlint:)")
	fs.String(flags.FlagZLintConfig, d.Lints.ZLintConfig, "zlint TOML configuration file (requires --zlint)")

	// Output
	fs.String(flags.FlagConsoleFormat, d.Output.ConsoleFormat, "Console output format: text|json|ndjson (default: text)")
	fs.String(flags.FlagReport, d.Output.Report, "Write a Markdown report to this path")
	fs.String(flags.FlagOut, d.Output.Out, "Write structured output to this path")
	fs.String(flags.FlagOutFormat, d.Output.OutFormat, "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	fs.Bool(flags.FlagNoConsole, d.Output.NoConsole, "Suppress console output (use with --out/--report)")
	fs.Bool(flags.FlagNoColor, d.Output.NoColor, "Disable colored console output")

	// Runtime
	fs.Int(flags.FlagConcurrency, d.Runtime.Concurrency, "Documents linted concurrently")
	fs.Int(flags.FlagLintWorkers, d.Runtime.LintWorkers, "Lints of one document evaluated concurrently (1 = sequential)")
}

func init() {
	rootCmd.AddCommand(lintCmd)
	registerLintFlags(lintCmd.Flags())
}
