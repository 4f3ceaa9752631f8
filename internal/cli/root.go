package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"x509lint/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "x509lint",
	Short: "Check X.509 certificates and CRLs against RFC 5280",
	Long: `x509lint checks X.509 certificates and certificate revocation lists (CRLs)
against the encoding rules of RFC 5280 and reports warnings and errors.

x509lint is check-only: it never modifies the documents it reads.

Examples:
	# Lint a PEM certificate
	x509lint lint cert.pem

	# Lint a CRL read from stdin
	cat ca.crl | x509lint lint --crl

	# List lints
	x509lint lints list

	# Print build info
	x509lint version

Output:
	By default, commands write human-readable output to stdout and diagnostics to stderr.
	Structured output is available via --console-format and --out (see "x509lint lint --help").`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, flags.FlagConfig, "", "Config file (default: x509lint.yaml or x509lint.yml in the working directory)")
	rootCmd.PersistentFlags().BoolVar(&verbose, flags.FlagVerbose, false, "Enable debug logging on stderr")
}

func setupLogging(debug bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
