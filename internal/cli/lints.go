package cli

import (
	"github.com/spf13/cobra"

	"x509lint/internal/flags"
	"x509lint/internal/output"
	"x509lint/internal/rules"
)

var (
	lintsListQuiet  bool
	lintsListFormat string
	lintsZLint      bool
	lintsFilter     string
)

var lintsCmd = &cobra.Command{
	Use:   "lints",
	Short: "List and describe lints",
	Long: `List the lints x509lint runs.

Lints are evaluated during "x509lint lint" (see "x509lint lint --help").

Examples:
  # List all built-in lints
  x509lint lints list

  # Include the zlint corpus, as a table
  x509lint lints list --zlint --format table
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var lintsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available lints",
	Long: `List every lint in evaluation order, certificate lints first, then CRL lints.

Examples:
  x509lint lints list
  x509lint lints list --filter rfc:crl_ --quiet
  x509lint lints list --format json
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := rules.Build(rules.Options{Filter: lintsFilter, ZLint: lintsZLint})
		if err != nil {
			return err
		}
		return output.WriteLints(cmd.OutOrStdout(), catalog.Entries(), lintsListFormat, lintsListQuiet)
	},
}

var lintsShowCmd = &cobra.Command{
	Use:   "show [lint-name]",
	Short: "Show details of a specific lint",
	Long: `Show details of a specific lint by its name.

Examples:
  x509lint lints show rfc:serial_msb
  x509lint lints show --zlint zlint:e_sub_cert_aia_missing
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := rules.Build(rules.Options{ZLint: lintsZLint})
		if err != nil {
			return err
		}
		entry, err := catalog.Find(args[0])
		if err != nil {
			return err
		}
		output.WriteLint(cmd.OutOrStdout(), entry)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintsCmd)
	lintsCmd.PersistentFlags().BoolVar(&lintsZLint, flags.FlagZLint, false, "Include the zlint lints")

	lintsCmd.AddCommand(lintsListCmd)
	lintsListCmd.Flags().BoolVarP(&lintsListQuiet, flags.FlagQuiet, "q", false, "Only print lint names")
	lintsListCmd.Flags().StringVar(&lintsListFormat, flags.FlagFormat, "text", "Listing format: text|table|json")
	lintsListCmd.Flags().StringVar(&lintsFilter, flags.FlagFilter, "", "Only list lints whose name starts with this prefix")

	lintsCmd.AddCommand(lintsShowCmd)
}
