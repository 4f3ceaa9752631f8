package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"x509lint/internal/rules"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information and the size of the built-in lint catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := rules.Build(rules.Options{})
		if err != nil {
			return err
		}
		version, commit, date := BuildInfo()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "x509lint %s\n", version)
		fmt.Fprintf(out, "commit: %s\nbuilt:  %s\n", commit, date)
		fmt.Fprintf(out, "lints:  %d certificate, %d crl\n", catalog.Certificates.Len(), catalog.RevocationLists.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
