package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tabload",
	Short: "Load delimited files that carry preamble lines above the header",
	Long: `tabload reads delimited text exports (CSV, TSV, semicolon-separated) whose
real header row is buried under report titles, notes or blank lines.

The header is found either by skipping a fixed number of lines (--skip) or by
searching the first lines for a marker word (--find). The records below the
header are printed as a table, JSON, YAML or CSV, and can be copied into a
PostgreSQL table.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  20 - File could not be opened or read
  21 - Header marker not found within the search bound
  22 - Malformed delimited data`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(rootCmd.OutOrStdout())
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
