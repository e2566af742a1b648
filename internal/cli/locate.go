package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/tabload/internal/files/loader"
	"github.com/vvka-141/tabload/internal/logging"
	"github.com/vvka-141/tabload/pkg/tabload"
)

var locateCmd = &cobra.Command{
	Use:   "locate <file>",
	Short: "Report which line holds the header",
	Long: `Locate searches a file for the header marker without parsing any records.

It prints the number of lines that precede the header (the value to pass as
--skip) and the 1-based line number of the header itself:

  skip=3 header_line=4

Examples:
  tabload locate export.csv --find account
  tabload locate export.csv --find "zip code" --max-search-lines 500`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

var locateFlags sourceFlagValues

func init() {
	rootCmd.AddCommand(locateCmd)

	locateCmd.Flags().StringVar(&locateFlags.find, "find", "",
		"Marker word to search for (case-insensitive)\n"+
			"Alternative: $"+EnvFind+" or find: in tabload.yaml")
	locateCmd.Flags().UintVar(&locateFlags.maxSearchLines, "max-search-lines", 0,
		fmt.Sprintf("Lines that may precede the header (default %d)", tabload.DefaultMaxSearchLines))
	locateCmd.Flags().StringVar(&locateFlags.configPath, "config", "",
		"Path to a project config file")
}

func runLocate(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(locateFlags.configPath)
	if err != nil {
		return err
	}
	mode, err := resolveMode(cmd, &locateFlags, projectCfg)
	if err != nil {
		return err
	}
	if _, ok := mode.(tabload.FindMarker); !ok {
		return fmt.Errorf("%w: locate requires a marker (--find or $%s)", tabload.ErrInvalidConfig, EnvFind)
	}

	l := loader.NewLoader(logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), verbose))
	skip, err := l.Locate(tabload.LoadConfig{Path: args[0], Mode: mode})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "skip=%d header_line=%d\n", skip, skip+1)
	return nil
}
