package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/tabload/internal/config"
	"github.com/vvka-141/tabload/pkg/tabload"
)

// Environment variables consulted when the matching flag is not given.
const (
	EnvDelimiter      = "TABLOAD_DELIMITER"
	EnvFind           = "TABLOAD_FIND"
	EnvSkip           = "TABLOAD_SKIP"
	EnvMaxSearchLines = "TABLOAD_MAX_SEARCH_LINES"
	EnvFormat         = "TABLOAD_FORMAT"
	EnvPGConnection   = "TABLOAD_PG_CONNECTION"
)

// sourceFlagValues holds the flags shared by load and locate.
type sourceFlagValues struct {
	skip           uint
	find           string
	maxSearchLines uint
	delimiter      string
	configPath     string
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlagValues) {
	cmd.Flags().UintVar(&f.skip, "skip", 0,
		"Discard exactly N lines; line N+1 is the header\n"+
			"Alternative: $"+EnvSkip+" or skip: in tabload.yaml")
	cmd.Flags().StringVar(&f.find, "find", "",
		"Use the first line containing WORD (case-insensitive) as the header\n"+
			"Alternative: $"+EnvFind+" or find: in tabload.yaml")
	cmd.Flags().UintVar(&f.maxSearchLines, "max-search-lines", 0,
		fmt.Sprintf("Lines that may precede the header when using --find (default %d)", tabload.DefaultMaxSearchLines))
	cmd.Flags().StringVarP(&f.delimiter, "delimiter", "d", "",
		"Single-character field delimiter (default \",\"; use $'\\t' for tabs)")
	cmd.Flags().StringVar(&f.configPath, "config", "",
		"Path to a project config file (default: ./"+config.ConfigFileName+" when present)")
	cmd.MarkFlagsMutuallyExclusive("skip", "find")
}

// loadProjectConfig loads .env and the project config. A missing default
// tabload.yaml is not an error; a missing --config file is.
func loadProjectConfig(configPath string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	if configPath == "" {
		cfg, err := config.Load(".")
		if errors.Is(err, config.ErrConfigNotFound) {
			return &config.ProjectConfig{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load %s: %w", tabload.ErrInvalidConfig, config.ConfigFileName, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load %s: %w", tabload.ErrInvalidConfig, configPath, err)
	}
	return cfg, nil
}

// resolveMode picks the skip mode from the highest layer that names one.
func resolveMode(cmd *cobra.Command, f *sourceFlagValues, cfg *config.ProjectConfig) (tabload.SkipMode, error) {
	maxLines, err := resolveMaxSearchLines(cmd, f, cfg)
	if err != nil {
		return nil, err
	}

	switch {
	case cmd.Flags().Changed("skip"):
		return tabload.ExplicitSkip{Count: f.skip}, nil
	case cmd.Flags().Changed("find"):
		return tabload.FindMarker{Word: f.find, MaxSearchLines: maxLines}, nil
	}

	envSkip, hasSkip := lookupEnv(EnvSkip)
	envFind, hasFind := lookupEnv(EnvFind)
	switch {
	case hasSkip && hasFind:
		return nil, fmt.Errorf("%w: $%s and $%s are mutually exclusive", tabload.ErrInvalidConfig, EnvSkip, EnvFind)
	case hasSkip:
		n, err := parseUint(EnvSkip, envSkip)
		if err != nil {
			return nil, err
		}
		return tabload.ExplicitSkip{Count: n}, nil
	case hasFind:
		return tabload.FindMarker{Word: envFind, MaxSearchLines: maxLines}, nil
	}

	switch {
	case cfg.Skip > 0:
		return tabload.ExplicitSkip{Count: cfg.Skip}, nil
	case cfg.Find != "":
		return tabload.FindMarker{Word: cfg.Find, MaxSearchLines: maxLines}, nil
	}

	return nil, fmt.Errorf("%w: one of --skip or --find is required", tabload.ErrInvalidConfig)
}

// resolveMaxSearchLines returns nil when no layer sets a bound. An explicit
// zero is kept.
func resolveMaxSearchLines(cmd *cobra.Command, f *sourceFlagValues, cfg *config.ProjectConfig) (*uint, error) {
	if cmd.Flags().Changed("max-search-lines") {
		return tabload.SearchLines(f.maxSearchLines), nil
	}
	if v, ok := lookupEnv(EnvMaxSearchLines); ok {
		n, err := parseUint(EnvMaxSearchLines, v)
		if err != nil {
			return nil, err
		}
		return tabload.SearchLines(n), nil
	}
	return cfg.MaxSearchLines, nil
}

func resolveDelimiter(cmd *cobra.Command, f *sourceFlagValues, cfg *config.ProjectConfig) string {
	if cmd.Flags().Changed("delimiter") {
		return f.delimiter
	}
	if v, ok := lookupEnv(EnvDelimiter); ok {
		return v
	}
	return cfg.Delimiter
}

// lookupEnv treats an empty variable as unset.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func parseUint(name, value string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: $%s must be a non-negative integer, got %q", tabload.ErrInvalidConfig, name, value)
	}
	return uint(n), nil
}
