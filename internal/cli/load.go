package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/tabload/internal/config"
	"github.com/vvka-141/tabload/internal/db"
	"github.com/vvka-141/tabload/internal/files/filesystem"
	"github.com/vvka-141/tabload/internal/files/loader"
	"github.com/vvka-141/tabload/internal/logging"
	"github.com/vvka-141/tabload/internal/output"
	"github.com/vvka-141/tabload/internal/retry"
	"github.com/vvka-141/tabload/pkg/tabload"
)

const (
	defaultExtension = ".csv"
	defaultPGTimeout = 2 * time.Minute
)

var loadCmd = &cobra.Command{
	Use:   "load <path>",
	Short: "Load records from a delimited file or a directory of files",
	Long: `Load locates the header row of a delimited file and prints the records below it.

The header is located by exactly one of:
  --skip N        discard N lines; line N+1 is the header
  --find WORD     use the first line containing WORD (case-insensitive),
                  searching at most --max-search-lines lines before it

When <path> is a directory, every file with the --ext extension is loaded in
path order with the same settings. The first failing file stops the run.

Settings are resolved as: flag > environment > tabload.yaml > default.

Examples:
  # Header is on line 4
  tabload load export.csv --skip 3

  # Header is the first line mentioning "Account"
  tabload load export.csv --find account --format json

  # Semicolon-separated exports, copied into PostgreSQL
  tabload load ./exports --find id -d ';' \
    --pg-connection postgresql://loader@localhost/warehouse \
    --pg-table staging.accounts --pg-create`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

type loadFlagValues struct {
	source    sourceFlagValues
	format    string
	extension string
	retries   int
	pgConn    string
	pgTable   string
	pgCreate  bool
	pgTimeout time.Duration
}

var loadFlags loadFlagValues

func init() {
	rootCmd.AddCommand(loadCmd)

	addSourceFlags(loadCmd, &loadFlags.source)

	loadCmd.Flags().StringVarP(&loadFlags.format, "format", "f", "",
		"Output format: table|json|yaml|csv\n"+
			"(default: table on a terminal, csv otherwise, or $"+EnvFormat+")")
	loadCmd.Flags().StringVar(&loadFlags.extension, "ext", defaultExtension,
		"File extension to load when <path> is a directory")
	loadCmd.Flags().IntVar(&loadFlags.retries, "retries", 0,
		"Retry transient read failures up to N times with backoff")

	loadCmd.Flags().StringVar(&loadFlags.pgConn, "pg-connection", "",
		"Copy records into PostgreSQL (URI, key=value or ADO.NET format)\n"+
			"Alternative: $"+EnvPGConnection)
	loadCmd.Flags().StringVar(&loadFlags.pgTable, "pg-table", "",
		"Target table for --pg-connection, optionally schema-qualified")
	loadCmd.Flags().BoolVar(&loadFlags.pgCreate, "pg-create", false,
		"Create the target table with text columns if it does not exist")
	loadCmd.Flags().DurationVar(&loadFlags.pgTimeout, "pg-timeout", defaultPGTimeout,
		"Upper bound for connecting and copying")
}

// loadSettings is the fully resolved configuration of one load.
type loadSettings struct {
	Config    tabload.LoadConfig
	Format    output.Format
	Extension string
	Retries   int
	Postgres  *postgresSettings
}

type postgresSettings struct {
	Connection string
	Table      string
	Create     bool
	Timeout    time.Duration
}

func buildLoadSettings(cmd *cobra.Command, path string) (loadSettings, error) {
	projectCfg, err := loadProjectConfig(loadFlags.source.configPath)
	if err != nil {
		return loadSettings{}, err
	}

	mode, err := resolveMode(cmd, &loadFlags.source, projectCfg)
	if err != nil {
		return loadSettings{}, err
	}

	s := loadSettings{
		Config: tabload.LoadConfig{
			Path:      path,
			Delimiter: resolveDelimiter(cmd, &loadFlags.source, projectCfg),
			Mode:      mode,
		},
		Extension: loadFlags.extension,
		Retries:   loadFlags.retries,
	}
	if err := s.Config.Validate(); err != nil {
		return loadSettings{}, err
	}

	if s.Format, err = resolveFormat(cmd, projectCfg); err != nil {
		return loadSettings{}, err
	}
	if !cmd.Flags().Changed("ext") && projectCfg.Extension != "" {
		s.Extension = projectCfg.Extension
	}
	if !cmd.Flags().Changed("retries") && projectCfg.Retries != 0 {
		s.Retries = projectCfg.Retries
	}
	if s.Retries < 0 {
		return loadSettings{}, fmt.Errorf("%w: retries must not be negative", tabload.ErrInvalidConfig)
	}

	if s.Postgres, err = resolvePostgres(cmd, projectCfg); err != nil {
		return loadSettings{}, err
	}
	return s, nil
}

func resolveFormat(cmd *cobra.Command, cfg *config.ProjectConfig) (output.Format, error) {
	if cmd.Flags().Changed("format") {
		return output.ParseFormat(loadFlags.format)
	}
	if v, ok := lookupEnv(EnvFormat); ok {
		return output.ParseFormat(v)
	}
	if cfg.Format != "" {
		return output.ParseFormat(cfg.Format)
	}
	return output.DefaultFormat(os.Stdout), nil
}

// resolvePostgres returns nil when no sink is configured.
func resolvePostgres(cmd *cobra.Command, cfg *config.ProjectConfig) (*postgresSettings, error) {
	p := &postgresSettings{
		Connection: cfg.Postgres.Connection,
		Table:      cfg.Postgres.Table,
		Create:     cfg.Postgres.Create || loadFlags.pgCreate,
		Timeout:    loadFlags.pgTimeout,
	}
	if v, ok := lookupEnv(EnvPGConnection); ok {
		p.Connection = v
	}
	if cmd.Flags().Changed("pg-connection") {
		p.Connection = loadFlags.pgConn
	}
	if cmd.Flags().Changed("pg-table") {
		p.Table = loadFlags.pgTable
	}
	if cfg.Postgres.Timeout != "" && !cmd.Flags().Changed("pg-timeout") {
		parsed, err := time.ParseDuration(cfg.Postgres.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid postgres.timeout: %w", tabload.ErrInvalidConfig, err)
		}
		p.Timeout = parsed
	}

	switch {
	case p.Connection == "" && p.Table == "":
		return nil, nil
	case p.Connection == "":
		return nil, fmt.Errorf("%w: --pg-table requires --pg-connection (or $%s)", tabload.ErrInvalidConfig, EnvPGConnection)
	case p.Table == "":
		return nil, fmt.Errorf("%w: --pg-connection requires --pg-table", tabload.ErrInvalidConfig)
	}
	return p, nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), verbose)

	s, err := buildLoadSettings(cmd, args[0])
	if err != nil {
		return err
	}
	delimiter, _ := s.Config.DelimiterRune()
	logger.Verbose("Mode: %s, delimiter: %q, format: %s", s.Config.Mode, delimiter, s.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := loadPath(ctx, filesystem.NewOSFileSystem(), s, logger)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(results) == 1 && results[0].Path == "" {
		if err := output.Render(w, s.Format, results[0].Records); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		for _, r := range results {
			if err := output.RenderNamed(w, s.Format, r.Path, r.Records); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}

	if s.Postgres != nil {
		return copyToPostgres(ctx, s.Postgres, results, logger)
	}
	return nil
}

// loadPath loads a single file, or every matching file when path is a
// directory. A single file comes back as one result with an empty Path.
func loadPath(ctx context.Context, fsys filesystem.FileSystemProvider, s loadSettings, logger tabload.Logger) ([]loader.FileResult, error) {
	info, err := fsys.Stat(s.Config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w: %w", s.Config.Path, tabload.ErrIO, err)
	}

	l := loader.NewLoaderWithFS(fsys, logger)
	var results []loader.FileResult
	op := func(ctx context.Context) error {
		if info.IsDir() {
			results, err = l.LoadDirectory(ctx, s.Config.Path, s.Extension, s.Config)
			return err
		}
		rs, err := l.Load(s.Config)
		if err != nil {
			return err
		}
		results = []loader.FileResult{{Records: rs}}
		return nil
	}

	if s.Retries == 0 {
		if err := op(ctx); err != nil {
			return nil, err
		}
		return results, nil
	}

	executor := retry.NewExecutor(
		retry.NewIOErrorClassifier(),
		retry.NewExponentialBackoff(s.Retries, retry.WithInitialDelay(200*time.Millisecond)),
	).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Info("Read failed (%v); retry %d/%d in %s", err, attempt+1, s.Retries, delay.Round(time.Millisecond))
	})
	if err := executor.Execute(ctx, op); err != nil {
		return nil, err
	}
	return results, nil
}

func copyToPostgres(ctx context.Context, p *postgresSettings, results []loader.FileResult, logger tabload.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	connector, err := db.NewConnector(p.Connection, logger)
	if err != nil {
		return err
	}
	pool, err := connector.Connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	var total int64
	for _, r := range results {
		n, err := db.CopyRecords(ctx, pool, r.Records, db.CopyOptions{Table: p.Table, Create: p.Create})
		if err != nil {
			if r.Path != "" {
				return fmt.Errorf("%s: %w", r.Path, err)
			}
			return err
		}
		total += n
	}
	logger.Info("Copied %d record(s) into %s", total, p.Table)
	return nil
}
