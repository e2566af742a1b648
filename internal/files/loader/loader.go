package loader

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vvka-141/tabload/internal/delimited"
	"github.com/vvka-141/tabload/internal/files/filesystem"
	"github.com/vvka-141/tabload/internal/files/linescan"
	"github.com/vvka-141/tabload/internal/header"
	"github.com/vvka-141/tabload/pkg/tabload"
)

// Loader resolves skip counts and parses what follows them.
// Loader holds no per-load state and is safe for concurrent use as long as
// the provided fsProvider and logger are also thread-safe.
type Loader struct {
	fsProvider filesystem.FileSystemProvider
	logger     tabload.Logger
}

// NewLoader creates a loader backed by the OS filesystem.
// Panics if logger is nil.
func NewLoader(logger tabload.Logger) *Loader {
	return NewLoaderWithFS(filesystem.NewOSFileSystem(), logger)
}

// NewLoaderWithFS creates a loader with a custom filesystem provider.
// This is primarily useful for testing with in-memory filesystems.
// Panics if fsProvider or logger is nil.
func NewLoaderWithFS(fsProvider filesystem.FileSystemProvider, logger tabload.Logger) *Loader {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{
		fsProvider: fsProvider,
		logger:     logger,
	}
}

// Load validates cfg, resolves how many lines to discard and parses the
// remainder of the file. No partial RecordSet is ever returned.
func (l *Loader) Load(cfg tabload.LoadConfig) (tabload.RecordSet, error) {
	if err := cfg.Validate(); err != nil {
		return tabload.RecordSet{}, err
	}
	delimiter, _ := cfg.DelimiterRune()

	skip, err := l.resolveSkip(cfg)
	if err != nil {
		return tabload.RecordSet{}, err
	}

	block, err := l.readAfter(cfg.Path, skip)
	if err != nil {
		return tabload.RecordSet{}, err
	}

	rs, err := delimited.Parse(block, delimiter)
	if err != nil {
		return tabload.RecordSet{}, fmt.Errorf("failed to parse %s: %w", cfg.Path, err)
	}

	l.logger.Verbose("Loaded %d record(s) with %d field(s) from %s", rs.Len(), len(rs.Fields), cfg.Path)
	return rs, nil
}

// Locate validates cfg and returns the number of lines preceding the header.
// For an explicit skip no file is opened.
func (l *Loader) Locate(cfg tabload.LoadConfig) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	return l.resolveSkip(cfg)
}

func (l *Loader) resolveSkip(cfg tabload.LoadConfig) (int, error) {
	switch m := cfg.Mode.(type) {
	case tabload.ExplicitSkip:
		return m.Lines(), nil
	case tabload.FindMarker:
		return l.search(cfg.Path, m)
	default:
		return 0, fmt.Errorf("unsupported skip mode %T: %w", m, tabload.ErrInvalidConfig)
	}
}

// search runs the first pass. Its reader is released before the load pass
// starts, which then begins from a fresh cursor.
func (l *Loader) search(path string, m tabload.FindMarker) (int, error) {
	locator, err := header.NewLocator(m.Word, m.Bound())
	if err != nil {
		return 0, err
	}

	rc, err := l.open(path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	l.logger.Verbose("Searching %s for %q within %d line(s)", path, m.Word, m.Bound())

	outcome, err := locator.Locate(linescan.New(rc))
	if err != nil {
		return 0, fmt.Errorf("failed to search %s: %w", path, err)
	}
	if !outcome.Found {
		return 0, &tabload.HeaderNotFoundError{
			Path:          path,
			Marker:        m.Word,
			LinesExamined: outcome.LinesExamined,
			Bound:         m.Bound(),
		}
	}

	l.logger.Verbose("Found %q on line %d of %s", m.Word, outcome.SkipCount+1, path)
	return outcome.SkipCount, nil
}

// readAfter discards skip lines and returns everything after them.
func (l *Loader) readAfter(path string, skip int) (string, error) {
	rc, err := l.open(path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	s := linescan.New(rc)
	skipped, err := s.Skip(skip)
	if err != nil {
		return "", fmt.Errorf("failed to skip preamble of %s: %w", path, err)
	}
	if skipped < skip {
		l.logger.Verbose("%s has only %d line(s), fewer than the %d to skip", path, skipped, skip)
	}

	block, err := s.ReadRemainder()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return block, nil
}

func (l *Loader) open(path string) (io.ReadCloser, error) {
	rc, err := l.fsProvider.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w: %w", path, tabload.ErrIO, err)
	}
	return rc, nil
}

// FileResult pairs a file found by LoadDirectory with its records.
type FileResult struct {
	// Path is relative to the loaded directory, with forward slashes
	Path    string
	Records tabload.RecordSet
}

// LoadDirectory loads every regular file under dir whose extension matches
// ext (case-insensitive), one after another in path order, using cfg for
// delimiter and mode. The first failure stops the run; ctx is checked
// between files.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, ext string, cfg tabload.LoadConfig) ([]FileResult, error) {
	cfg.Path = dir
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	files, err := l.listFiles(dir, ext)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fileCfg := cfg
		fileCfg.Path = file.Path()
		rs, err := l.Load(fileCfg)
		if err != nil {
			return nil, err
		}

		results = append(results, FileResult{
			Path:    filepath.ToSlash(file.RelativePath()),
			Records: rs,
		})
	}

	l.logger.Verbose("Loaded %d file(s) from %s", len(results), dir)
	return results, nil
}

// listFiles returns the matching regular files under dir in walk order.
func (l *Loader) listFiles(dir, ext string) ([]filesystem.File, error) {
	d, err := l.fsProvider.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w: %w", dir, tabload.ErrIO, err)
	}

	var files []filesystem.File
	err = d.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking %s: %w: %w", dir, tabload.ErrIO, err)
		}
		if !file.Info().IsDir() && strings.EqualFold(filepath.Ext(file.Path()), ext) {
			files = append(files, file)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Verify Loader implements the interface at compile time
var _ tabload.TableLoader = (*Loader)(nil)
