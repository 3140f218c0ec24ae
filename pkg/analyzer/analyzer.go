package analyzer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

// Options controls which files are discovered and how they are parsed
type Options struct {
	Walk        filesystem.WalkOptions
	Extensions  []string // default: .py
	MaxFileSize int64    // default: DefaultMaxFileSize
}

// Analyzer discovers source files and extracts their imports
type Analyzer struct {
	parser *Parser
	opts   Options
	logger logger.Logger
}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer(opts Options) *Analyzer {
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".py"}
	}
	return &Analyzer{
		parser: NewParser(WithMaxFileSize(opts.MaxFileSize)),
		opts:   opts,
		logger: logger.Default(),
	}
}

// WithLogger returns a new Analyzer with the specified logger
func (a *Analyzer) WithLogger(log logger.Logger) *Analyzer {
	return &Analyzer{
		parser: a.parser,
		opts:   a.opts,
		logger: log,
	}
}

// Analyze discovers and parses every source file below rootPath
func (a *Analyzer) Analyze(rootPath string) (*Project, error) {
	return a.AnalyzeWithContext(context.Background(), rootPath)
}

// AnalyzeWithContext analyzes a project with context support for cancellation
func (a *Analyzer) AnalyzeWithContext(ctx context.Context, rootPath string) (*Project, error) {
	a.logger.Info("Starting project analysis", logger.F("path", rootPath))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	keys, err := a.discover(rootPath)
	if err != nil {
		return nil, err
	}

	proj := &Project{
		RootPath: rootPath,
		Files:    make([]*FileRecord, 0, len(keys)),
	}

	for _, key := range keys {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := a.parseFile(ctx, rootPath, key)
		if err != nil {
			return nil, err
		}
		if !record.Parsed {
			proj.Skipped++
		}
		proj.Files = append(proj.Files, record)
	}

	a.logger.Info("Project analysis complete",
		logger.F("files", len(proj.Files)),
		logger.F("skipped", proj.Skipped))

	return proj, nil
}

func (a *Analyzer) discover(rootPath string) ([]string, error) {
	keys, err := filesystem.CollectFiles(rootPath, a.opts.Walk, a.opts.Extensions)
	if err != nil {
		return nil, fmt.Errorf("analyzing project: %w", err)
	}
	a.logger.Debug("Discovered files", logger.F("count", len(keys)))
	return keys, nil
}

// parseFile builds the record for one file. Read and parse failures leave the
// record empty with Parsed=false; only cancellation is returned as an error.
func (a *Analyzer) parseFile(ctx context.Context, rootPath, key string) (*FileRecord, error) {
	record := &FileRecord{
		Key:  key,
		Path: filepath.Join(rootPath, filepath.FromSlash(key)),
	}

	imports, err := a.parser.ParseFile(ctx, record.Path)
	switch {
	case err == nil:
		record.Modules = imports.Modules
		record.Functions = imports.Functions
		record.Parsed = true
		a.logger.Debug("Parsed file",
			logger.F("file", key),
			logger.F("modules", len(record.Modules)),
			logger.F("functions", len(record.Functions)))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case errors.Is(err, ErrSyntax), errors.Is(err, ErrInvalidContent), errors.Is(err, ErrFileTooLarge):
		a.logger.Debug("Skipping unparsable file", logger.F("file", key), logger.F("error", err))
	default:
		a.logger.Warn("Failed to read file", logger.F("file", key), logger.F("error", err))
	}

	return record, nil
}
