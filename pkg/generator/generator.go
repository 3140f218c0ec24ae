package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/magpie/pkg/graph"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

// ErrUnsupportedFormat is returned for an unknown Options.Format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Output formats
const (
	FormatHTML    = "html"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
	FormatJSON    = "json"
	FormatSQLite  = "sqlite"
)

// Options controls what is written and how it looks
type Options struct {
	Path              string
	Format            string
	Title             string
	Height            string
	Width             string
	NodeColor         string
	ModuleEdgeColor   string
	FunctionEdgeColor string
}

// DefaultOptions returns the options for an HTML page at import_graph.html
func DefaultOptions() Options {
	return Options{
		Path:              "import_graph.html",
		Format:            FormatHTML,
		Title:             "Import Graph",
		Height:            "750px",
		Width:             "100%",
		NodeColor:         "skyblue",
		ModuleEdgeColor:   graph.ModuleColor,
		FunctionEdgeColor: graph.FunctionColor,
	}
}

// Generator writes an import graph in one output format
type Generator struct {
	opts   Options
	logger logger.Logger
}

// New creates a new Generator. Empty options take their defaults.
func New(opts Options) *Generator {
	def := DefaultOptions()
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&opts.Format, def.Format)
	fill(&opts.Path, DefaultPath(opts.Format))
	fill(&opts.Title, def.Title)
	fill(&opts.Height, def.Height)
	fill(&opts.Width, def.Width)
	fill(&opts.NodeColor, def.NodeColor)
	fill(&opts.ModuleEdgeColor, def.ModuleEdgeColor)
	fill(&opts.FunctionEdgeColor, def.FunctionEdgeColor)

	return &Generator{
		opts:   opts,
		logger: logger.Default(),
	}
}

// WithLogger returns a new Generator with the specified logger
func (g *Generator) WithLogger(log logger.Logger) *Generator {
	return &Generator{
		opts:   g.opts,
		logger: log,
	}
}

// Options returns the effective options.
func (g *Generator) Options() Options {
	return g.opts
}

// Generate writes ig to Options.Path, creating parent directories as needed.
func (g *Generator) Generate(ctx context.Context, ig *graph.ImportGraph) error {
	if !isFormat(g.opts.Format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, g.opts.Format)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(g.opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	if g.opts.Format == FormatSQLite {
		if err := g.writeSQLite(ctx, ig); err != nil {
			return err
		}
	} else {
		f, err := os.Create(g.opts.Path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		if err := g.Render(f, ig); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing output file: %w", err)
		}
	}

	g.logger.Info("Wrote import graph",
		logger.F("path", g.opts.Path),
		logger.F("format", g.opts.Format))
	return nil
}

// Render writes ig to w in a text format. SQLite output needs a file and is
// only available through Generate.
func (g *Generator) Render(w io.Writer, ig *graph.ImportGraph) error {
	switch g.opts.Format {
	case FormatHTML:
		return g.renderHTML(w, ig)
	case FormatDOT:
		return g.renderDOT(w, ig)
	case FormatMermaid:
		return g.renderMermaid(w, ig)
	case FormatJSON:
		return g.renderJSON(w, ig)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, g.opts.Format)
	}
}

// DefaultPath is the output file used when Options.Path is empty:
// import_graph with the format's usual extension.
func DefaultPath(format string) string {
	ext, ok := extensions[format]
	if !ok {
		ext = "." + format
	}
	return "import_graph" + ext
}

var extensions = map[string]string{
	FormatHTML:    ".html",
	FormatDOT:     ".dot",
	FormatMermaid: ".mmd",
	FormatJSON:    ".json",
	FormatSQLite:  ".db",
}

func isFormat(format string) bool {
	switch format {
	case FormatHTML, FormatDOT, FormatMermaid, FormatJSON, FormatSQLite:
		return true
	}
	return false
}

// edgeColor picks the link color for a kind.
func (g *Generator) edgeColor(kind graph.EdgeKind) string {
	if kind == graph.KindFunction {
		return g.opts.FunctionEdgeColor
	}
	return g.opts.ModuleEdgeColor
}
