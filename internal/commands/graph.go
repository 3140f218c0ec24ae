package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/simonhull/firebird-suite/magpie/internal/output"
	"github.com/simonhull/firebird-suite/magpie/internal/progress"
	"github.com/simonhull/firebird-suite/magpie/pkg/analyzer"
	"github.com/simonhull/firebird-suite/magpie/pkg/config"
	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/graph"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/simonhull/firebird-suite/magpie/pkg/project"
	"github.com/spf13/cobra"
)

// graphFlags holds the command-line overrides for the config file
type graphFlags struct {
	out         string
	format      string
	title       string
	workers     int
	exts        []string
	noGitignore bool
	hidden      bool
	noPackages  bool
}

// GraphCmd builds and writes the import graph of a project
func GraphCmd() *cobra.Command {
	var f graphFlags

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Build the import graph of a Python project",
		Long: `Scan a directory for Python files, resolve their imports to other files
in the same tree and write the resulting graph.

Formats:
  html     interactive vis-network page (default)
  dot      Graphviz source
  mermaid  Mermaid flowchart
  json     nodes, links and raw edges
  sqlite   queryable database

Examples:
  magpie graph
  magpie graph ./src -o deps.html
  magpie graph . -f dot -o deps.dot
  magpie graph . --ext .py --ext .pyi --workers 8`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}

			verbose, quiet := flagBool(cmd, "verbose"), flagBool(cmd, "quiet")
			setupLogger(cmd.ErrOrStderr(), verbose, quiet, cfg.Log.Level)

			progressOut := cmd.ErrOrStderr()
			if quiet {
				progressOut = io.Discard
			}
			return runGraph(cmd.Context(), progressOut, root, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.out, "out", "o", "", "Output file (default: import_graph.<format extension>)")
	flags.StringVarP(&f.format, "format", "f", "", "Output format: html, dot, mermaid, json, sqlite")
	flags.StringVar(&f.title, "title", "", "Graph title (default: project name)")
	flags.IntVarP(&f.workers, "workers", "w", 1, "Parse files with N workers (0 = one per CPU)")
	flags.StringSliceVar(&f.exts, "ext", nil, "File extensions to scan (repeatable)")
	flags.BoolVar(&f.noGitignore, "no-gitignore", false, "Do not apply .gitignore rules")
	flags.BoolVar(&f.hidden, "hidden", false, "Include hidden files and directories")
	flags.BoolVar(&f.noPackages, "no-packages", false, "Do not resolve packages to __init__ files")

	return cmd
}

// apply copies every flag the user set onto cfg and re-validates it.
func (f *graphFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output.Path = f.out
	}
	if flags.Changed("format") {
		cfg.Output.Format = f.format
	}
	if flags.Changed("title") {
		cfg.Project.Title = f.title
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers = f.workers
	}
	if flags.Changed("ext") {
		cfg.Scan.Extensions = f.exts
	}
	if flags.Changed("no-gitignore") {
		cfg.Scan.RespectGitignore = !f.noGitignore
	}
	if flags.Changed("hidden") {
		cfg.Scan.IncludeHidden = f.hidden
	}
	if flags.Changed("no-packages") {
		cfg.Resolve.Packages = !f.noPackages
	}

	cfg.Normalize()
	return cfg.Validate()
}

func runGraph(ctx context.Context, progressOut io.Writer, root string, cfg *config.Config) error {
	a := analyzer.NewAnalyzer(analyzer.Options{
		Walk: filesystem.WalkOptions{
			IgnoreDirs:       cfg.Scan.IgnoreDirs,
			RootIgnoreDirs:   cfg.Scan.RootIgnoreDirs,
			IgnorePatterns:   cfg.Scan.IgnorePatterns,
			IncludeHidden:    cfg.Scan.IncludeHidden,
			RespectGitignore: cfg.Scan.RespectGitignore,
		},
		Extensions:  cfg.Scan.Extensions,
		MaxFileSize: cfg.Scan.MaxFileSize,
	})

	var proj *analyzer.Project
	err := progress.Run(ctx, progressOut, "Parsing files", func(ctx context.Context) error {
		var err error
		if cfg.Scan.Workers == 1 {
			proj, err = a.AnalyzeWithContext(ctx, root)
		} else {
			proj, err = a.AnalyzeParallel(ctx, root, cfg.Scan.Workers)
		}
		return err
	})
	if err != nil {
		return err
	}

	res := analyzer.Resolve(proj, analyzer.ResolveOptions{
		Extensions: cfg.Scan.Extensions,
		Packages:   cfg.Resolve.Packages,
	})
	printResolution(res)

	ig, err := graph.Build(res)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	gen := generator.New(generator.Options{
		Path:              cfg.Output.Path,
		Format:            cfg.Output.Format,
		Title:             graphTitle(root, cfg),
		Height:            cfg.Output.Height,
		Width:             cfg.Output.Width,
		NodeColor:         cfg.Output.NodeColor,
		ModuleEdgeColor:   cfg.Output.ModuleEdgeColor,
		FunctionEdgeColor: cfg.Output.FunctionEdgeColor,
	})
	if err := gen.Generate(ctx, ig); err != nil {
		return err
	}

	stats := ig.Stats()
	output.Info("Import graph summary")
	output.Stat("Files", stats.Files)
	output.Stat("Parse failures", proj.Skipped)
	output.Stat("Nodes", stats.Nodes)
	output.Stat("Edges", stats.Edges)
	output.Stat("Links", stats.Links)
	output.Success(fmt.Sprintf("Wrote %s graph to %s", cfg.Output.Format, gen.Options().Path))

	return nil
}

// graphTitle prefers the configured title, then the detected project name.
func graphTitle(root string, cfg *config.Config) string {
	if cfg.Project.Title != "" {
		return cfg.Project.Title
	}

	info, err := project.Detect(root)
	if err != nil {
		logger.Warn("Could not read project metadata", logger.F("error", err))
		return project.DirName(root)
	}
	if info.Version != "" {
		return fmt.Sprintf("%s %s", info.Name, info.Version)
	}
	return info.Name
}

func printResolution(res *analyzer.Resolution) {
	for _, rf := range res.Files {
		if len(rf.Modules) == 0 && len(rf.Functions) == 0 {
			continue
		}
		output.Verbose(rf.Key)
		for _, target := range rf.Modules {
			output.Verbose("   → " + target)
		}
		for _, fn := range rf.Functions {
			output.Verbose(fmt.Sprintf("   → %s (%s)", fn.File, fn.Symbol))
		}
	}
}
