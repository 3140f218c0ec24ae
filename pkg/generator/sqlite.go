package generator

import (
	"context"
	"fmt"

	"github.com/simonhull/firebird-suite/magpie/pkg/graph"
	"github.com/simonhull/firebird-suite/magpie/pkg/store"
)

func (g *Generator) writeSQLite(ctx context.Context, ig *graph.ImportGraph) error {
	s, err := store.Open(ctx, g.opts.Path)
	if err != nil {
		return err
	}

	if err := s.SaveGraph(ctx, ig); err != nil {
		s.Close()
		return fmt.Errorf("saving graph: %w", err)
	}
	return s.Close()
}
