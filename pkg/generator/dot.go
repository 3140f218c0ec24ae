package generator

import (
	"fmt"
	"io"
	"strings"

	graphlib "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/simonhull/firebird-suite/magpie/pkg/graph"
)

// renderDOT writes a styled copy of the rendered graph in Graphviz DOT.
func (g *Generator) renderDOT(w io.Writer, ig *graph.ImportGraph) error {
	styled := graphlib.New(graphlib.StringHash, graphlib.Directed())

	for _, key := range ig.Nodes() {
		if err := styled.AddVertex(key,
			graphlib.VertexAttribute("style", "filled"),
			graphlib.VertexAttribute("fillcolor", dotValue(g.opts.NodeColor)),
		); err != nil {
			return fmt.Errorf("adding node %s: %w", key, err)
		}
	}

	for _, l := range ig.Links() {
		attrs := map[string]string{"color": dotValue(g.edgeColor(l.Kind))}
		if l.Kind == graph.KindFunction {
			attrs["label"] = dotValue(l.Symbol)
		}
		if err := styled.AddEdge(l.From, l.To, graphlib.EdgeAttributes(attrs)); err != nil {
			return fmt.Errorf("adding edge %s -> %s: %w", l.From, l.To, err)
		}
	}

	if err := draw.DOT(styled, w, draw.GraphAttribute("label", dotValue(g.opts.Title))); err != nil {
		return fmt.Errorf("rendering dot: %w", err)
	}
	return nil
}

// dotValue keeps a value inside its double-quoted DOT attribute.
func dotValue(s string) string {
	return strings.NewReplacer(`"`, `'`, "\n", " ").Replace(s)
}
