package generator

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/simonhull/firebird-suite/magpie/pkg/graph"
)

//go:embed templates/graph.html
var graphTemplate string

var htmlTemplate = template.Must(template.New("graph").Parse(graphTemplate))

// visNode and visEdge match the vis-network DataSet item shapes.
type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Color string `json:"color"`
}

type visEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Color  string `json:"color"`
	Label  string `json:"label,omitempty"`
	Title  string `json:"title,omitempty"`
	Arrows string `json:"arrows"`
}

func (g *Generator) renderHTML(w io.Writer, ig *graph.ImportGraph) error {
	nodes := make([]visNode, 0)
	for _, key := range ig.Nodes() {
		nodes = append(nodes, visNode{ID: key, Label: key, Title: key, Color: g.opts.NodeColor})
	}

	edges := make([]visEdge, 0)
	for _, l := range ig.Links() {
		e := visEdge{From: l.From, To: l.To, Color: g.edgeColor(l.Kind), Arrows: "to"}
		if l.Kind == graph.KindFunction {
			e.Label = l.Symbol
			e.Title = l.Symbol
		}
		edges = append(edges, e)
	}

	data := struct {
		Title  string
		Height string
		Width  string
		Stats  graph.Stats
		Nodes  []visNode
		Edges  []visEdge
	}{
		Title:  g.opts.Title,
		Height: g.opts.Height,
		Width:  g.opts.Width,
		Stats:  ig.Stats(),
		Nodes:  nodes,
		Edges:  edges,
	}

	if err := htmlTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}
