package generator

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/simonhull/firebird-suite/magpie/pkg/graph"
)

// Document is the JSON export shape
type Document struct {
	Title string       `json:"title"`
	Files []string     `json:"files"`
	Nodes []string     `json:"nodes"`
	Links []graph.Link `json:"links"`
	Edges []graph.Edge `json:"edges"`
	Stats graph.Stats  `json:"stats"`
}

func (g *Generator) renderJSON(w io.Writer, ig *graph.ImportGraph) error {
	doc := Document{
		Title: g.opts.Title,
		Files: nonNil(ig.Files()),
		Nodes: nonNil(ig.Nodes()),
		Links: ig.Links(),
		Edges: ig.Edges(),
		Stats: ig.Stats(),
	}
	if doc.Links == nil {
		doc.Links = []graph.Link{}
	}
	if doc.Edges == nil {
		doc.Edges = []graph.Edge{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
