// Package graph assembles resolved imports into a directed file graph.
//
// Every import adds an Edge to the raw edge list, duplicates included. The
// rendered view keeps one Link per ordered file pair in a
// github.com/dominikbraun/graph directed graph; later edges overwrite the
// kind and label of earlier ones, and function edges are always added after
// module edges.
package graph

import (
	"errors"
	"fmt"
	"sort"

	graphlib "github.com/dominikbraun/graph"

	"github.com/simonhull/firebird-suite/magpie/pkg/analyzer"
)

// ErrUnknownFile is returned when an edge endpoint is not a discovered file.
var ErrUnknownFile = errors.New("unknown file")

// EdgeKind distinguishes whole-module imports from named imports
type EdgeKind string

const (
	KindModule   EdgeKind = "module"
	KindFunction EdgeKind = "function"
)

// Link colors carried as DOT attributes on the library graph.
const (
	ModuleColor   = "gray"
	FunctionColor = "red"
)

// Edge is one resolved import statement between two files
type Edge struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Kind   EdgeKind `json:"kind"`
	Symbol string   `json:"symbol,omitempty"`
}

// Link is the collapsed, rendered edge between an ordered pair of files
type Link struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Kind   EdgeKind `json:"kind"`
	Symbol string   `json:"symbol,omitempty"`
}

// linkData is stored as edge data on the library graph.
type linkData struct {
	Kind   EdgeKind
	Symbol string
}

// Stats summarizes an ImportGraph
type Stats struct {
	Files         int `json:"files"`
	Nodes         int `json:"nodes"`
	Edges         int `json:"edges"`
	Links         int `json:"links"`
	ModuleEdges   int `json:"module_edges"`
	FunctionEdges int `json:"function_edges"`
}

// ImportGraph is the file dependency graph of one project
type ImportGraph struct {
	files []string
	known map[string]bool
	edges []Edge
	g     graphlib.Graph[string, string]
}

// New creates an empty graph over the discovered file keys.
func New(files []string) *ImportGraph {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	known := make(map[string]bool, len(sorted))
	for _, f := range sorted {
		known[f] = true
	}

	return &ImportGraph{
		files: sorted,
		known: known,
		g:     graphlib.New(graphlib.StringHash, graphlib.Directed()),
	}
}

// Build creates the graph for a resolution: all module edges first, then all
// function edges.
func Build(res *analyzer.Resolution) (*ImportGraph, error) {
	ig := New(res.Discovered)

	for _, file := range res.Files {
		for _, target := range file.Modules {
			if err := ig.AddEdge(Edge{From: file.Key, To: target, Kind: KindModule}); err != nil {
				return nil, err
			}
		}
	}

	for _, file := range res.Files {
		for _, fn := range file.Functions {
			if err := ig.AddEdge(Edge{From: file.Key, To: fn.File, Kind: KindFunction, Symbol: fn.Symbol}); err != nil {
				return nil, err
			}
		}
	}

	return ig, nil
}

// AddEdge records e and adds or overwrites the link between its endpoints.
func (ig *ImportGraph) AddEdge(e Edge) error {
	for _, key := range []string{e.From, e.To} {
		if !ig.known[key] {
			return fmt.Errorf("%w: %s", ErrUnknownFile, key)
		}
		if err := ig.g.AddVertex(key); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return fmt.Errorf("adding node %s: %w", key, err)
		}
	}

	props := linkProperties(e)
	err := ig.g.AddEdge(e.From, e.To, props)
	if errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
		err = ig.g.UpdateEdge(e.From, e.To, props)
	}
	if err != nil {
		return fmt.Errorf("adding edge %s -> %s: %w", e.From, e.To, err)
	}

	ig.edges = append(ig.edges, e)
	return nil
}

// linkProperties replaces the link's data and attributes wholesale.
func linkProperties(e Edge) func(*graphlib.EdgeProperties) {
	return func(p *graphlib.EdgeProperties) {
		p.Data = linkData{Kind: e.Kind, Symbol: e.Symbol}
		p.Attributes = map[string]string{"kind": string(e.Kind), "color": ModuleColor}
		if e.Kind == KindFunction {
			p.Attributes["color"] = FunctionColor
			p.Attributes["label"] = e.Symbol
		}
	}
}

// Files returns every discovered file key, sorted.
func (ig *ImportGraph) Files() []string {
	return append([]string(nil), ig.files...)
}

// Edges returns the raw edge list in insertion order.
func (ig *ImportGraph) Edges() []Edge {
	return append([]Edge(nil), ig.edges...)
}

// Nodes returns the keys of files referenced by at least one edge, sorted.
func (ig *ImportGraph) Nodes() []string {
	adj, err := ig.g.AdjacencyMap()
	if err != nil {
		return nil
	}

	nodes := make([]string, 0, len(adj))
	for key := range adj {
		nodes = append(nodes, key)
	}
	sort.Strings(nodes)
	return nodes
}

// Links returns one link per ordered pair, sorted by From then To.
func (ig *ImportGraph) Links() []Link {
	edges, err := ig.g.Edges()
	if err != nil {
		return nil
	}

	links := make([]Link, 0, len(edges))
	for _, e := range edges {
		links = append(links, toLink(e))
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].From != links[j].From {
			return links[i].From < links[j].From
		}
		return links[i].To < links[j].To
	})
	return links
}

// Link returns the rendered link from one file to another.
func (ig *ImportGraph) Link(from, to string) (Link, bool) {
	e, err := ig.g.Edge(from, to)
	if err != nil {
		return Link{}, false
	}
	return toLink(e), true
}

// HasLink reports whether from imports to.
func (ig *ImportGraph) HasLink(from, to string) bool {
	_, ok := ig.Link(from, to)
	return ok
}

// Importers returns the files that import key, sorted.
func (ig *ImportGraph) Importers(key string) []string {
	pred, err := ig.g.PredecessorMap()
	if err != nil {
		return nil
	}

	importers := make([]string, 0, len(pred[key]))
	for from := range pred[key] {
		importers = append(importers, from)
	}
	sort.Strings(importers)
	return importers
}

// Stats returns summary counts.
func (ig *ImportGraph) Stats() Stats {
	s := Stats{
		Files: len(ig.files),
		Edges: len(ig.edges),
	}
	for _, e := range ig.edges {
		if e.Kind == KindFunction {
			s.FunctionEdges++
		} else {
			s.ModuleEdges++
		}
	}
	s.Nodes, _ = ig.g.Order()
	s.Links, _ = ig.g.Size()
	return s
}

// Graph exposes the underlying directed graph.
func (ig *ImportGraph) Graph() graphlib.Graph[string, string] {
	return ig.g
}

func toLink(e graphlib.Edge[string]) Link {
	link := Link{From: e.Source, To: e.Target}
	if data, ok := e.Properties.Data.(linkData); ok {
		link.Kind = data.Kind
		link.Symbol = data.Symbol
	}
	return link
}
