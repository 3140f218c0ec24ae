package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/magpie/pkg/analyzer"
)

func sampleResolution() *analyzer.Resolution {
	return &analyzer.Resolution{
		Discovered: []string{"broken.py", "engine/core.py", "lonely.py", "main.py", "utils/helpers.py"},
		Files: []*analyzer.ResolvedFile{
			{Key: "broken.py"},
			{
				Key:       "engine/core.py",
				Functions: []analyzer.ResolvedFunction{{File: "utils/helpers.py", Symbol: "clamp"}},
			},
			{Key: "lonely.py"},
			{
				Key:     "main.py",
				Modules: []string{"engine/core.py", "utils/helpers.py", "utils/helpers.py"},
				Functions: []analyzer.ResolvedFunction{
					{File: "utils/helpers.py", Symbol: "clamp"},
					{File: "utils/helpers.py", Symbol: "lerp"},
				},
			},
			{Key: "utils/helpers.py"},
		},
	}
}

func TestBuild(t *testing.T) {
	ig, err := Build(sampleResolution())
	require.NoError(t, err)

	assert.Equal(t, []Edge{
		{From: "main.py", To: "engine/core.py", Kind: KindModule},
		{From: "main.py", To: "utils/helpers.py", Kind: KindModule},
		{From: "main.py", To: "utils/helpers.py", Kind: KindModule},
		{From: "engine/core.py", To: "utils/helpers.py", Kind: KindFunction, Symbol: "clamp"},
		{From: "main.py", To: "utils/helpers.py", Kind: KindFunction, Symbol: "clamp"},
		{From: "main.py", To: "utils/helpers.py", Kind: KindFunction, Symbol: "lerp"},
	}, ig.Edges())
}

func TestBuild_NodesExcludeIsolatedFiles(t *testing.T) {
	ig, err := Build(sampleResolution())
	require.NoError(t, err)

	assert.Equal(t, []string{"engine/core.py", "main.py", "utils/helpers.py"}, ig.Nodes())
	assert.Equal(t, []string{"broken.py", "engine/core.py", "lonely.py", "main.py", "utils/helpers.py"}, ig.Files())
}

func TestBuild_LinksCollapseWithLastWriterWins(t *testing.T) {
	ig, err := Build(sampleResolution())
	require.NoError(t, err)

	assert.Equal(t, []Link{
		{From: "engine/core.py", To: "utils/helpers.py", Kind: KindFunction, Symbol: "clamp"},
		{From: "main.py", To: "engine/core.py", Kind: KindModule},
		{From: "main.py", To: "utils/helpers.py", Kind: KindFunction, Symbol: "lerp"},
	}, ig.Links())

	link, ok := ig.Link("main.py", "utils/helpers.py")
	require.True(t, ok)
	assert.Equal(t, KindFunction, link.Kind)
	assert.Equal(t, "lerp", link.Symbol)

	edge, err := ig.Graph().Edge("main.py", "utils/helpers.py")
	require.NoError(t, err)
	assert.Equal(t, "lerp", edge.Properties.Attributes["label"])
	assert.Equal(t, "function", edge.Properties.Attributes["kind"])
	assert.Equal(t, FunctionColor, edge.Properties.Attributes["color"])

	edge, err = ig.Graph().Edge("main.py", "engine/core.py")
	require.NoError(t, err)
	_, hasLabel := edge.Properties.Attributes["label"]
	assert.False(t, hasLabel)
	assert.Equal(t, ModuleColor, edge.Properties.Attributes["color"])
}

func TestBuild_FunctionEdgesOverrideModuleEdges(t *testing.T) {
	// The function import is listed first in the file but still wins.
	res := &analyzer.Resolution{
		Discovered: []string{"a.py", "b.py"},
		Files: []*analyzer.ResolvedFile{
			{
				Key:       "a.py",
				Functions: []analyzer.ResolvedFunction{{File: "b.py", Symbol: "run"}},
				Modules:   []string{"b.py"},
			},
		},
	}

	ig, err := Build(res)
	require.NoError(t, err)

	link, ok := ig.Link("a.py", "b.py")
	require.True(t, ok)
	assert.Equal(t, Link{From: "a.py", To: "b.py", Kind: KindFunction, Symbol: "run"}, link)
}

func TestBuild_UnknownFile(t *testing.T) {
	res := &analyzer.Resolution{
		Discovered: []string{"a.py"},
		Files: []*analyzer.ResolvedFile{
			{Key: "a.py", Modules: []string{"ghost.py"}},
		},
	}

	_, err := Build(res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFile))
	assert.Contains(t, err.Error(), "ghost.py")
}

func TestBuild_SelfImport(t *testing.T) {
	res := &analyzer.Resolution{
		Discovered: []string{"loop.py"},
		Files:      []*analyzer.ResolvedFile{{Key: "loop.py", Modules: []string{"loop.py"}}},
	}

	ig, err := Build(res)
	require.NoError(t, err)
	assert.True(t, ig.HasLink("loop.py", "loop.py"))
	assert.Equal(t, []string{"loop.py"}, ig.Nodes())
}

func TestBuild_Empty(t *testing.T) {
	ig, err := Build(&analyzer.Resolution{Discovered: []string{"a.py", "b.py"}})
	require.NoError(t, err)

	assert.Empty(t, ig.Nodes())
	assert.Empty(t, ig.Links())
	assert.Empty(t, ig.Edges())
	assert.Equal(t, Stats{Files: 2}, ig.Stats())
}

func TestImportGraph_Stats(t *testing.T) {
	ig, err := Build(sampleResolution())
	require.NoError(t, err)

	assert.Equal(t, Stats{
		Files:         5,
		Nodes:         3,
		Edges:         6,
		Links:         3,
		ModuleEdges:   3,
		FunctionEdges: 3,
	}, ig.Stats())
}

func TestImportGraph_Importers(t *testing.T) {
	ig, err := Build(sampleResolution())
	require.NoError(t, err)

	assert.Equal(t, []string{"engine/core.py", "main.py"}, ig.Importers("utils/helpers.py"))
	assert.Equal(t, []string{"main.py"}, ig.Importers("engine/core.py"))
	assert.Empty(t, ig.Importers("main.py"))
	assert.Empty(t, ig.Importers("lonely.py"))
}

func TestImportGraph_HasLinkIsDirected(t *testing.T) {
	ig, err := Build(sampleResolution())
	require.NoError(t, err)

	assert.True(t, ig.HasLink("main.py", "engine/core.py"))
	assert.False(t, ig.HasLink("engine/core.py", "main.py"))
	assert.False(t, ig.HasLink("lonely.py", "main.py"))
}

// Every resolved import of an in-project file produces an edge.
func TestBuild_EveryResolvedImportHasEdge(t *testing.T) {
	res := sampleResolution()
	ig, err := Build(res)
	require.NoError(t, err)

	for _, f := range res.Files {
		for _, target := range f.Modules {
			assert.True(t, ig.HasLink(f.Key, target), "%s -> %s", f.Key, target)
		}
		for _, fn := range f.Functions {
			assert.True(t, ig.HasLink(f.Key, fn.File), "%s -> %s", f.Key, fn.File)
		}
	}
}
