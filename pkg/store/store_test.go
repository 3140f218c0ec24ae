package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/magpie/pkg/analyzer"
	"github.com/simonhull/firebird-suite/magpie/pkg/graph"
)

func buildGraph(t *testing.T) *graph.ImportGraph {
	t.Helper()
	ig, err := graph.Build(&analyzer.Resolution{
		Discovered: []string{"a.py", "b.py", "c.py", "lonely.py"},
		Files: []*analyzer.ResolvedFile{
			{Key: "a.py", Modules: []string{"b.py", "b.py"}, Functions: []analyzer.ResolvedFunction{{File: "c.py", Symbol: "run"}}},
			{Key: "c.py", Modules: []string{"b.py"}},
		},
	})
	require.NoError(t, err)
	return ig
}

func TestStore_SaveGraph(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	defer s.Close()

	ig := buildGraph(t)
	require.NoError(t, s.SaveGraph(ctx, ig))

	files, err := s.Files(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.py", "c.py", "lonely.py"}, files)

	edges, err := s.Edges(ctx)
	require.NoError(t, err)
	assert.Equal(t, ig.Edges(), edges)

	importers, err := s.Importers(ctx, "b.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "c.py"}, importers)

	importers, err = s.Importers(ctx, "lonely.py")
	require.NoError(t, err)
	assert.Empty(t, importers)
}

func TestStore_SaveGraphReplacesContent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "graph.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.SaveGraph(ctx, buildGraph(t)))
	require.NoError(t, s.Close())

	small, err := graph.Build(&analyzer.Resolution{
		Discovered: []string{"x.py", "y.py"},
		Files:      []*analyzer.ResolvedFile{{Key: "x.py", Modules: []string{"y.py"}}},
	})
	require.NoError(t, err)

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.SaveGraph(ctx, small))

	files, err := s.Files(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x.py", "y.py"}, files)

	edges, err := s.Edges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []graph.Edge{{From: "x.py", To: "y.py", Kind: graph.KindModule}}, edges)
}

func TestStore_CancelledSave(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.SaveGraph(ctx, buildGraph(t)))

	files, err := s.Files(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}
