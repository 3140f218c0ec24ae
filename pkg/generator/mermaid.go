package generator

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/pkg/graph"
)

// renderMermaid writes a Mermaid flowchart. Node ids are positional since
// file keys contain characters Mermaid does not accept in ids.
func (g *Generator) renderMermaid(w io.Writer, ig *graph.ImportGraph) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "---")
	fmt.Fprintf(bw, "title: %s\n", mermaidText(g.opts.Title))
	fmt.Fprintln(bw, "---")
	fmt.Fprintln(bw, "flowchart LR")

	ids := make(map[string]string)
	for i, key := range ig.Nodes() {
		id := fmt.Sprintf("n%d", i)
		ids[key] = id
		fmt.Fprintf(bw, "    %s[\"%s\"]\n", id, mermaidText(key))
	}

	links := ig.Links()
	for _, l := range links {
		if l.Kind == graph.KindFunction {
			fmt.Fprintf(bw, "    %s -- \"%s\" --> %s\n", ids[l.From], mermaidText(l.Symbol), ids[l.To])
		} else {
			fmt.Fprintf(bw, "    %s --> %s\n", ids[l.From], ids[l.To])
		}
	}

	if len(ids) > 0 {
		fmt.Fprintf(bw, "    classDef file fill:%s\n", g.opts.NodeColor)
		fmt.Fprintf(bw, "    class %s file\n", strings.Join(nodeIDs(len(ids)), ","))
	}
	for i, l := range links {
		fmt.Fprintf(bw, "    linkStyle %d stroke:%s\n", i, g.edgeColor(l.Kind))
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing mermaid: %w", err)
	}
	return nil
}

func nodeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
	}
	return ids
}

func mermaidText(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "\n", " ").Replace(s)
}
