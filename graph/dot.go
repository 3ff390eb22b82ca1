package graph

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-graphviz"
)

// ToDOT 把网络导出为 DOT 文本。结点与边都先排序，
// 相同网络总是产生相同输出。
func ToDOT(n *Network) (string, error) {
	if n == nil || len(n.order) == 0 {
		return "", ErrEmptyNetwork
	}

	nodes := n.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	edges := n.Edges()
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.U != b.U {
			return a.U < b.U
		}
		if a.V != b.V {
			return a.V < b.V
		}
		return a.Name < b.Name
	})

	head, arrow := "graph", "--"
	if n.directed {
		head, arrow = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", head)
	for _, node := range nodes {
		if node.Name != "" && node.Name != node.ID {
			fmt.Fprintf(&buf, "  %q [label=%q];\n", node.ID, node.Name)
		} else {
			fmt.Fprintf(&buf, "  %q;\n", node.ID)
		}
	}
	for _, e := range edges {
		if e.Name != "" {
			fmt.Fprintf(&buf, "  %q %s %q [label=%q];\n", e.U, arrow, e.V, e.Name)
		} else {
			fmt.Fprintf(&buf, "  %q %s %q;\n", e.U, arrow, e.V)
		}
	}
	buf.WriteString("}\n")
	return buf.String(), nil
}

// RenderDOT 用 Graphviz 把网络渲染成 format 指定的格式。
func RenderDOT(ctx context.Context, n *Network, format graphviz.Format) ([]byte, error) {
	dot, err := ToDOT(n)
	if err != nil {
		return nil, err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("初始化 graphviz 失败: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("解析 DOT 失败: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("渲染失败: %w", err)
	}
	return buf.Bytes(), nil
}
