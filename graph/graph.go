// Package graph 绘制标注优先的关系网络：结点名置于结点上方、边名沿边
// 倾角旋转、自环化为节点旁的弧线。位置可以显式给定，也可以由弹簧布局
// 生成。
package graph

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ByLCY/scholia/annotation"
	"github.com/ByLCY/scholia/layout"
)

var (
	ErrEmptyNodeID     = errors.New("graph: 结点 ID 不能为空")
	ErrEmptyNetwork    = errors.New("graph: 网络中没有结点")
	ErrMissingPosition = errors.New("graph: 缺少结点位置")

	defaultNodeColor = layout.Color{R: 31, G: 119, B: 180}
	defaultEdgeColor = layout.Color{R: 80, G: 80, B: 80}
)

// 缺省的结点标记面积（pt²）与边线宽（mm）。
const (
	defaultNodeSize  = 300.0
	defaultEdgeWidth = 0.4
)

// Node 描述一个网络结点。
type Node struct {
	ID    string
	Name  string  // 显示名，空时用 ID
	Size  float64 // 标记面积（pt²），零值继承 DrawOptions.NodeSize
	Label string  // 说明文字，汇总到 Drawn.Labels
	Color *layout.Color
}

// Edge 描述一条边，端点以结点 ID 引用。
type Edge struct {
	U, V  string
	Name  string // 沿边显示的名字
	Label string // 说明文字，汇总到 Drawn.Labels
	Width float64
	Color *layout.Color
}

// Network 是可选方向的标注网络，结点按加入次序保持稳定。
type Network struct {
	directed bool
	order    []string
	nodes    map[string]*Node
	edges    []*Edge
}

// NewNetwork 创建空网络。
func NewNetwork(directed bool) *Network {
	return &Network{directed: directed, nodes: make(map[string]*Node)}
}

// Directed 报告网络是否有向。
func (n *Network) Directed() bool { return n.directed }

// AddNode 注册或更新一个结点；重复 ID 时后写覆盖前写。
func (n *Network) AddNode(node Node) error {
	if node.ID == "" {
		return ErrEmptyNodeID
	}
	if _, ok := n.nodes[node.ID]; !ok {
		n.order = append(n.order, node.ID)
	}
	clone := node
	n.nodes[node.ID] = &clone
	return nil
}

// AddEdge 注册一条边，未出现过的端点自动注册为裸结点。
func (n *Network) AddEdge(e Edge) error {
	if e.U == "" || e.V == "" {
		return fmt.Errorf("%w：边 %q-%q", ErrEmptyNodeID, e.U, e.V)
	}
	for _, id := range []string{e.U, e.V} {
		if _, ok := n.nodes[id]; !ok {
			if err := n.AddNode(Node{ID: id}); err != nil {
				return err
			}
		}
	}
	clone := e
	n.edges = append(n.edges, &clone)
	return nil
}

// Nodes 按加入次序返回全部结点。
func (n *Network) Nodes() []*Node {
	out := make([]*Node, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.nodes[id])
	}
	return out
}

// Edges 按加入次序返回全部边。
func (n *Network) Edges() []*Edge {
	out := make([]*Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// Node 按 ID 查找结点，不存在时返回 nil。
func (n *Network) Node(id string) *Node {
	return n.nodes[id]
}

// Adjacency 返回按加入次序索引的 0/1 邻接矩阵，无向网络对称。
func (n *Network) Adjacency() *mat.Dense {
	size := len(n.order)
	if size == 0 {
		return nil
	}
	index := make(map[string]int, size)
	for i, id := range n.order {
		index[id] = i
	}
	adj := mat.NewDense(size, size, nil)
	for _, e := range n.edges {
		i, j := index[e.U], index[e.V]
		adj.Set(i, j, 1)
		if !n.directed {
			adj.Set(j, i, 1)
		}
	}
	return adj
}

// DrawOptions 控制一次网络绘制。
type DrawOptions struct {
	// Positions 给定结点的数据坐标；为空时由弹簧布局生成。
	Positions map[string]layout.Point
	// Spring 覆盖缺省的弹簧布局参数。
	Spring *SpringLayout
	// NodeSize 未指定大小结点的标记面积（pt²），零值取 300。
	NodeSize float64
	// NodeColor 未指定颜色结点的缺省颜色。
	NodeColor *layout.Color
	// NameStyle 结点名样式，EdgeNameStyle 边名样式。
	NameStyle     layout.TextStyle
	EdgeNameStyle layout.TextStyle
	EdgeColor     *layout.Color
	EdgeWidth     float64 // mm，零值取 0.4
	// LoopOffset 自环相对结点中心的偏移角（弧度），nil 取 π/2（上方）。
	LoopOffset *float64
	// KeepLimits 保持坐标系当前数据范围，不按结点位置适配。
	KeepLimits bool
}

// Drawn 汇总一次网络绘制的产物。
type Drawn struct {
	Positions map[string]layout.Point
	Names     []*layout.TextBox
	EdgeNames []*layout.TextBox
	Labels    []string
}

// Graph 在图面上绘制网络。
type Graph struct {
	plot     *layout.Plot
	ann      *annotation.Annotation
	arranger annotation.Arranger
}

// New 创建依附于 plot 的网络绘制器。
func New(p *layout.Plot) *Graph {
	return &Graph{plot: p, ann: annotation.New(p)}
}

// Draw 绘制整个网络：结点圆点、结点名、收缩到结点边缘的边、
// 旋转的边名与自环。返回实际使用的位置与全部文本框。
func (g *Graph) Draw(net *Network, opts DrawOptions) (*Drawn, error) {
	if net == nil || len(net.order) == 0 {
		return nil, ErrEmptyNetwork
	}
	positions, err := g.resolvePositions(net, opts)
	if err != nil {
		return nil, err
	}

	axes := g.plot.Axes
	if !opts.KeepLimits {
		if err := fitLimits(axes, positions); err != nil {
			return nil, err
		}
	}

	nodeSize := opts.NodeSize
	if nodeSize <= 0 {
		nodeSize = defaultNodeSize
	}
	sizeOf := func(n *Node) float64 {
		if n.Size > 0 {
			return n.Size
		}
		return nodeSize
	}

	drawn := &Drawn{Positions: positions}

	// 结点与结点名
	for _, node := range net.Nodes() {
		pos := positions[node.ID]
		g.drawNode(node, pos, sizeOf(node), opts.NodeColor)

		rx, ry := MarkerRadius(axes, sizeOf(node))
		name := node.Name
		if name == "" {
			name = node.ID
		}
		tb, err := g.ann.Draw(layout.Tokenize(name), pos.X-2*rx, pos.X+2*rx, pos.Y+ry, annotation.Options{
			Align:  "center",
			VAlign: "bottom",
			Style:  opts.NameStyle,
			Pad:    rx,
		})
		if err != nil {
			return nil, fmt.Errorf("绘制结点名 %q 失败: %w", name, err)
		}
		drawn.Names = append(drawn.Names, tb)

		if node.Label != "" {
			drawn.Labels = append(drawn.Labels, name+": "+node.Label)
		}
	}
	g.arranger.Arrange(drawn.Names)

	// 边、边名与自环
	for _, e := range net.Edges() {
		if e.U == e.V {
			tb, err := g.drawLoop(net, e, positions[e.U], sizeOf(net.Node(e.U)), opts)
			if err != nil {
				return nil, err
			}
			if tb != nil {
				drawn.EdgeNames = append(drawn.EdgeNames, tb)
			}
		} else {
			tb, err := g.drawEdge(net, e, positions, sizeOf, opts)
			if err != nil {
				return nil, err
			}
			if tb != nil {
				drawn.EdgeNames = append(drawn.EdgeNames, tb)
			}
		}
		if e.Label != "" {
			drawn.Labels = append(drawn.Labels, e.U+"-"+e.V+": "+e.Label)
		}
	}
	return drawn, nil
}

// resolvePositions 采用调用方给定的位置；缺省时由弹簧布局生成。
func (g *Graph) resolvePositions(net *Network, opts DrawOptions) (map[string]layout.Point, error) {
	if opts.Positions != nil {
		for _, id := range net.order {
			if _, ok := opts.Positions[id]; !ok {
				return nil, fmt.Errorf("%w：%q", ErrMissingPosition, id)
			}
		}
		return opts.Positions, nil
	}

	spring := SpringLayout{}
	if opts.Spring != nil {
		spring = *opts.Spring
	}
	pos, err := spring.Positions(net.Adjacency())
	if err != nil {
		return nil, err
	}
	out := make(map[string]layout.Point, len(net.order))
	for i, id := range net.order {
		out[id] = layout.Point{X: pos.At(i, 0), Y: pos.At(i, 1)}
	}
	return out, nil
}

// fitLimits 将坐标范围适配到结点包围盒，四周各留一成边距。
func fitLimits(axes *layout.Axes, positions map[string]layout.Point) error {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range positions {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	padX := 0.1 * math.Max(maxX-minX, 1)
	padY := 0.1 * math.Max(maxY-minY, 1)
	if err := axes.SetXLim(minX-padX, maxX+padX); err != nil {
		return err
	}
	return axes.SetYLim(minY-padY, maxY+padY)
}

// drawNode 画结点的实心圆点。
func (g *Graph) drawNode(node *Node, pos layout.Point, size float64, fallback *layout.Color) {
	color := defaultNodeColor
	switch {
	case node.Color != nil:
		color = *node.Color
	case fallback != nil:
		color = *fallback
	}
	center := g.plot.Axes.Point(pos)
	g.plot.Figure.Circles = append(g.plot.Figure.Circles, layout.Circle{
		CX:          center.X,
		CY:          center.Y,
		R:           markerRadiusMM(size),
		StrokeColor: color,
		FillColor:   &color,
	})
}

// drawEdge 画一条两端收缩到结点边缘的边，需要时再画箭头与旋转边名。
func (g *Graph) drawEdge(net *Network, e *Edge, positions map[string]layout.Point, sizeOf func(*Node) float64, opts DrawOptions) (*layout.TextBox, error) {
	axes := g.plot.Axes
	u, v := positions[e.U], positions[e.V]
	dist := Distance(u, v)
	if dist == 0 {
		return nil, nil
	}
	dir := Direction(u, v)
	theta := math.Atan2(v.Y-u.Y, v.X-u.X)
	ratio := axes.Aspect()

	rxU, ryU := MarkerRadius(axes, sizeOf(net.Node(e.U)))
	rxV, ryV := MarkerRadius(axes, sizeOf(net.Node(e.V)))
	diffU := edgeInset(rxU, ryU, theta, ratio)
	diffV := edgeInset(rxV, ryV, theta, ratio)
	if diffU+diffV >= dist {
		// 结点图形彼此覆盖，没有可见的边
		return nil, nil
	}

	start := layout.Point{X: u.X + dir.X*diffU, Y: u.Y + dir.Y*diffU}
	end := layout.Point{X: u.X + dir.X*(dist-diffV), Y: u.Y + dir.Y*(dist-diffV)}
	p1, p2 := axes.Point(start), axes.Point(end)

	width := e.Width
	if width <= 0 {
		width = opts.EdgeWidth
	}
	if width <= 0 {
		width = defaultEdgeWidth
	}
	color := defaultEdgeColor
	switch {
	case e.Color != nil:
		color = *e.Color
	case opts.EdgeColor != nil:
		color = *opts.EdgeColor
	}

	g.plot.Figure.Lines = append(g.plot.Figure.Lines, layout.Line{
		X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y,
		Color: color,
		Width: width,
	})
	if net.Directed() {
		g.drawArrowHead(p1, p2, width, color, 1)
	}

	if e.Name == "" {
		return nil, nil
	}
	return g.drawEdgeName(e.Name, u, v, opts)
}

// edgeInset 返回沿 θ 方向离开一个结点标记所需的数据距离。
// 纵横比大于 1 时横向半径按比例缩小，否则纵向半径按比例放大。
func edgeInset(rx, ry, theta, ratio float64) float64 {
	if ratio > 1 {
		return math.Abs(rx*math.Cos(theta))/ratio + math.Abs(ry*math.Sin(theta))
	}
	return math.Abs(rx*math.Cos(theta)) + math.Abs(ry*math.Sin(theta))*ratio
}

// drawArrowHead 在 p2 端画实心三角箭头，scale 调节箭头大小。
func (g *Graph) drawArrowHead(p1, p2 layout.Point, width float64, color layout.Color, scale float64) {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	headLen := 4 * width * scale
	halfW := 1.5 * width * scale
	backX, backY := p2.X-ux*headLen, p2.Y-uy*headLen
	g.plot.Figure.Polygons = append(g.plot.Figure.Polygons, layout.Polygon{
		Points: []layout.Point{
			{X: p2.X, Y: p2.Y},
			{X: backX - uy*halfW, Y: backY + ux*halfW},
			{X: backX + uy*halfW, Y: backY - ux*halfW},
		},
		StrokeColor: color,
		FillColor:   &color,
	})
}

// drawEdgeName 沿边中点放置旋转后的边名。文本先试排一次测量尺寸，
// 再按实际宽度居中放回。
func (g *Graph) drawEdgeName(name string, u, v layout.Point, opts DrawOptions) (*layout.TextBox, error) {
	axes := g.plot.Axes
	// 端点按 x 排序，保证仰角与阅读方向一致
	if u.X > v.X {
		u, v = v, u
	}
	elev := Elevation(u, v, axes.Aspect())
	mid := layout.Point{X: (u.X + v.X) / 2, Y: (u.Y + v.Y) / 2}
	tokens := layout.Tokenize(name)

	trial, err := g.ann.Draw(tokens, axes.XMin, axes.XMax, mid.Y, annotation.Options{
		VAlign: "center",
		Style:  opts.EdgeNameStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("试排边名 %q 失败: %w", name, err)
	}
	bx0, by0, bx1, by1 := trial.BBox()
	g.ann.Remove(trial)
	wData := axes.InvDX(bx1 - bx0)
	hData := axes.InvDY(by1 - by0)

	y := mid.Y
	if elev > 0 {
		y += hData / 2 * math.Sin(elev)
	}
	tb, err := g.ann.Draw(tokens, mid.X-wData/2, mid.X+wData/2, y, annotation.Options{
		Align:  "center",
		VAlign: "center",
		Style:  opts.EdgeNameStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("绘制边名 %q 失败: %w", name, err)
	}
	tb.Rotation = elev * 180 / math.Pi
	return tb, nil
}

// drawLoop 画自环弧线，并将环名锚定在结点上方两个纵向半径处。
func (g *Graph) drawLoop(net *Network, e *Edge, pos layout.Point, size float64, opts DrawOptions) (*layout.TextBox, error) {
	axes := g.plot.Axes
	offset := math.Pi / 2
	if opts.LoopOffset != nil {
		offset = *opts.LoopOffset
	}

	r := markerRadiusMM(size)
	center := axes.Point(pos)
	// 弧心位于结点中心偏移角方向一个结点半径处，弧半径为其一半；
	// 起止角取弧与结点圆的交点。
	d := r
	lr := r * 0.5
	cx := d * math.Cos(offset)
	cy := d * math.Sin(offset)
	d1 := (r*r - lr*lr + d*d) / (2 * d)
	d2 := d - d1
	start := math.Floor(math.Asin(-d2/lr) * 180 / math.Pi)

	var pts []layout.Point
	for i := start; i <= 180-start; i++ {
		rad := math.Pi*(i/180-0.5) + offset
		pts = append(pts, layout.Point{
			X: center.X + cx + lr*math.Cos(rad),
			Y: center.Y - (cy + lr*math.Sin(rad)),
		})
	}

	width := e.Width
	if width <= 0 {
		width = opts.EdgeWidth
	}
	if width <= 0 {
		width = defaultEdgeWidth
	}
	color := defaultEdgeColor
	switch {
	case e.Color != nil:
		color = *e.Color
	case opts.EdgeColor != nil:
		color = *opts.EdgeColor
	}

	g.plot.Figure.Polylines = append(g.plot.Figure.Polylines, layout.Polyline{
		Points: pts,
		Color:  color,
		Width:  2 * width,
	})
	if net.Directed() && len(pts) >= 2 {
		g.drawArrowHead(pts[len(pts)-2], pts[len(pts)-1], 2*width, color, 0.75)
	}

	if e.Name == "" {
		return nil, nil
	}
	rx, ry := MarkerRadius(axes, size)
	tb, err := g.ann.Draw(layout.Tokenize(e.Name), pos.X-2*rx, pos.X+2*rx, pos.Y+2*ry, annotation.Options{
		Align:  "center",
		VAlign: "bottom",
		Style:  opts.EdgeNameStyle,
		Pad:    rx,
	})
	if err != nil {
		return nil, fmt.Errorf("绘制自环名 %q 失败: %w", e.Name, err)
	}
	return tb, nil
}
