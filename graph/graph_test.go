package graph

import (
	"errors"
	"math"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/scholia/layout"
)

// stubMeasurer 宽度与字符数成正比，高度为字号的 1.2 倍。
type stubMeasurer struct{}

func (stubMeasurer) TextExtent(text, font string, fontSize float64) (float64, float64, error) {
	return float64(utf8.RuneCountInString(text)) * fontSize / 2, fontSize * 1.2, nil
}

// newTestPlot 构造 100×50mm 的测试图面，基础字号 4mm，数据范围 [0,1]²。
func newTestPlot(t *testing.T) *layout.Plot {
	t.Helper()
	p, err := layout.NewPlot(layout.MM(100), layout.MM(50), stubMeasurer{},
		layout.WithStyle(layout.TextStyle{Size: layout.MM(4)}))
	if err != nil {
		t.Fatalf("创建图面失败: %v", err)
	}
	return p
}

func TestNetworkAddNode(t *testing.T) {
	net := NewNetwork(false)
	if err := net.AddNode(Node{ID: "a", Name: "甲"}); err != nil {
		t.Fatalf("加结点失败: %v", err)
	}
	if err := net.AddNode(Node{ID: "b"}); err != nil {
		t.Fatalf("加结点失败: %v", err)
	}
	// 重复 ID 更新内容但保持次序
	if err := net.AddNode(Node{ID: "a", Name: "新甲"}); err != nil {
		t.Fatalf("更新结点失败: %v", err)
	}
	nodes := net.Nodes()
	if len(nodes) != 2 || nodes[0].ID != "a" || nodes[1].ID != "b" {
		t.Fatalf("结点次序错误: %+v", nodes)
	}
	if nodes[0].Name != "新甲" {
		t.Fatalf("重复 ID 未更新: %q", nodes[0].Name)
	}
	if err := net.AddNode(Node{}); !errors.Is(err, ErrEmptyNodeID) {
		t.Fatalf("空 ID 期望 ErrEmptyNodeID，实际 %v", err)
	}
}

func TestNetworkAddEdge(t *testing.T) {
	net := NewNetwork(true)
	if err := net.AddEdge(Edge{U: "a", V: "b"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}
	if len(net.Nodes()) != 2 {
		t.Fatalf("端点应自动注册，实际 %d 个结点", len(net.Nodes()))
	}
	if net.Node("a") == nil || net.Node("b") == nil {
		t.Fatalf("端点查找失败")
	}
	if err := net.AddEdge(Edge{U: "a"}); !errors.Is(err, ErrEmptyNodeID) {
		t.Fatalf("空端点期望 ErrEmptyNodeID，实际 %v", err)
	}
}

func TestNetworkAdjacency(t *testing.T) {
	net := NewNetwork(false)
	if err := net.AddEdge(Edge{U: "a", V: "b"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}
	if err := net.AddNode(Node{ID: "c"}); err != nil {
		t.Fatalf("加结点失败: %v", err)
	}
	adj := net.Adjacency()
	r, c := adj.Dims()
	if r != 3 || c != 3 {
		t.Fatalf("邻接矩阵期望 3×3，实际 %d×%d", r, c)
	}
	if adj.At(0, 1) != 1 || adj.At(1, 0) != 1 {
		t.Fatalf("无向边应对称登记")
	}
	if adj.At(0, 2) != 0 || adj.At(2, 1) != 0 {
		t.Fatalf("无边处应为 0")
	}

	directed := NewNetwork(true)
	if err := directed.AddEdge(Edge{U: "a", V: "b"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}
	dadj := directed.Adjacency()
	if dadj.At(0, 1) != 1 || dadj.At(1, 0) != 0 {
		t.Fatalf("有向边不应对称登记")
	}
}

func TestGraphDrawNodes(t *testing.T) {
	p := newTestPlot(t)
	g := New(p)
	net := NewNetwork(false)
	red := layout.Color{R: 200, G: 30, B: 30}
	if err := net.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("加结点失败: %v", err)
	}
	if err := net.AddNode(Node{ID: "b", Name: "乙", Color: &red}); err != nil {
		t.Fatalf("加结点失败: %v", err)
	}

	drawn, err := g.Draw(net, DrawOptions{
		Positions: map[string]layout.Point{
			"a": {X: 0.3, Y: 0.5},
			"b": {X: 0.7, Y: 0.5},
		},
		KeepLimits: true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}

	if len(p.Figure.Circles) != 2 {
		t.Fatalf("期望 2 个结点圆点，实际 %d", len(p.Figure.Circles))
	}
	r := markerRadiusMM(300)
	c0 := p.Figure.Circles[0]
	if !eq(c0.CX, 30) || !eq(c0.CY, 25) || !eq(c0.R, r) {
		t.Fatalf("圆点位置错误: cx=%g cy=%g r=%g", c0.CX, c0.CY, c0.R)
	}
	if c0.FillColor == nil || *c0.FillColor != defaultNodeColor {
		t.Fatalf("默认结点颜色错误: %+v", c0.FillColor)
	}
	if p.Figure.Circles[1].StrokeColor != red {
		t.Fatalf("指定结点颜色未生效")
	}

	// 结点级颜色优先于选项级缺省色
	p2 := newTestPlot(t)
	gray := layout.Color{R: 120, G: 120, B: 120}
	_, err = New(p2).Draw(net, DrawOptions{
		Positions: map[string]layout.Point{
			"a": {X: 0.3, Y: 0.5},
			"b": {X: 0.7, Y: 0.5},
		},
		NodeColor:  &gray,
		KeepLimits: true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	if p2.Figure.Circles[0].StrokeColor != gray {
		t.Fatalf("缺省结点颜色未生效: %+v", p2.Figure.Circles[0].StrokeColor)
	}
	if p2.Figure.Circles[1].StrokeColor != red {
		t.Fatalf("结点级颜色应覆盖缺省色")
	}

	// 结点名贴在圆点上沿之外
	if len(drawn.Names) != 2 {
		t.Fatalf("期望 2 个结点名，实际 %d", len(drawn.Names))
	}
	name := drawn.Names[0]
	if bottom := name.Y + name.Height; !eq(bottom, 25-r) {
		t.Fatalf("结点名底边期望 %g，实际 %g", 25-r, bottom)
	}
	if drawn.Names[0].Tokens[0].Text != "a" || drawn.Names[1].Tokens[0].Text != "乙" {
		t.Fatalf("结点名内容错误")
	}
	if got := drawn.Positions["a"]; !eq(got.X, 0.3) || !eq(got.Y, 0.5) {
		t.Fatalf("返回位置与给定不符: %+v", got)
	}
}

func TestGraphDrawEdgeRetraction(t *testing.T) {
	p := newTestPlot(t)
	g := New(p)
	net := NewNetwork(false)
	if err := net.AddEdge(Edge{U: "a", V: "b"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}

	_, err := g.Draw(net, DrawOptions{
		Positions: map[string]layout.Point{
			"a": {X: 0.3, Y: 0.5},
			"b": {X: 0.7, Y: 0.5},
		},
		KeepLimits: true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}

	if len(p.Figure.Lines) != 1 {
		t.Fatalf("期望 1 条边，实际 %d", len(p.Figure.Lines))
	}
	// 水平边两端各收缩一个横向标记半径
	r := markerRadiusMM(300)
	line := p.Figure.Lines[0]
	if !eq(line.X1, 30+r) || !eq(line.X2, 70-r) {
		t.Fatalf("收缩后端点期望 x=[%g, %g]，实际 [%g, %g]", 30+r, 70-r, line.X1, line.X2)
	}
	if !eq(line.Y1, 25) || !eq(line.Y2, 25) {
		t.Fatalf("水平边 y 期望 25，实际 [%g, %g]", line.Y1, line.Y2)
	}
	if !eq(line.Width, defaultEdgeWidth) {
		t.Fatalf("默认线宽期望 %g，实际 %g", defaultEdgeWidth, line.Width)
	}
}

func TestGraphDrawOverlappingNodesSkipEdge(t *testing.T) {
	p := newTestPlot(t)
	g := New(p)
	net := NewNetwork(false)
	if err := net.AddEdge(Edge{U: "a", V: "b"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}

	// 两结点图形互相覆盖，边整条被吃掉
	_, err := g.Draw(net, DrawOptions{
		Positions: map[string]layout.Point{
			"a": {X: 0.5, Y: 0.5},
			"b": {X: 0.502, Y: 0.5},
		},
		KeepLimits: true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	if len(p.Figure.Lines) != 0 {
		t.Fatalf("重叠结点间不应画边，实际 %d 条", len(p.Figure.Lines))
	}
}

func TestGraphDrawDirectedArrow(t *testing.T) {
	p := newTestPlot(t)
	g := New(p)
	net := NewNetwork(true)
	if err := net.AddEdge(Edge{U: "a", V: "b"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}

	_, err := g.Draw(net, DrawOptions{
		Positions: map[string]layout.Point{
			"a": {X: 0.3, Y: 0.5},
			"b": {X: 0.7, Y: 0.5},
		},
		KeepLimits: true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	if len(p.Figure.Polygons) != 1 {
		t.Fatalf("有向边期望 1 个箭头，实际 %d", len(p.Figure.Polygons))
	}
	head := p.Figure.Polygons[0]
	line := p.Figure.Lines[0]
	if len(head.Points) != 3 {
		t.Fatalf("箭头应为三角形，实际 %d 点", len(head.Points))
	}
	if !eq(head.Points[0].X, line.X2) || !eq(head.Points[0].Y, line.Y2) {
		t.Fatalf("箭头尖端应在边终点: %+v", head.Points[0])
	}
	if head.FillColor == nil {
		t.Fatalf("箭头应为实心")
	}
}

func TestGraphDrawEdgeName(t *testing.T) {
	p := newTestPlot(t)
	g := New(p)
	net := NewNetwork(false)
	if err := net.AddEdge(Edge{U: "a", V: "b", Name: "up"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}

	drawn, err := g.Draw(net, DrawOptions{
		Positions: map[string]layout.Point{
			"a": {X: 0.2, Y: 0.3},
			"b": {X: 0.8, Y: 0.7},
		},
		KeepLimits: true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}

	if len(drawn.EdgeNames) != 1 {
		t.Fatalf("期望 1 个边名，实际 %d", len(drawn.EdgeNames))
	}
	// 仰角 atan(Δy·ratio/Δx) = atan(0.4·0.5/0.6)
	want := math.Atan(1.0/3) * 180 / math.Pi
	tb := drawn.EdgeNames[0]
	if !eq(tb.Rotation, want) {
		t.Fatalf("边名旋转期望 %g°，实际 %g°", want, tb.Rotation)
	}
	// 试排已撤销：场景只有 2 个结点名加 1 个边名
	if len(p.Figure.Texts) != 3 {
		t.Fatalf("场景文本数期望 3，实际 %d", len(p.Figure.Texts))
	}
	bx0, _, bx1, _ := tb.BBox()
	if !eq((bx0+bx1)/2, 50) {
		t.Fatalf("边名应横向居中于边中点，实际中心 %g", (bx0+bx1)/2)
	}
	// 上坡边名沿法向抬高，显示 y 小于中点
	c := tb.Center()
	if c.Y >= 25 {
		t.Fatalf("边名应抬离边线，实际中心 y=%g", c.Y)
	}
}

func TestGraphDrawSelfLoop(t *testing.T) {
	p := newTestPlot(t)
	g := New(p)
	net := NewNetwork(false)
	if err := net.AddEdge(Edge{U: "a", V: "a", Name: "loop"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}

	drawn, err := g.Draw(net, DrawOptions{
		Positions:  map[string]layout.Point{"a": {X: 0.5, Y: 0.5}},
		KeepLimits: true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}

	if len(p.Figure.Polylines) != 1 {
		t.Fatalf("期望 1 条自环弧线，实际 %d", len(p.Figure.Polylines))
	}
	arc := p.Figure.Polylines[0]
	if !eq(arc.Width, 2*defaultEdgeWidth) {
		t.Fatalf("自环线宽期望 %g，实际 %g", 2*defaultEdgeWidth, arc.Width)
	}
	// 弧的起止角由弧与结点圆的交点决定，asin(-1/4) 向下取整到 -15°
	if len(arc.Points) != 211 {
		t.Fatalf("弧采样点数期望 211，实际 %d", len(arc.Points))
	}
	// 弧顶在结点中心上方 1.5 个标记半径处
	r := markerRadiusMM(300)
	var far float64
	for _, pt := range arc.Points {
		far = math.Max(far, math.Hypot(pt.X-50, pt.Y-25))
	}
	if !eq(far, 1.5*r) {
		t.Fatalf("弧顶距结点中心期望 %g，实际 %g", 1.5*r, far)
	}

	// 环名锚在结点上方两个纵向半径处
	if len(drawn.EdgeNames) != 1 {
		t.Fatalf("期望 1 个环名，实际 %d", len(drawn.EdgeNames))
	}
	loopName := drawn.EdgeNames[0]
	if bottom := loopName.Y + loopName.Height; !eq(bottom, 25-2*r) {
		t.Fatalf("环名底边期望 %g，实际 %g", 25-2*r, bottom)
	}
	if drawn.EdgeNames[0].Rotation != 0 {
		t.Fatalf("环名不应旋转")
	}
}

func TestGraphDrawDirectedSelfLoop(t *testing.T) {
	p := newTestPlot(t)
	g := New(p)
	net := NewNetwork(true)
	if err := net.AddEdge(Edge{U: "a", V: "a"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}
	_, err := g.Draw(net, DrawOptions{
		Positions:  map[string]layout.Point{"a": {X: 0.5, Y: 0.5}},
		KeepLimits: true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	if len(p.Figure.Polygons) != 1 {
		t.Fatalf("有向自环期望 1 个箭头，实际 %d", len(p.Figure.Polygons))
	}
}

func TestGraphDrawSpringPositions(t *testing.T) {
	p := newTestPlot(t)
	g := New(p)
	net := NewNetwork(false)
	if err := net.AddEdge(Edge{U: "a", V: "b"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}
	if err := net.AddEdge(Edge{U: "b", V: "c"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}

	drawn, err := g.Draw(net, DrawOptions{})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	if len(drawn.Positions) != 3 {
		t.Fatalf("期望 3 个位置，实际 %d", len(drawn.Positions))
	}
	for id, pos := range drawn.Positions {
		if math.Abs(pos.X) > 1+1e-9 || math.Abs(pos.Y) > 1+1e-9 {
			t.Fatalf("弹簧布局位置应落在 [-1,1]²：%s=%+v", id, pos)
		}
		// 坐标范围适配后四边都留有边距
		if pos.X <= p.Axes.XMin || pos.X >= p.Axes.XMax ||
			pos.Y <= p.Axes.YMin || pos.Y >= p.Axes.YMax {
			t.Fatalf("结点 %s 超出适配后的坐标范围", id)
		}
	}

	// 相同种子在另一个图面上复现同一布局
	p2 := newTestPlot(t)
	drawn2, err := New(p2).Draw(net, DrawOptions{})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	for id, pos := range drawn.Positions {
		if drawn2.Positions[id] != pos {
			t.Fatalf("相同种子的布局不可复现：%s", id)
		}
	}
}

func TestGraphDrawLabels(t *testing.T) {
	p := newTestPlot(t)
	g := New(p)
	net := NewNetwork(false)
	if err := net.AddNode(Node{ID: "a", Label: "源结点"}); err != nil {
		t.Fatalf("加结点失败: %v", err)
	}
	if err := net.AddEdge(Edge{U: "a", V: "b", Label: "主连接"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}

	drawn, err := g.Draw(net, DrawOptions{
		Positions: map[string]layout.Point{
			"a": {X: 0.2, Y: 0.5},
			"b": {X: 0.8, Y: 0.5},
		},
		KeepLimits: true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	want := []string{"a: 源结点", "a-b: 主连接"}
	if len(drawn.Labels) != len(want) {
		t.Fatalf("说明条目期望 %d，实际 %d", len(want), len(drawn.Labels))
	}
	for i, s := range want {
		if drawn.Labels[i] != s {
			t.Fatalf("说明条目 %d 期望 %q，实际 %q", i, s, drawn.Labels[i])
		}
	}
}

func TestGraphDrawErrors(t *testing.T) {
	p := newTestPlot(t)
	g := New(p)

	if _, err := g.Draw(NewNetwork(false), DrawOptions{}); !errors.Is(err, ErrEmptyNetwork) {
		t.Fatalf("空网络期望 ErrEmptyNetwork，实际 %v", err)
	}
	if _, err := g.Draw(nil, DrawOptions{}); !errors.Is(err, ErrEmptyNetwork) {
		t.Fatalf("nil 网络期望 ErrEmptyNetwork，实际 %v", err)
	}

	net := NewNetwork(false)
	if err := net.AddEdge(Edge{U: "a", V: "b"}); err != nil {
		t.Fatalf("加边失败: %v", err)
	}
	_, err := g.Draw(net, DrawOptions{
		Positions: map[string]layout.Point{"a": {X: 0, Y: 0}},
	})
	if !errors.Is(err, ErrMissingPosition) {
		t.Fatalf("缺位置期望 ErrMissingPosition，实际 %v", err)
	}
}
