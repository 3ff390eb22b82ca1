// Package annotation 在坐标系上放置文本标注：单条标注、整块文本可视化
// 以及重叠标签的垂直分散。
package annotation

import (
	"errors"
	"math"

	"github.com/ByLCY/scholia/layout"
)

var ErrNoTokens = errors.New("annotation: 没有可标注的词元")

// MarkerStyle 控制标注锚点处的实心圆点。
type MarkerStyle struct {
	Size  float64       // 标记面积（pt²），零值取 8
	Color *layout.Color // 为空时继承文本颜色
}

// Options 控制单条标注的排版，字符串字段接受与 DSL 相同的对齐名称。
type Options struct {
	Align  string
	VAlign string
	Style  layout.TextStyle
	// Pad 把排版区间左右各收缩这么多（数据 x 单位）。
	Pad float64
	// WordSpacing 词间距（数据 x 单位），零值由测量推导。
	WordSpacing float64
	LineHeight  layout.LineHeightSpec
	// Marker 非空时在与对齐方式匹配的一端画点标记。
	Marker *MarkerStyle
}

// Annotation 把词元序列排版到数据坐标上的水平区间内。
type Annotation struct {
	plot *layout.Plot
}

// New 创建依附于 plot 的标注器。
func New(p *layout.Plot) *Annotation {
	return &Annotation{plot: p}
}

// Draw 在数据坐标区间 [x0, x1]、锚点 y 处排版一条标注并加入场景。
// y 的含义由 VAlign 决定：top 为文本顶、center 为中心、bottom 为文本底。
func (a *Annotation) Draw(tokens []layout.Token, x0, x1, y float64, opts Options) (*layout.TextBox, error) {
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}
	align, err := layout.ParseAlign(opts.Align)
	if err != nil {
		return nil, err
	}
	valign, err := layout.ParseVAlign(opts.VAlign)
	if err != nil {
		return nil, err
	}

	axes := a.plot.Axes
	span := layout.Span{X0: axes.X(x0 + opts.Pad), X1: axes.X(x1 - opts.Pad)}
	spacing := 0.0
	if opts.WordSpacing > 0 {
		spacing = axes.DX(opts.WordSpacing)
	}
	yMM := axes.Y(y)

	tb, err := layout.Flow(tokens, span, yMM, a.plot.Measurer(), layout.FlowOptions{
		Align:       align,
		VAlign:      valign,
		Style:       opts.Style.Merge(a.plot.Style()),
		WordSpacing: spacing,
		LineHeight:  opts.LineHeight,
	})
	if err != nil {
		return nil, err
	}
	a.plot.Figure.AddText(tb)

	if opts.Marker != nil {
		a.drawMarker(tb, span, align, yMM, opts.Marker)
	}
	return tb, nil
}

// Remove 从场景撤销一条已绘制的标注，配合试排测量使用。
func (a *Annotation) Remove(tb *layout.TextBox) {
	a.plot.Figure.RemoveText(tb)
}

// drawMarker 在区间上与对齐方式匹配的一端画点：左对齐在左端外侧、
// 右对齐在右端外侧、居中时位于区间中点。
func (a *Annotation) drawMarker(tb *layout.TextBox, span layout.Span, align layout.Align, yMM float64, m *MarkerStyle) {
	size := m.Size
	if size <= 0 {
		size = 8
	}
	r := math.Sqrt(size) * layout.PtToMm / 2

	var cx float64
	switch align {
	case layout.AlignRight, layout.AlignJustifyEnd:
		cx = span.X1 + 2*r
	case layout.AlignCenter, layout.AlignJustifyCenter:
		cx = (span.X0 + span.X1) / 2
	default:
		cx = span.X0 - 2*r
	}

	c := tb.Color
	if m.Color != nil {
		c = *m.Color
	}
	a.plot.Figure.Circles = append(a.plot.Figure.Circles, layout.Circle{
		CX:          cx,
		CY:          yMM,
		R:           r,
		StrokeColor: c,
		FillColor:   &c,
	})
}
