// Package series 绘制时间序列折线。序列不画图例，行尾直接标序列名，
// 名称之间自动分散；每个数据点可以附带点标记与文字点注。
package series

import (
	"errors"
	"fmt"
	"math"

	"github.com/ByLCY/scholia/annotation"
	"github.com/ByLCY/scholia/layout"
)

var (
	ErrLengthMismatch  = errors.New("series: x 与 y 坐标数量不相等")
	ErrEmptySeries     = errors.New("series: 序列至少需要一个点")
	ErrAnnotationCount = errors.New("series: 点注数量必须与坐标点数量相等")
)

// 折线缺省线宽（mm）。
const defaultLineWidth = 0.5

// palette 给未指定颜色的序列轮流取色。
var palette = []layout.Color{
	{R: 31, G: 119, B: 180},
	{R: 255, G: 127, B: 14},
	{R: 44, G: 160, B: 44},
	{R: 214, G: 39, B: 40},
	{R: 148, G: 103, B: 189},
	{R: 140, G: 86, B: 75},
	{R: 227, G: 119, B: 194},
	{R: 127, G: 127, B: 127},
	{R: 188, G: 189, B: 34},
	{R: 23, G: 190, B: 207},
}

// PointAnnotation 描述某个数据点上的点注；Text 为空的点被跳过。
type PointAnnotation struct {
	Text string
	// Style 叠加在 DrawOptions.AnnotationStyle 之上。
	Style layout.TextStyle
	// Marker 覆盖该点的标记样式。
	Marker *annotation.MarkerStyle
	// Align / VAlign 为空时按点在坐标系中的位置自动选择。
	Align  string
	VAlign string
}

// DrawOptions 控制一次序列绘制。
type DrawOptions struct {
	// Label 行尾序列名，空时不画。
	Label      string
	LabelStyle layout.TextStyle
	// Color 折线颜色，为空时按调色板轮换。
	Color     *layout.Color
	LineWidth float64 // mm，零值取 0.5
	// Annotations 与坐标点一一对应；提供时长度必须等于点数。
	Annotations []PointAnnotation
	// Marker 点注标记的公共样式，颜色缺省继承折线。
	Marker annotation.MarkerStyle
	// AnnotationStyle 点注文字的公共样式，颜色缺省继承折线。
	AnnotationStyle layout.TextStyle
	// WordSpacing 点注词间距（数据 x 单位），零值取 x 范围的 1/250。
	WordSpacing float64
}

// Drawn 汇总一次序列绘制的产物。
type Drawn struct {
	Line        layout.Polyline
	Label       *layout.TextBox
	Annotations []*layout.TextBox
}

// Series 在图面上绘制时间序列；同一实例的多次绘制共享行尾标签的
// 分散排布与调色板轮换。
type Series struct {
	plot     *layout.Plot
	ann      *annotation.Annotation
	arranger annotation.Arranger
	labels   []*layout.TextBox
	cycle    int
}

// New 创建依附于 plot 的序列绘制器。
func New(p *layout.Plot) *Series {
	return &Series{plot: p, ann: annotation.New(p)}
}

// Draw 绘制一条折线，并按需要画行尾标签与点注。
func (s *Series) Draw(x, y []float64, opts DrawOptions) (*Drawn, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w：%d 个 x 对 %d 个 y", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) == 0 {
		return nil, ErrEmptySeries
	}
	if len(opts.Annotations) > 0 && len(opts.Annotations) != len(x) {
		return nil, fmt.Errorf("%w：%d 条点注对 %d 个点", ErrAnnotationCount, len(opts.Annotations), len(x))
	}

	axes := s.plot.Axes
	color := s.nextColor(opts.Color)
	width := opts.LineWidth
	if width <= 0 {
		width = defaultLineWidth
	}

	pts := make([]layout.Point, len(x))
	for i := range x {
		pts[i] = axes.Point(layout.Point{X: x[i], Y: y[i]})
	}
	line := layout.Polyline{Points: pts, Color: color, Width: width}
	s.plot.Figure.Polylines = append(s.plot.Figure.Polylines, line)

	drawn := &Drawn{Line: line}

	if opts.Label != "" {
		label, err := s.drawLabel(opts.Label, x[len(x)-1], y[len(y)-1], color, opts.LabelStyle)
		if err != nil {
			return nil, err
		}
		s.labels = append(s.labels, label)
		s.arranger.Arrange(s.labels)
		drawn.Label = label
	}

	for i, a := range opts.Annotations {
		if a.Text == "" {
			continue
		}
		tb, err := s.drawAnnotation(x[i], y[i], a, opts, color)
		if err != nil {
			return nil, fmt.Errorf("第 %d 个点注失败: %w", i, err)
		}
		drawn.Annotations = append(drawn.Annotations, tb)
	}
	return drawn, nil
}

// nextColor 处理调色板轮换；显式颜色不推进轮换位置。
func (s *Series) nextColor(c *layout.Color) layout.Color {
	if c != nil {
		return *c
	}
	color := palette[s.cycle%len(palette)]
	s.cycle++
	return color
}

// drawLabel 在线末右侧画序列名。名称不折行，垂直居中于最后一点。
func (s *Series) drawLabel(text string, x, y float64, lineColor layout.Color, style layout.TextStyle) (*layout.TextBox, error) {
	merged := style.Merge(s.plot.Style())
	w, h, err := s.plot.TextExtent(text, style)
	if err != nil {
		return nil, fmt.Errorf("测量序列名 %q 失败: %w", text, err)
	}
	color := lineColor
	if style.Color != nil {
		color = *style.Color
	}

	axes := s.plot.Axes
	x0 := axes.X(x * 1.01)
	y0 := axes.Y(y) - h/2
	box := &layout.TextBox{
		X:         x0,
		Y:         y0,
		Width:     w,
		Height:    h,
		Font:      merged.Font,
		FontSize:  merged.Size.ToMM(),
		Color:     color,
		LineCount: 1,
		Tokens: []layout.PlacedToken{{
			Text:   text,
			X:      x0,
			Y:      y0,
			Width:  w,
			Height: h,
		}},
	}
	s.plot.Figure.AddText(box)
	return box, nil
}

// drawAnnotation 画一个数据点的标记与点注。点注落在点的内侧：
// 靠近左缘的点写在右边，靠近顶部的点写在下面。
func (s *Series) drawAnnotation(x, y float64, a PointAnnotation, opts DrawOptions, lineColor layout.Color) (*layout.TextBox, error) {
	axes := s.plot.Axes
	s.drawMarker(x, y, a, opts, lineColor)

	xr := math.Abs(axes.XMax - axes.XMin)
	yr := math.Abs(axes.YMax - axes.YMin)
	xPad, yPad := xr*0.01, yr*0.01

	align := a.Align
	if align == "" {
		align = s.bestAlign(x)
	}
	var x0, x1 float64
	switch align {
	case "left":
		x0, x1 = x+xPad, x+xr*0.15
	case "right":
		x0, x1 = x-xr*0.15, x-xPad
	case "center":
		x0, x1 = x-xr*0.15/2, x+xr*0.15/2
	default:
		return nil, fmt.Errorf("%w：%q", layout.ErrUnknownAlign, align)
	}

	valign := a.VAlign
	if valign == "" {
		valign = s.bestVAlign(y)
	}
	switch valign {
	case "top":
		y -= yPad
	case "bottom":
		y += yPad
	default:
		return nil, fmt.Errorf("%w：%q", layout.ErrUnknownAlign, valign)
	}

	ws := opts.WordSpacing
	if ws <= 0 {
		ws = xr / 250
	}
	style := a.Style.Merge(opts.AnnotationStyle)
	if style.Color == nil {
		style.Color = &lineColor
	}
	return s.ann.Draw(layout.Tokenize(a.Text), x0, x1, y, annotation.Options{
		Align:       align,
		VAlign:      valign,
		Style:       style,
		WordSpacing: ws,
	})
}

// drawMarker 在数据点上画实心圆点。
func (s *Series) drawMarker(x, y float64, a PointAnnotation, opts DrawOptions, lineColor layout.Color) {
	m := opts.Marker
	if a.Marker != nil {
		m = *a.Marker
	}
	size := m.Size
	if size <= 0 {
		size = 8
	}
	color := lineColor
	if m.Color != nil {
		color = *m.Color
	}
	s.plot.Figure.Circles = append(s.plot.Figure.Circles, layout.Circle{
		CX:          s.plot.Axes.X(x),
		CY:          s.plot.Axes.Y(y),
		R:           math.Sqrt(size) * layout.PtToMm / 2,
		StrokeColor: color,
		FillColor:   &color,
	})
}

// bestAlign 按点在 x 范围内的位置选择点注方向：
// 离左缘一成以内写在右边，否则写在左边。
func (s *Series) bestAlign(x float64) string {
	axes := s.plot.Axes
	if (x-axes.XMin)/(axes.XMax-axes.XMin) <= 0.1 {
		return "left"
	}
	return "right"
}

// bestVAlign 按点在 y 范围内的位置选择点注上下：
// 离顶部一成以内写在下面，否则写在上面。
func (s *Series) bestVAlign(y float64) string {
	axes := s.plot.Axes
	if (y-axes.YMin)/(axes.YMax-axes.YMin) >= 0.9 {
		return "top"
	}
	return "bottom"
}
