package layout

import (
	"errors"
	"fmt"
)

// Plot 组合图面、坐标系与文本测量后端，是各可视化模块的宿主。
// 所有绘制都会把场景元素累计到 Figure 上，由渲染器一次性输出。
type Plot struct {
	Figure *Figure
	Axes   *Axes

	measurer Measurer
	style    TextStyle
}

var ErrFigureSize = errors.New("layout: 图面尺寸必须为正数")

// PlotOption 配置 Plot 的可选行为。
type PlotOption func(*Plot)

// WithStyle 设置全局默认文本样式。
func WithStyle(s TextStyle) PlotOption {
	return func(p *Plot) { p.style = s }
}

// WithAxesMargin 在图面四周留出边距，坐标系只覆盖剩余区域。
func WithAxesMargin(m Margin) PlotOption {
	return func(p *Plot) {
		p.Axes.Left = m.Left
		p.Axes.Top = m.Top
		p.Axes.DispW = p.Figure.Width - m.Left - m.Right
		p.Axes.DispH = p.Figure.Height - m.Top - m.Bottom
	}
}

// WithMeta 设置输出文件的元信息。
func WithMeta(meta DocumentMeta) PlotOption {
	return func(p *Plot) { p.Figure.Meta = meta }
}

// NewPlot 创建指定尺寸的绘图宿主；width/height 为零值时默认 10×7.5 英寸。
func NewPlot(width, height Length, m Measurer, opts ...PlotOption) (*Plot, error) {
	if m == nil {
		return nil, ErrNilMeasurer
	}
	if width.IsZero() {
		width = In(10)
	}
	if height.IsZero() {
		height = In(7.5)
	}
	w := width.ToMM()
	h := height.ToMM()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w：%.4g×%.4gmm", ErrFigureSize, w, h)
	}

	p := &Plot{
		Figure: &Figure{
			Width:  w,
			Height: h,
			Meta:   DocumentMeta{Creator: "Scholia"},
		},
		measurer: m,
	}
	p.Axes = NewAxes(0, 0, w, h)
	for _, opt := range opts {
		opt(p)
	}
	p.style = p.style.withDefaults()
	return p, nil
}

// Measurer 返回文本测量后端。
func (p *Plot) Measurer() Measurer { return p.measurer }

// Style 返回全局默认文本样式。
func (p *Plot) Style() TextStyle { return p.style }

// TextExtent 按合并后的样式测量文本尺寸（mm）。
func (p *Plot) TextExtent(text string, style TextStyle) (float64, float64, error) {
	s := style.Merge(p.style)
	return p.measurer.TextExtent(text, s.Font, s.Size.ToMM())
}
