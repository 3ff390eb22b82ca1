package annotation

import (
	"errors"
	"fmt"

	"github.com/ByLCY/scholia/layout"
)

var (
	ErrPadRange   = errors.New("annotation: 边距比例必须位于 [0, 1) 区间")
	ErrPadOverlap = errors.New("annotation: 左右边距之和必须小于 1")
)

// BlockOptions 控制整块文本的排版。
type BlockOptions struct {
	// LPad/RPad 为数据范围宽度的比例边距，TPad 为显示区高度的比例边距。
	LPad, RPad, TPad float64
	Align            string
	Style            layout.TextStyle
	// WordSpacing 词间距（数据 x 单位），零值由测量推导。
	WordSpacing float64
	LineHeight  layout.LineHeightSpec
	// WithLabels 为带标签的词元在其首个所在行左侧绘制行首标签。
	WithLabels bool
	// NoTighten 保留越出图面左上边界的内容，不将其回拉到可见区域。
	NoTighten bool
}

// Drawn 汇总一次整块文本绘制的产物。
type Drawn struct {
	Text   *layout.TextBox
	Labels []*layout.TextBox
}

// Block 把整段文本作为一幅图绘制：文本铺满去除边距后的横向区间，
// 绘制结束后图面高度收缩到正文下缘加一个行高。
type Block struct {
	plot *layout.Plot
}

// NewBlock 创建依附于 plot 的整块文本绘制器。
func NewBlock(p *layout.Plot) *Block {
	return &Block{plot: p}
}

// Draw 排版整块文本并按选项绘制行首标签。
func (b *Block) Draw(tokens []layout.Token, opts BlockOptions) (*Drawn, error) {
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}
	for _, pad := range []float64{opts.LPad, opts.RPad, opts.TPad} {
		if pad < 0 || pad >= 1 {
			return nil, fmt.Errorf("%w：%v", ErrPadRange, pad)
		}
	}
	if opts.LPad+opts.RPad >= 1 {
		return nil, fmt.Errorf("%w：lpad=%v rpad=%v", ErrPadOverlap, opts.LPad, opts.RPad)
	}
	align, err := layout.ParseAlign(opts.Align)
	if err != nil {
		return nil, err
	}

	axes := b.plot.Axes
	xr := axes.XMax - axes.XMin
	span := layout.Span{
		X0: axes.X(axes.XMin + opts.LPad*xr),
		X1: axes.X(axes.XMax - opts.RPad*xr),
	}
	y0 := axes.Top + opts.TPad*axes.DispH

	style := opts.Style.Merge(b.plot.Style())
	spacing := axes.DX(opts.WordSpacing)
	if spacing <= 0 {
		// 与排版使用同一默认词距，行首标签的偏移也基于它。
		emw, _, err := b.plot.TextExtent("—", style)
		if err != nil {
			return nil, fmt.Errorf("推导词间距失败: %w", err)
		}
		spacing = emw / 4
	}

	tb, err := layout.Flow(tokens, span, y0, b.plot.Measurer(), layout.FlowOptions{
		Align:       align,
		VAlign:      layout.VAlignTop,
		Style:       style,
		WordSpacing: spacing,
		LineHeight:  opts.LineHeight,
	})
	if err != nil {
		return nil, err
	}
	b.plot.Figure.AddText(tb)

	drawn := &Drawn{Text: tb}
	if opts.WithLabels {
		labels, err := b.drawLineLabels(tb, span.X0, spacing)
		if err != nil {
			return nil, err
		}
		drawn.Labels = labels
	}

	if !opts.NoTighten {
		tighten(drawn)
	}
	b.fitHeight(drawn)
	return drawn, nil
}

// drawLineLabels 为每个标签在其首次出现的行左侧画一个右对齐的标签，
// 颜色继承词元的有效颜色。
func (b *Block) drawLineLabels(tb *layout.TextBox, x0, spacing float64) ([]*layout.TextBox, error) {
	seen := make(map[string]bool)
	var labels []*layout.TextBox
	for _, pt := range tb.Tokens {
		if pt.Label == "" || seen[pt.Label] {
			continue
		}
		seen[pt.Label] = true

		w, h, err := b.plot.Measurer().TextExtent(pt.Label, tb.Font, tb.FontSize)
		if err != nil {
			return nil, fmt.Errorf("测量行首标签 %q 失败: %w", pt.Label, err)
		}
		color := tb.Color
		if pt.Color != nil {
			color = *pt.Color
		}
		end := x0 - 4*spacing
		box := &layout.TextBox{
			X:         end - w,
			Y:         pt.Y,
			Width:     w,
			Height:    h,
			Font:      tb.Font,
			FontSize:  tb.FontSize,
			Color:     color,
			LineCount: 1,
			Tokens: []layout.PlacedToken{{
				Text:   pt.Label,
				X:      end - w,
				Y:      pt.Y,
				Width:  w,
				Height: h,
			}},
		}
		b.plot.Figure.AddText(box)
		labels = append(labels, box)
	}
	return labels, nil
}

// tighten 当内容越出图面左上边界时整体平移回可见区域。
func tighten(d *Drawn) {
	minX, minY, _, _ := d.Text.BBox()
	for _, lbl := range d.Labels {
		lx, ly, _, _ := lbl.BBox()
		if lx < minX {
			minX = lx
		}
		if ly < minY {
			minY = ly
		}
	}
	dx, dy := 0.0, 0.0
	if minX < 0 {
		dx = -minX
	}
	if minY < 0 {
		dy = -minY
	}
	if dx == 0 && dy == 0 {
		return
	}
	d.Text.Translate(dx, dy)
	for _, lbl := range d.Labels {
		lbl.Translate(dx, dy)
	}
}

// fitHeight 把图面高度收缩到正文下缘加一个行高，并同步坐标系显示区。
func (b *Block) fitHeight(d *Drawn) {
	if d.Text.LineCount == 0 {
		return
	}
	ls := d.Text.Height / float64(d.Text.LineCount)
	maxY := d.Text.Y + d.Text.Height
	for _, lbl := range d.Labels {
		_, _, _, y1 := lbl.BBox()
		if y1 > maxY {
			maxY = y1
		}
	}

	fig := b.plot.Figure
	axes := b.plot.Axes
	bottom := fig.Height - axes.Top - axes.DispH
	fig.Height = maxY + ls
	axes.DispH = fig.Height - axes.Top - bottom
}
