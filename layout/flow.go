package layout

import (
	"errors"
	"fmt"
	"strings"
)

// 本文件实现贪婪折行：词元依序排入行内，词元整体移动、永不截断，
// 行宽上限为 span 宽度；对齐与两端对齐变体在折行完成后统一回填坐标。

// Align 表示文本的水平对齐方式。
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	AlignJustify
	AlignJustifyStart
	AlignJustifyCenter
	AlignJustifyEnd
)

// VAlign 表示文本块相对锚点 y 的垂直对齐方式。
type VAlign int

const (
	VAlignTop VAlign = iota
	VAlignCenter
	VAlignBottom
)

var (
	ErrNilMeasurer  = errors.New("layout: 缺少文本测量后端")
	ErrSpanWidth    = errors.New("layout: 可用行宽必须为正数")
	ErrUnknownAlign = errors.New("layout: 未知的对齐方式")
)

// ParseAlign 解析对齐方式名称，空字符串视为 left。
func ParseAlign(name string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "left", "start":
		return AlignLeft, nil
	case "center", "middle":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	case "justify":
		return AlignJustify, nil
	case "justify-start", "justify-left":
		return AlignJustifyStart, nil
	case "justify-center":
		return AlignJustifyCenter, nil
	case "justify-end", "justify-right":
		return AlignJustifyEnd, nil
	default:
		return 0, fmt.Errorf("%w：%q", ErrUnknownAlign, name)
	}
}

// ParseVAlign 解析垂直对齐名称，空字符串视为 top。
func ParseVAlign(name string) (VAlign, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "top":
		return VAlignTop, nil
	case "center", "middle":
		return VAlignCenter, nil
	case "bottom":
		return VAlignBottom, nil
	default:
		return 0, fmt.Errorf("%w：%q", ErrUnknownAlign, name)
	}
}

// Span 表示一段水平区间 [X0, X1]（mm）。
type Span struct {
	X0 float64
	X1 float64
}

func (s Span) Width() float64 { return s.X1 - s.X0 }

// FlowOptions 控制一次排版，零值字段采用默认策略。
type FlowOptions struct {
	Align  Align
	VAlign VAlign
	Style  TextStyle
	// WordSpacing 词间距（mm）；<=0 时取默认字体 em 破折号宽度的四分之一。
	WordSpacing float64
	// LineHeight 行高规格；未指定时为文本高度的 1.25 倍。
	LineHeight LineHeightSpec
}

type measuredToken struct {
	tok    Token
	style  TextStyle
	width  float64
	height float64
}

// Flow 以贪婪策略把词元排入 span 内的若干行并返回文本块。
// y 的含义由 VAlign 决定：top 时为块顶，center 为块中心，bottom 为块底。
func Flow(tokens []Token, span Span, y float64, m Measurer, opts FlowOptions) (*TextBox, error) {
	if m == nil {
		return nil, ErrNilMeasurer
	}
	width := span.Width()
	if width <= 0 {
		return nil, fmt.Errorf("%w：%.4gmm", ErrSpanWidth, width)
	}
	if err := validAlign(opts.Align); err != nil {
		return nil, err
	}

	base := opts.Style.withDefaults()
	baseSizeMM := base.Size.ToMM()

	// 词间距与行高都基于默认样式的度量推导。
	spacing := opts.WordSpacing
	if spacing <= 0 {
		emw, _, err := m.TextExtent("—", base.Font, baseSizeMM)
		if err != nil {
			return nil, fmt.Errorf("推导词间距失败: %w", err)
		}
		spacing = emw / 4
	}
	_, baseHeight, err := m.TextExtent("|", base.Font, baseSizeMM)
	if err != nil {
		return nil, fmt.Errorf("测量行高失败: %w", err)
	}
	lineHeight := resolveLineHeight(opts.LineHeight, baseHeight)

	measured, err := measureTokens(tokens, base, m)
	if err != nil {
		return nil, err
	}
	lines := wrapGreedy(measured, width, spacing)

	tb := &TextBox{
		X:         span.X0,
		Width:     width,
		Font:      base.Font,
		FontSize:  baseSizeMM,
		Color:     *base.Color,
		LineCount: len(lines),
	}
	tb.Height = float64(len(lines)) * lineHeight

	switch opts.VAlign {
	case VAlignCenter:
		tb.Y = y - tb.Height/2
	case VAlignBottom:
		tb.Y = y - tb.Height
	default:
		tb.Y = y
	}

	for i, line := range lines {
		lineTop := tb.Y + float64(i)*lineHeight
		x, gap := lineAnchor(line, span, spacing, opts.Align, i == len(lines)-1)
		for _, mt := range line {
			pt := PlacedToken{
				Text:   mt.tok.Text,
				X:      x,
				Y:      lineTop,
				Width:  mt.width,
				Height: mt.height,
				Line:   i,
				Label:  mt.tok.Label,
			}
			if mt.style.Font != base.Font {
				pt.Font = mt.style.Font
			}
			if mt.style.Size != base.Size {
				pt.FontSize = mt.style.Size.ToMM()
			}
			if mt.style.Color != nil && *mt.style.Color != *base.Color {
				c := *mt.style.Color
				pt.Color = &c
			}
			tb.Tokens = append(tb.Tokens, pt)
			x += mt.width + gap
		}
	}
	return tb, nil
}

func validAlign(a Align) error {
	if a < AlignLeft || a > AlignJustifyEnd {
		return fmt.Errorf("%w：%d", ErrUnknownAlign, int(a))
	}
	return nil
}

func measureTokens(tokens []Token, base TextStyle, m Measurer) ([]measuredToken, error) {
	out := make([]measuredToken, 0, len(tokens))
	for _, t := range tokens {
		style := base
		if t.Style != nil {
			style = t.Style.Merge(base)
		}
		w, h, err := m.TextExtent(t.Text, style.Font, style.Size.ToMM())
		if err != nil {
			return nil, fmt.Errorf("测量词元 %q 失败: %w", t.Text, err)
		}
		out = append(out, measuredToken{tok: t, style: style, width: w, height: h})
	}
	return out, nil
}

// wrapGreedy 依次填充行：放不下时换行；超宽词元独占一行。
func wrapGreedy(tokens []measuredToken, width, spacing float64) [][]measuredToken {
	var lines [][]measuredToken
	var cur []measuredToken
	curWidth := 0.0

	emit := func() {
		if len(cur) == 0 {
			return
		}
		lines = append(lines, cur)
		cur = nil
		curWidth = 0
	}

	for _, mt := range tokens {
		add := mt.width
		if len(cur) > 0 {
			add += spacing
		}
		if len(cur) > 0 && curWidth+add > width {
			emit()
			add = mt.width
		}
		cur = append(cur, mt)
		curWidth += add
	}
	emit()
	return lines
}

// lineAnchor 计算一行的起始 x 与词元间距。
// 两端对齐时除末行外把剩余空间摊进词距，使行宽恰好铺满 span；
// 末行（以及无法摊分的单词元行）按变体回退锚点：
// justify/justify-start 靠左、justify-center 居中、justify-end 靠右。
func lineAnchor(line []measuredToken, span Span, spacing float64, align Align, last bool) (float64, float64) {
	content := 0.0
	for _, mt := range line {
		content += mt.width
	}
	if len(line) > 1 {
		content += spacing * float64(len(line)-1)
	}
	free := span.Width() - content

	switch align {
	case AlignCenter:
		return span.X0 + free/2, spacing
	case AlignRight:
		return span.X0 + free, spacing
	case AlignJustify, AlignJustifyStart, AlignJustifyCenter, AlignJustifyEnd:
		if !last && len(line) > 1 {
			return span.X0, spacing + free/float64(len(line)-1)
		}
		switch align {
		case AlignJustifyCenter:
			return span.X0 + free/2, spacing
		case AlignJustifyEnd:
			return span.X0 + free, spacing
		default:
			return span.X0, spacing
		}
	default:
		return span.X0, spacing
	}
}

func resolveLineHeight(spec LineHeightSpec, textHeight float64) float64 {
	switch spec.Kind {
	case LineHeightAbsolute:
		if v := spec.Len.ToMM(); v > 0 {
			return v
		}
	case LineHeightFactor:
		if spec.Factor > 0 {
			return textHeight * spec.Factor
		}
	}
	return textHeight * 1.25
}
