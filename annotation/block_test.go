package annotation

import (
	"errors"
	"testing"

	"github.com/ByLCY/scholia/layout"
)

var blockLineHeight = layout.LineHeightSpec{Kind: layout.LineHeightAbsolute, Len: layout.MM(6)}

// TestBlockDraw 验证边距换算与绘制后的图面高度收缩。
func TestBlockDraw(t *testing.T) {
	p := newTestPlot(t)
	blk := NewBlock(p)
	drawn, err := blk.Draw(layout.Tokenize("aa bb"), BlockOptions{
		LPad: 0.1, RPad: 0.1, TPad: 0.2,
		WordSpacing: 0.01,
		LineHeight:  blockLineHeight,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	tb := drawn.Text
	if !eq(tb.X, 10) || !eq(tb.Width, 80) || !eq(tb.Y, 10) {
		t.Fatalf("边距换算错误: x=%g w=%g y=%g", tb.X, tb.Width, tb.Y)
	}
	// 收缩后高度 = 正文下缘 16 + 一个行高 6
	if !eq(p.Figure.Height, 22) {
		t.Fatalf("图面高度未收缩: %g", p.Figure.Height)
	}
	if !eq(p.Axes.DispH, 22) {
		t.Fatalf("坐标系显示区未同步: %g", p.Axes.DispH)
	}
}

// TestBlockLabels 验证行首标签只画首次出现，且继承词元颜色。
func TestBlockLabels(t *testing.T) {
	p := newTestPlot(t)
	blk := NewBlock(p)
	red := layout.Color{R: 220}
	tokens := []layout.Token{
		{Text: "alpha", Label: "A"},
		{Text: "beta"},
		{Text: "gamma", Label: "A"},
		{Text: "delta", Label: "B", Style: &layout.TextStyle{Color: &red}},
	}
	drawn, err := blk.Draw(tokens, BlockOptions{
		LPad: 0.1, RPad: 0.1,
		WordSpacing: 0.01,
		LineHeight:  blockLineHeight,
		WithLabels:  true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	if len(drawn.Labels) != 2 {
		t.Fatalf("应绘制 2 个行首标签，实际 %d", len(drawn.Labels))
	}
	a, b := drawn.Labels[0], drawn.Labels[1]
	if a.Tokens[0].Text != "A" || b.Tokens[0].Text != "B" {
		t.Fatalf("标签内容错误: %q %q", a.Tokens[0].Text, b.Tokens[0].Text)
	}
	// 标签右缘位于正文左缘左侧 4 个词距处
	if !eq(a.X+a.Width, 10-4*1) {
		t.Fatalf("标签位置错误: %g", a.X+a.Width)
	}
	if b.Color != red {
		t.Fatalf("标签应继承词元颜色: %+v", b.Color)
	}
	if a.Color != (layout.Color{R: 30, G: 30, B: 30}) {
		t.Fatalf("无覆盖时标签用默认颜色: %+v", a.Color)
	}
}

// TestBlockTighten 验证越出左缘的标签把内容整体回拉。
func TestBlockTighten(t *testing.T) {
	p := newTestPlot(t)
	blk := NewBlock(p)
	tokens := []layout.Token{{Text: "alpha", Label: "A"}}
	drawn, err := blk.Draw(tokens, BlockOptions{
		LPad: 0.02, RPad: 0.1,
		WordSpacing: 0.01,
		LineHeight:  blockLineHeight,
		WithLabels:  true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	// 标签右缘原在 2−4=−2，宽 2，左缘 −4；回拉后贴齐 0
	x0, _, _, _ := drawn.Labels[0].BBox()
	if !eq(x0, 0) {
		t.Fatalf("回拉后标签左缘应为 0: %g", x0)
	}
	if !eq(drawn.Text.X, 6) {
		t.Fatalf("正文应随标签平移: %g", drawn.Text.X)
	}

	// NoTighten 保留越界位置
	p2 := newTestPlot(t)
	drawn2, err := NewBlock(p2).Draw(tokens, BlockOptions{
		LPad: 0.02, RPad: 0.1,
		WordSpacing: 0.01,
		LineHeight:  blockLineHeight,
		WithLabels:  true,
		NoTighten:   true,
	})
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	x0, _, _, _ = drawn2.Labels[0].BBox()
	if !eq(x0, -4) {
		t.Fatalf("NoTighten 时标签应保持越界位置: %g", x0)
	}
}

// TestBlockWidthBounds 验证不同边距与对齐下词元均落在排版区间内。
func TestBlockWidthBounds(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	cases := []struct {
		lpad, rpad float64
		align      string
		minLines   int
	}{
		{0, 0, "", 1},
		{0.05, 0.3, "", 2},
		{0.25, 0.25, "center", 2},
		{0.4, 0.1, "right", 2},
		{0.1, 0.2, "justify", 2},
	}
	for _, c := range cases {
		p := newTestPlot(t)
		drawn, err := NewBlock(p).Draw(layout.Tokenize(text), BlockOptions{
			LPad: c.lpad, RPad: c.rpad,
			Align:       c.align,
			WordSpacing: 0.01,
			LineHeight:  blockLineHeight,
		})
		if err != nil {
			t.Fatalf("lpad=%v rpad=%v 绘制失败: %v", c.lpad, c.rpad, err)
		}
		tb := drawn.Text
		x0, x1 := c.lpad*100, 100-c.rpad*100
		if !eq(tb.X, x0) || !eq(tb.Width, x1-x0) {
			t.Fatalf("lpad=%v rpad=%v 区间错误: x=%g w=%g", c.lpad, c.rpad, tb.X, tb.Width)
		}
		if tb.LineCount < c.minLines {
			t.Fatalf("lpad=%v rpad=%v 行数不足: %d", c.lpad, c.rpad, tb.LineCount)
		}
		right := make([]float64, tb.LineCount)
		for _, pt := range tb.Tokens {
			if pt.X < x0-1e-9 || pt.X+pt.Width > x1+1e-9 {
				t.Fatalf("lpad=%v rpad=%v 词元 %q 越界: [%g, %g]", c.lpad, c.rpad, pt.Text, pt.X, pt.X+pt.Width)
			}
			if edge := pt.X + pt.Width; edge > right[pt.Line] {
				right[pt.Line] = edge
			}
		}
		if c.align == "justify" {
			for i, edge := range right[:tb.LineCount-1] {
				if !eq(edge, x1) {
					t.Fatalf("两端对齐时第 %d 行右缘应铺满: %g != %g", i, edge, x1)
				}
			}
		}
	}
}

// TestBlockErrors 覆盖边距与词元校验。
func TestBlockErrors(t *testing.T) {
	p := newTestPlot(t)
	blk := NewBlock(p)
	tokens := layout.Tokenize("x")

	if _, err := blk.Draw(nil, BlockOptions{}); !errors.Is(err, ErrNoTokens) {
		t.Fatalf("空词元应报错，实际 %v", err)
	}
	if _, err := blk.Draw(tokens, BlockOptions{LPad: -0.1}); !errors.Is(err, ErrPadRange) {
		t.Fatalf("负边距应报错，实际 %v", err)
	}
	if _, err := blk.Draw(tokens, BlockOptions{TPad: 1}); !errors.Is(err, ErrPadRange) {
		t.Fatalf("边距为 1 应报错，实际 %v", err)
	}
	if _, err := blk.Draw(tokens, BlockOptions{LPad: 0.6, RPad: 0.5}); !errors.Is(err, ErrPadOverlap) {
		t.Fatalf("左右边距重叠应报错，实际 %v", err)
	}
	if _, err := blk.Draw(tokens, BlockOptions{Align: "diagonal"}); !errors.Is(err, layout.ErrUnknownAlign) {
		t.Fatalf("未知对齐应报错，实际 %v", err)
	}
}
