package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Measurer 负责测量给定字体与字号下文本的排版尺寸，由渲染后端实现。
// 入参与返回值均为毫米；实现内部与字体系统交互时自行做 mm↔pt 换算。
type Measurer interface {
	// TextExtent 返回 text 的宽度与行高（mm）。
	TextExtent(text string, font string, fontSize float64) (width, height float64, err error)
}

// TextStyle 描述一段文本的样式，零值字段表示继承默认值。
type TextStyle struct {
	Font  string // 字体名（fonts 包内置名称或渲染器注册名）
	Size  Length // 字号，零值继承
	Color *Color
	// WordSpacing 词间距（数据单位），零值时按字体 em 破折号宽度的四分之一推导。
	WordSpacing float64
}

// Merge 以 base 为底合并样式，s 中的非零字段优先。
func (s TextStyle) Merge(base TextStyle) TextStyle {
	out := base
	if s.Font != "" {
		out.Font = s.Font
	}
	if !s.Size.IsZero() {
		out.Size = s.Size
	}
	if s.Color != nil {
		out.Color = s.Color
	}
	if s.WordSpacing != 0 {
		out.WordSpacing = s.WordSpacing
	}
	return out
}

// 样式缺省值：12pt 深灰 regular。
func (s TextStyle) withDefaults() TextStyle {
	if s.Font == "" {
		s.Font = "regular"
	}
	if s.Size.IsZero() {
		s.Size = Pt(12)
	}
	if s.Color == nil {
		s.Color = &Color{R: 30, G: 30, B: 30}
	}
	return s
}

// ParseColor 解析 #RGB/#RRGGBB/#RRGGBBAA 形式的颜色值。
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{R: mustHex(r), G: mustHex(g), B: mustHex(b)}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}
