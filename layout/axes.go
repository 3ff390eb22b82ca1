package layout

import (
	"errors"
	"fmt"
)

// Axes 将数据坐标映射到图面上的显示区域。
// 显示区域以毫米描述（原点左上），数据 y 轴向上，映射时翻转。
type Axes struct {
	XMin, XMax float64
	YMin, YMax float64

	// 显示区域（mm）。
	Left, Top    float64
	DispW, DispH float64
}

var ErrAxesRange = errors.New("layout: 坐标范围上下界不能相同")

// NewAxes 创建覆盖给定显示区域的坐标系，数据范围默认为 [0,1]×[0,1]。
func NewAxes(left, top, width, height float64) *Axes {
	return &Axes{
		XMin: 0, XMax: 1,
		YMin: 0, YMax: 1,
		Left: left, Top: top,
		DispW: width, DispH: height,
	}
}

// SetXLim 设置数据 x 范围。
func (a *Axes) SetXLim(lo, hi float64) error {
	if lo == hi {
		return fmt.Errorf("%w：x=[%v, %v]", ErrAxesRange, lo, hi)
	}
	a.XMin, a.XMax = lo, hi
	return nil
}

// SetYLim 设置数据 y 范围。
func (a *Axes) SetYLim(lo, hi float64) error {
	if lo == hi {
		return fmt.Errorf("%w：y=[%v, %v]", ErrAxesRange, lo, hi)
	}
	a.YMin, a.YMax = lo, hi
	return nil
}

// X 把数据 x 坐标换算为显示坐标（mm）。
func (a *Axes) X(x float64) float64 {
	return a.Left + (x-a.XMin)/(a.XMax-a.XMin)*a.DispW
}

// Y 把数据 y 坐标换算为显示坐标（mm），数据 y 向上而显示 y 向下。
func (a *Axes) Y(y float64) float64 {
	return a.Top + (a.YMax-y)/(a.YMax-a.YMin)*a.DispH
}

// Point 把数据点换算为显示点。
func (a *Axes) Point(p Point) Point {
	return Point{X: a.X(p.X), Y: a.Y(p.Y)}
}

// DX 把数据宽度换算为显示宽度（mm）。
func (a *Axes) DX(w float64) float64 { return w / (a.XMax - a.XMin) * a.DispW }

// DY 把数据高度换算为显示高度（mm）。
func (a *Axes) DY(h float64) float64 { return h / (a.YMax - a.YMin) * a.DispH }

// InvX 把显示 x 坐标换算回数据坐标。
func (a *Axes) InvX(mm float64) float64 {
	return a.XMin + (mm-a.Left)/a.DispW*(a.XMax-a.XMin)
}

// InvY 把显示 y 坐标换算回数据坐标。
func (a *Axes) InvY(mm float64) float64 {
	return a.YMax - (mm-a.Top)/a.DispH*(a.YMax-a.YMin)
}

// InvDX 把显示宽度换算回数据宽度。
func (a *Axes) InvDX(mm float64) float64 { return mm / a.DispW * (a.XMax - a.XMin) }

// InvDY 把显示高度换算回数据高度。
func (a *Axes) InvDY(mm float64) float64 { return mm / a.DispH * (a.YMax - a.YMin) }

// Aspect 返回纵横比校正系数：y 方向每数据单位的显示长度与 x 方向之比。
// 等数据范围下等于显示区域的高宽比。
func (a *Axes) Aspect() float64 {
	return (a.DispH / (a.YMax - a.YMin)) / (a.DispW / (a.XMax - a.XMin))
}
