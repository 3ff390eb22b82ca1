package graph

import (
	"math"

	"github.com/ByLCY/scholia/layout"
)

// 几何辅助在数据坐标上工作。显示设备的像素不是正方形的（图面宽高与
// 数据范围宽高通常不成比例），涉及视觉角度的量都要经过纵横比校正。

// Distance 返回两点的欧氏距离。
func Distance(u, v layout.Point) float64 {
	return math.Hypot(v.X-u.X, v.Y-u.Y)
}

// Direction 返回 u 指向 v 的单位向量，两点重合时返回零向量。
func Direction(u, v layout.Point) layout.Point {
	d := Distance(u, v)
	if d == 0 {
		return layout.Point{}
	}
	return layout.Point{X: (v.X - u.X) / d, Y: (v.Y - u.Y) / d}
}

// Angle 返回从位置向量 u 转到位置向量 v 的角度（弧度）。
func Angle(u, v layout.Point) float64 {
	return math.Atan2(v.Y, v.X) - math.Atan2(u.Y, u.X)
}

// Elevation 返回连线的视觉仰角（弧度），y 差先按纵横比校正。
// 两点重合为 0；x 相等为 +π/2；交换端点结果不变。
func Elevation(u, v layout.Point, aspect float64) float64 {
	dx := v.X - u.X
	dy := v.Y - u.Y
	if dx == 0 {
		if dy == 0 {
			return 0
		}
		return math.Pi / 2
	}
	return math.Atan(dy * aspect / dx)
}

// MarkerRadius 把散点标记面积（pt²）换算为数据坐标下的横纵半径。
// 标记按直径 sqrt(size) pt 渲染，横纵半径因数据范围不同而不同。
func MarkerRadius(axes *layout.Axes, size float64) (rx, ry float64) {
	d := math.Sqrt(size) * layout.PtToMm
	return axes.InvDX(d / 2), axes.InvDY(d / 2)
}

// markerRadiusMM 返回标记在图面上的半径（mm）。
func markerRadiusMM(size float64) float64 {
	return math.Sqrt(size) * layout.PtToMm / 2
}
