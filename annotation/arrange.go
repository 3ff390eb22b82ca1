package annotation

import (
	"math"
	"sort"

	"github.com/ByLCY/scholia/layout"
)

// Arranger 垂直分散相互重叠的文本框：按包围盒重叠关系分组，组内围绕
// 组包围盒的纵向中点上下堆叠，迭代直至无重叠或达到次数上限。
// 图结点名与时间序列的行尾标签共用这一机制。
type Arranger struct {
	MaxIterations int     // 零值取 10
	Pad           float64 // 参与重叠判定与堆叠的包围盒外扩（mm）
}

// Arrange 原地平移 boxes 消除垂直重叠，返回实际执行的迭代轮数。
func (a Arranger) Arrange(boxes []*layout.TextBox) int {
	maxIter := a.MaxIterations
	if maxIter <= 0 {
		maxIter = 10
	}
	for iter := 0; iter < maxIter; iter++ {
		if !a.spreadOnce(boxes) {
			return iter
		}
	}
	return maxIter
}

// spreadOnce 执行一轮分组堆叠，返回本轮是否发现过重叠。
func (a Arranger) spreadOnce(boxes []*layout.TextBox) bool {
	n := len(boxes)
	if n < 2 {
		return false
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	overlapped := false
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if a.overlap(boxes[i], boxes[j]) {
				parent[find(i)] = find(j)
				overlapped = true
			}
		}
	}
	if !overlapped {
		return false
	}

	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := find(i)
		groups[root] = append(groups[root], i)
	}
	for _, members := range groups {
		if len(members) >= 2 {
			a.stack(boxes, members)
		}
	}
	return true
}

// overlap 判断两个外扩后的包围盒是否严格相交，边缘相触不算重叠。
func (a Arranger) overlap(p, q *layout.TextBox) bool {
	px0, py0, px1, py1 := padBBox(p, a.Pad)
	qx0, qy0, qx1, qy1 := padBBox(q, a.Pad)
	return px0 < qx1 && qx0 < px1 && py0 < qy1 && qy0 < py1
}

func padBBox(tb *layout.TextBox, p float64) (float64, float64, float64, float64) {
	x0, y0, x1, y1 := tb.BBox()
	return x0 - p, y0 - p, x1 + p, y1 + p
}

// stack 以组包围盒的纵向中点为轴，按中心自上而下的次序重新堆叠组内文本框。
func (a Arranger) stack(boxes []*layout.TextBox, members []int) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	total := 0.0
	for _, i := range members {
		_, y0, _, y1 := padBBox(boxes[i], a.Pad)
		if y0 < minY {
			minY = y0
		}
		if y1 > maxY {
			maxY = y1
		}
		total += y1 - y0
	}
	middle := (minY + maxY) / 2

	sort.SliceStable(members, func(i, j int) bool {
		return boxes[members[i]].Center().Y < boxes[members[j]].Center().Y
	})

	cursor := middle - total/2
	for _, i := range members {
		_, y0, _, y1 := padBBox(boxes[i], a.Pad)
		boxes[i].Translate(0, cursor-y0)
		cursor += y1 - y0
	}
}
