package graph

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// pathAdjacency 构造 n 个结点的链式邻接矩阵。
func pathAdjacency(n int) *mat.Dense {
	adj := mat.NewDense(n, n, nil)
	for i := 0; i < n-1; i++ {
		adj.Set(i, i+1, 1)
		adj.Set(i+1, i, 1)
	}
	return adj
}

func TestSpringDeterministic(t *testing.T) {
	adj := pathAdjacency(4)
	a, err := SpringLayout{Seed: 7}.Positions(adj)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	b, err := SpringLayout{Seed: 7}.Positions(adj)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if !mat.Equal(a, b) {
		t.Fatalf("相同种子应产生相同布局")
	}

	c, err := SpringLayout{Seed: 8}.Positions(adj)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if mat.Equal(a, c) {
		t.Fatalf("不同种子不应产生相同布局")
	}
}

func TestSpringBounds(t *testing.T) {
	pos, err := SpringLayout{}.Positions(pathAdjacency(5))
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	r, c := pos.Dims()
	if r != 5 || c != 2 {
		t.Fatalf("输出期望 5×2，实际 %d×%d", r, c)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := pos.At(i, j); math.Abs(v) > 1+1e-9 {
				t.Fatalf("坐标 (%d,%d)=%g 超出 [-1,1]", i, j, v)
			}
		}
	}
}

func TestSpringRepulsionSeparates(t *testing.T) {
	// 两个无连接的结点被斥力推开
	pos, err := SpringLayout{}.Positions(mat.NewDense(2, 2, nil))
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	d := math.Hypot(pos.At(0, 0)-pos.At(1, 0), pos.At(0, 1)-pos.At(1, 1))
	if d < 1 {
		t.Fatalf("孤立结点间距期望至少 1，实际 %g", d)
	}
}

func TestSpringSingleNode(t *testing.T) {
	pos, err := SpringLayout{}.Positions(mat.NewDense(1, 1, nil))
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if pos.At(0, 0) != 0 || pos.At(0, 1) != 0 {
		t.Fatalf("单结点应落在原点，实际 (%g, %g)", pos.At(0, 0), pos.At(0, 1))
	}
}

func TestSpringErrors(t *testing.T) {
	if _, err := (SpringLayout{}).Positions(nil); !errors.Is(err, ErrBadAdjacency) {
		t.Fatalf("nil 矩阵期望 ErrBadAdjacency，实际 %v", err)
	}
	if _, err := (SpringLayout{}).Positions(mat.NewDense(2, 3, nil)); !errors.Is(err, ErrBadAdjacency) {
		t.Fatalf("非方阵期望 ErrBadAdjacency，实际 %v", err)
	}
}
