package graph

import (
	"errors"
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"
)

var ErrBadAdjacency = errors.New("graph: 邻接矩阵必须是非空方阵")

// SpringLayout 用力导向迭代生成结点位置。相同种子产生相同布局。
type SpringLayout struct {
	// Iterations 迭代轮数，零值取 50。
	Iterations int
	// K 理想边长，零值取 1/sqrt(n)。
	K float64
	// Seed 随机种子，决定初始位置。
	Seed int64
	// Logger 输出迭代过程，nil 时静默。
	Logger *log.Logger
}

// Positions 求邻接矩阵 adj 对应的结点位置，返回 n×2 矩阵，
// 坐标缩放到 [-1, 1]。
func (s SpringLayout) Positions(adj *mat.Dense) (*mat.Dense, error) {
	if adj == nil {
		return nil, ErrBadAdjacency
	}
	n, c := adj.Dims()
	if n == 0 || n != c {
		return nil, ErrBadAdjacency
	}

	logger := s.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	iters := s.Iterations
	if iters <= 0 {
		iters = 50
	}
	k := s.K
	if k <= 0 {
		k = 1 / math.Sqrt(float64(n))
	}

	rng := rand.New(rand.NewSource(s.Seed))
	pos := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		pos.Set(i, 0, rng.Float64())
		pos.Set(i, 1, rng.Float64())
	}

	temp := 0.1
	cool := temp / float64(iters+1)
	disp := mat.NewDense(n, 2, nil)
	for it := 0; it < iters; it++ {
		disp.Zero()
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := pos.At(i, 0) - pos.At(j, 0)
				dy := pos.At(i, 1) - pos.At(j, 1)
				// 重合结点给最小间距，避免除零
				d := math.Max(math.Hypot(dx, dy), 0.01)
				ux, uy := dx/d, dy/d

				f := k * k / d
				disp.Set(i, 0, disp.At(i, 0)+ux*f)
				disp.Set(i, 1, disp.At(i, 1)+uy*f)
				disp.Set(j, 0, disp.At(j, 0)-ux*f)
				disp.Set(j, 1, disp.At(j, 1)-uy*f)

				if adj.At(i, j) != 0 || adj.At(j, i) != 0 {
					f := d * d / k
					disp.Set(i, 0, disp.At(i, 0)-ux*f)
					disp.Set(i, 1, disp.At(i, 1)-uy*f)
					disp.Set(j, 0, disp.At(j, 0)+ux*f)
					disp.Set(j, 1, disp.At(j, 1)+uy*f)
				}
			}
		}
		for i := 0; i < n; i++ {
			dx, dy := disp.At(i, 0), disp.At(i, 1)
			length := math.Hypot(dx, dy)
			if length == 0 {
				continue
			}
			step := math.Min(length, temp)
			pos.Set(i, 0, pos.At(i, 0)+dx/length*step)
			pos.Set(i, 1, pos.At(i, 1)+dy/length*step)
		}
		temp -= cool
		if (it+1)%10 == 0 {
			logger.Debug("弹簧布局迭代",
				"iteration", it+1,
				"temperature", temp,
			)
		}
	}

	rescale(pos)
	return pos, nil
}

// rescale 平移到质心并缩放，使坐标落在 [-1, 1]。
func rescale(pos *mat.Dense) {
	n, _ := pos.Dims()
	var cx, cy float64
	for i := 0; i < n; i++ {
		cx += pos.At(i, 0)
		cy += pos.At(i, 1)
	}
	cx /= float64(n)
	cy /= float64(n)

	var scale float64
	for i := 0; i < n; i++ {
		pos.Set(i, 0, pos.At(i, 0)-cx)
		pos.Set(i, 1, pos.At(i, 1)-cy)
		scale = math.Max(scale, math.Abs(pos.At(i, 0)))
		scale = math.Max(scale, math.Abs(pos.At(i, 1)))
	}
	if scale == 0 {
		return
	}
	for i := 0; i < n; i++ {
		pos.Set(i, 0, pos.At(i, 0)/scale)
		pos.Set(i, 1, pos.At(i, 1)/scale)
	}
}
