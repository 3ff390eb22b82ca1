package binding

import "testing"

type point struct {
	X, Y float64
}

type sample struct {
	Name   string
	Points []point
	Tags   map[string]string
}

// TestInterpolateMapPath 验证多级 map 路径替换。
func TestInterpolateMapPath(t *testing.T) {
	data := map[string]any{
		"series": map[string]any{
			"name": "收盘价",
			"last": 42.50,
		},
	}
	got := Interpolate("最新 ${series.name}: ${series.last}", data)
	if got != "最新 收盘价: 42.5" {
		t.Fatalf("替换结果错误: %q", got)
	}
}

// TestInterpolateIndex 验证下标与字段的组合路径，含类型化切片。
func TestInterpolateIndex(t *testing.T) {
	data := map[string]any{
		"values": []float64{1.5, 2.25, 3},
		"rows":   []any{map[string]any{"id": 7}},
	}
	if got := Interpolate("${values[1]}", data); got != "2.25" {
		t.Fatalf("类型化切片下标错误: %q", got)
	}
	if got := Interpolate("${rows[0].id}", data); got != "7" {
		t.Fatalf("组合路径错误: %q", got)
	}
}

// TestInterpolateStruct 验证结构体字段与嵌套切片的下钻。
func TestInterpolateStruct(t *testing.T) {
	s := sample{
		Name:   "alpha",
		Points: []point{{X: 1, Y: 2}, {X: 3, Y: 4.5}},
		Tags:   map[string]string{"unit": "mm"},
	}
	if got := Interpolate("${Name}/${Points[1].Y}${Tags.unit}", &s); got != "alpha/4.5mm" {
		t.Fatalf("结构体路径错误: %q", got)
	}
}

// TestInterpolateMiss 验证无法解析的路径保留原占位符。
func TestInterpolateMiss(t *testing.T) {
	data := map[string]any{"a": []any{1}}
	cases := []string{
		"${missing}",
		"${a[5]}",
		"${a[x]}",
		"${a.b}",
		"${}",
	}
	for _, c := range cases {
		if got := Interpolate(c, data); got != c {
			t.Fatalf("未命中路径应保留占位符: %q -> %q", c, got)
		}
	}
}

// TestInterpolateNilData 验证空数据时原样返回。
func TestInterpolateNilData(t *testing.T) {
	text := "hello ${world}"
	if got := Interpolate(text, nil); got != text {
		t.Fatalf("空数据应原样返回: %q", got)
	}
}
