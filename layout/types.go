package layout

// 该文件定义图面场景与基础图形描述，供布局计算、渲染与调试 JSON 共用。
// 场景内所有坐标与尺寸均以毫米为单位，原点位于图面左上角。

// Figure 保存一次绘制会话累计的全部场景元素。
// 文本框以指针存放：标签分散等后处理需要在绘制后整体平移文本框。
type Figure struct {
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	Texts     []*TextBox   `json:"texts"`
	Lines     []Line       `json:"lines,omitempty"`
	Polylines []Polyline   `json:"polylines,omitempty"`
	Polygons  []Polygon    `json:"polygons,omitempty"`
	Rects     []Rect       `json:"rects,omitempty"`
	Circles   []Circle     `json:"circles,omitempty"`
	Meta      DocumentMeta `json:"meta"`
}

// AddText 把文本框追加到场景中并返回它本身。
func (f *Figure) AddText(tb *TextBox) *TextBox {
	f.Texts = append(f.Texts, tb)
	return tb
}

// RemoveText 按指针身份从场景移除文本框，用于试排后撤销。
func (f *Figure) RemoveText(tb *TextBox) {
	for i, t := range f.Texts {
		if t == tb {
			f.Texts = append(f.Texts[:i], f.Texts[i+1:]...)
			return
		}
	}
}

// Point 表示一个二维坐标。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 表示一个已经排好坐标的文本块，词元坐标为绝对值。
// Rotation 为绕文本块包围盒中心的旋转角（度，逆时针为正）。
type TextBox struct {
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Rotation float64       `json:"rotation,omitempty"`
	Font     string        `json:"font"`
	FontSize float64       `json:"fontSize"`
	Color    Color         `json:"color"`
	Tokens   []PlacedToken `json:"tokens"`
	// LineCount 记录折行后的行数，便于调用方按行高推算排版占位。
	LineCount int `json:"lineCount"`
}

// PlacedToken 是排版后的单个词元，覆盖字段为空时继承所在 TextBox 的设置。
type PlacedToken struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Line     int     `json:"line"`
	Font     string  `json:"font,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Color    *Color  `json:"color,omitempty"`
	Label    string  `json:"label,omitempty"`
}

// Translate 将文本块与其全部词元整体平移。
func (tb *TextBox) Translate(dx, dy float64) {
	tb.X += dx
	tb.Y += dy
	for i := range tb.Tokens {
		tb.Tokens[i].X += dx
		tb.Tokens[i].Y += dy
	}
}

// BBox 返回全部词元的包围盒 (x0, y0, x1, y1)；没有词元时退化为锚点。
func (tb *TextBox) BBox() (float64, float64, float64, float64) {
	if len(tb.Tokens) == 0 {
		return tb.X, tb.Y, tb.X, tb.Y
	}
	x0, y0 := tb.Tokens[0].X, tb.Tokens[0].Y
	x1, y1 := x0+tb.Tokens[0].Width, y0+tb.Tokens[0].Height
	for _, t := range tb.Tokens[1:] {
		if t.X < x0 {
			x0 = t.X
		}
		if t.Y < y0 {
			y0 = t.Y
		}
		if t.X+t.Width > x1 {
			x1 = t.X + t.Width
		}
		if t.Y+t.Height > y1 {
			y1 = t.Y + t.Height
		}
	}
	return x0, y0, x1, y1
}

// Center 返回包围盒中心点。
func (tb *TextBox) Center() Point {
	x0, y0, x1, y1 := tb.BBox()
	return Point{X: (x0 + x1) / 2, Y: (y0 + y1) / 2}
}

// 基本图形：直线、折线、多边形、矩形、圆形（单位均为 mm）。
// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
}

// Polyline 表示依次连接的折线。
type Polyline struct {
	Points []Point `json:"points"`
	Color  Color   `json:"color"`
	Width  float64 `json:"width"`
}

// Polygon 表示闭合多边形，FillColor 为空时仅描边。
type Polygon struct {
	Points      []Point `json:"points"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   *Color  `json:"fillColor,omitempty"`
}

// Rect 表示一个矩形（不包含圆角）。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"` // mm
	FillColor   *Color  `json:"fillColor,omitempty"`
}

// Circle 表示一个圆。
type Circle struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	R           float64 `json:"r"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"` // mm
	FillColor   *Color  `json:"fillColor,omitempty"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
