// Package canvasrenderer 基于 github.com/tdewolff/canvas 把图面场景渲染为
// PDF，同时作为 layout.Measurer 给排版提供文本测量。
package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/scholia/fonts"
	"github.com/ByLCY/scholia/layout"
	"github.com/ByLCY/scholia/renderer"
)

// 未指定线宽时的描边宽度（mm）。
const defaultStrokeWidth = 0.2

// Renderer 通过 tdewolff/canvas 绘制图面场景。
// 同一实例可先作为 Measurer 参与排版，再渲染排版结果，字体面共享缓存。
type Renderer struct {
	logger *log.Logger

	// 用户注册的字体数据，按名称覆盖内置字体。
	fontBlobs map[string][]byte

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Option 配置渲染器的可选行为。
type Option func(*Renderer)

// WithLogger 输出渲染过程，nil 时静默。
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFontBytes 按名称注册字体数据，优先于同名内置字体。
func WithFontBytes(name string, data []byte) Option {
	return func(r *Renderer) {
		if name != "" && len(data) > 0 {
			r.fontBlobs[fontKey(name)] = data
		}
	}
}

// New 创建 canvas 渲染器。
func New(opts ...Option) *Renderer {
	r := &Renderer{
		logger:       log.NewWithOptions(io.Discard, log.Options{}),
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render 把图面渲染为 PDF 字节。形状先画、文本后画，
// 文本按词元绘制，带旋转的文本框绕其包围盒中心旋转。
func (r *Renderer) Render(fig *layout.Figure) ([]byte, error) {
	if fig == nil {
		return nil, fmt.Errorf("渲染图面为空")
	}
	if fig.Width <= 0 || fig.Height <= 0 {
		return nil, fmt.Errorf("图面尺寸必须为正数：%.4g×%.4gmm", fig.Width, fig.Height)
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, fig.Width, fig.Height, nil)
	r.applyMeta(writer, fig.Meta)

	c := canvas.New(fig.Width, fig.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	r.drawLines(ctx, fig.Lines)
	r.drawPolylines(ctx, fig.Polylines)
	r.drawPolygons(ctx, fig.Polygons)
	r.drawRects(ctx, fig.Rects)
	r.drawCircles(ctx, fig.Circles)
	for _, tb := range fig.Texts {
		if err := r.drawTextBox(ctx, tb); err != nil {
			return nil, err
		}
	}

	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	r.logger.Debug("渲染完成",
		"texts", len(fig.Texts),
		"shapes", len(fig.Lines)+len(fig.Polylines)+len(fig.Polygons)+len(fig.Rects)+len(fig.Circles),
		"bytes", buf.Len(),
	)
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// TextExtent 实现 layout.Measurer。
// 约定：入参与返回值均为毫米；与字体系统交互使用 pt，在边界做 mm↔pt 换算。
func (r *Renderer) TextExtent(text, font string, fontSize float64) (width, height float64, err error) {
	face, err := r.fontFace(font, toPt(fontSize), layout.Color{})
	if err != nil {
		return 0, 0, err
	}
	return face.TextWidth(text), face.Metrics().LineHeight, nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb *layout.TextBox) error {
	if tb == nil || len(tb.Tokens) == 0 {
		return nil
	}

	if tb.Rotation != 0 {
		x0, y0, x1, y1 := tb.BBox()
		ctx.Push()
		// 布局的旋转角以逆时针为正；坐标系 y 向下，故此处取负。
		ctx.ComposeView(canvas.Identity.RotateAbout(-tb.Rotation, (x0+x1)/2, (y0+y1)/2))
		defer ctx.Pop()
	}

	for _, pt := range tb.Tokens {
		font := tb.Font
		if pt.Font != "" {
			font = pt.Font
		}
		size := tb.FontSize
		if pt.FontSize > 0 {
			size = pt.FontSize
		}
		col := tb.Color
		if pt.Color != nil {
			col = *pt.Color
		}

		face, err := r.fontFace(font, toPt(size), col)
		if err != nil {
			return err
		}
		line := canvas.NewTextLine(face, pt.Text, canvas.Left)
		// 基线位置：词元顶部（mm）加上字体上升部
		baseline := pt.Y + face.Metrics().Ascent
		ctx.DrawText(pt.X, baseline, line)
	}
	return nil
}

// drawLines 绘制线段列表（毫米单位）。
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetFillColor(color.RGBA{})
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(w)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ln.X1, ln.Y1, p)
	}
}

// drawPolylines 绘制折线，只描边不填充。
func (r *Renderer) drawPolylines(ctx *canvas.Context, polylines []layout.Polyline) {
	for _, pl := range polylines {
		if len(pl.Points) < 2 {
			continue
		}
		w := pl.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetFillColor(color.RGBA{})
		ctx.SetStrokeColor(colorFromLayout(pl.Color))
		ctx.SetStrokeWidth(w)
		origin := pl.Points[0]
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		for _, pt := range pl.Points[1:] {
			p.LineTo(pt.X-origin.X, pt.Y-origin.Y)
		}
		ctx.DrawPath(origin.X, origin.Y, p)
	}
}

// drawPolygons 绘制闭合多边形。
func (r *Renderer) drawPolygons(ctx *canvas.Context, polygons []layout.Polygon) {
	for _, pg := range polygons {
		if len(pg.Points) < 3 {
			continue
		}
		w := pg.StrokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		if pg.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*pg.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{})
		}
		ctx.SetStrokeColor(colorFromLayout(pg.StrokeColor))
		ctx.SetStrokeWidth(w)
		origin := pg.Points[0]
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		for _, pt := range pg.Points[1:] {
			p.LineTo(pt.X-origin.X, pt.Y-origin.Y)
		}
		p.Close()
		ctx.DrawPath(origin.X, origin.Y, p)
	}
}

// drawRects 绘制矩形。
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		w := rc.StrokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		if rc.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*rc.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{})
		}
		ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		ctx.SetStrokeWidth(w)
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
}

// drawCircles 绘制圆形。
func (r *Renderer) drawCircles(ctx *canvas.Context, circles []layout.Circle) {
	for _, c := range circles {
		w := c.StrokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		if c.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*c.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{})
		}
		ctx.SetStrokeColor(colorFromLayout(c.StrokeColor))
		ctx.SetStrokeWidth(w)
		ctx.DrawPath(c.CX-c.R, c.CY-c.R, canvas.Circle(c.R))
	}
}

func (r *Renderer) fontFace(name string, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(name)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), style, canvas.FontNormal), nil
}

// ensureFontFamily 按名称解析字体：用户注册的数据优先，其次内置字体，
// 都没有时回退到内置 regular。
func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontKey(name)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(key)
	data, ok := r.fontBlobs[key]
	if !ok {
		var err error
		data, err = fonts.Load(key)
		if err != nil {
			r.logger.Debug("字体未收录，回退到内置 regular", "font", name)
			fallback, fbErr := r.fallback()
			if fbErr != nil {
				return nil, canvas.FontRegular, fbErr
			}
			r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
			return fallback, canvas.FontRegular, nil
		}
	}

	family := canvas.NewFontFamily(key)
	if err := family.LoadFont(data, 0, style); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	data, err := fonts.Load("regular")
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("scholia-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

func fontKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "regular"
	}
	return key
}

func parseFontStyle(name string) canvas.FontStyle {
	s := strings.ToLower(name)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
