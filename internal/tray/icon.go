// Package tray shows the display state as a system tray label, tooltip and
// generated badge icon
package tray

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/mrcode/nightscout-panel/internal/models"
)

const (
	osWindows = "windows"

	iconSize   = 64
	iconRadius = 16

	placeholderText = "---"
	stalePrefix     = "!Last"
	valuePrefix     = "BG: "
)

var (
	normalColor  = color.RGBA{R: 0x4a, G: 0xde, B: 0x80, A: 0xff} // Green
	unknownColor = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	staleColor   = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
)

// IconGenerator renders the rounded badge shown as the tray icon
type IconGenerator struct {
	mu   sync.Mutex
	face font.Face
}

// NewIconGenerator creates a generator using the embedded Go font
func NewIconGenerator() *IconGenerator {
	return &IconGenerator{}
}

// Generate draws the value and trend from label on a background picked from
// the category and configured color. It returns ICO data on Windows and PNG
// elsewhere, or nil if encoding fails.
func (g *IconGenerator) Generate(label string, category models.ColorCategory, colorName string) []byte {
	img := g.render(label, category, colorName)

	if runtime.GOOS == osWindows {
		return imageToICO(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func (g *IconGenerator) render(label string, category models.ColorCategory, colorName string) image.Image {
	dc := gg.NewContext(iconSize, iconSize)

	// Transparent background
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()

	bg := backgroundColor(label, category, colorName)
	dc.SetColor(bg)
	dc.DrawRoundedRectangle(0, 0, iconSize, iconSize, iconRadius)
	dc.Fill()

	// Text color (black or white depending on brightness)
	brightness := (int(bg.R)*299 + int(bg.G)*587 + int(bg.B)*114) / 1000
	if brightness > 128 {
		dc.SetColor(color.Black)
	} else {
		dc.SetColor(color.White)
	}

	text, trend := badgeText(label)
	if face, err := g.fontFace(); err == nil {
		dc.SetFontFace(face)
		dc.DrawStringAnchored(text, iconSize/2, iconSize/2-12, 0.5, 0.5)
	}

	drawArrow(dc, iconSize/2, iconSize-16, 24, trend)

	return dc.Image()
}

func (g *IconGenerator) fontFace() (font.Face, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.face != nil {
		return g.face, nil
	}

	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	g.face = truetype.NewFace(parsed, &truetype.Options{Size: 34})
	return g.face, nil
}

// badgeText extracts the value and trend from a composed label such as
// "!Last 16 m ago!   BG: 5.6 →"
func badgeText(label string) (string, models.TrendDirection) {
	idx := strings.Index(label, valuePrefix)
	if idx < 0 {
		return placeholderText, models.TrendUnknown
	}

	fields := strings.Fields(label[idx+len(valuePrefix):])
	if len(fields) == 0 {
		return placeholderText, models.TrendUnknown
	}

	trend := models.TrendUnknown
	if len(fields) > 1 {
		trend = trendFromSymbol(fields[1])
	}
	return fields[0], trend
}

func trendFromSymbol(symbol string) models.TrendDirection {
	for _, d := range []models.TrendDirection{
		models.TrendFlat,
		models.TrendFortyFiveUp,
		models.TrendFortyFiveDown,
		models.TrendSingleUp,
		models.TrendSingleDown,
		models.TrendDoubleUp,
		models.TrendDoubleDown,
		models.TrendTripleUp,
		models.TrendTripleDown,
	} {
		if d.Symbol() == symbol {
			return d
		}
	}
	return models.TrendUnknown
}

// backgroundColor is gray while loading or stale, the configured color for
// High and Low, and green otherwise
func backgroundColor(label string, category models.ColorCategory, colorName string) color.RGBA {
	if !strings.Contains(label, valuePrefix) {
		return unknownColor
	}
	if strings.HasPrefix(label, stalePrefix) {
		return staleColor
	}
	if category == models.CategoryNormal {
		return normalColor
	}
	if c, ok := resolveColor(colorName); ok {
		return c
	}
	return unknownColor
}

// resolveColor accepts an SVG color name ("red", "Orange") or "#rrggbb"
func resolveColor(name string) (color.RGBA, bool) {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "#") {
		var r, g, b uint8
		if len(name) != 7 {
			return color.RGBA{}, false
		}
		if _, err := fmt.Sscanf(name, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return color.RGBA{}, false
		}
		return color.RGBA{R: r, G: g, B: b, A: 0xff}, true
	}

	c, ok := colornames.Map[strings.ToLower(name)]
	return c, ok
}

// drawArrow draws a vector arrow rotated to match the trend
func drawArrow(dc *gg.Context, x, y, size float64, trend models.TrendDirection) {
	var angle float64
	count := 1

	switch trend {
	case models.TrendSingleUp:
		angle = 0
	case models.TrendDoubleUp:
		count = 2
	case models.TrendTripleUp:
		count = 3
	case models.TrendFortyFiveUp:
		angle = 45
	case models.TrendFlat:
		angle = 90
	case models.TrendFortyFiveDown:
		angle = 135
	case models.TrendSingleDown:
		angle = 180
	case models.TrendDoubleDown:
		angle, count = 180, 2
	case models.TrendTripleDown:
		angle, count = 180, 3
	default:
		return
	}

	dc.Push()
	defer dc.Pop()

	dc.Translate(x, y)
	dc.Rotate(gg.Radians(angle))

	if count == 1 {
		drawSingleArrow(dc, 0, 0, size)
		return
	}

	// Stack smaller arrows along the shaft
	step := size / float64(count+1)
	for i := 0; i < count; i++ {
		oy := -size/2 + step*float64(i+1)
		drawSingleArrow(dc, 0, oy, size*0.8/float64(count)*1.5)
	}
}

func drawSingleArrow(dc *gg.Context, ox, oy, s float64) {
	w := s * 0.5

	dc.NewSubPath()
	dc.MoveTo(ox, oy-s/2)
	dc.LineTo(ox+w/2, oy)
	dc.LineTo(ox+w/6, oy)
	dc.LineTo(ox+w/6, oy+s/2)
	dc.LineTo(ox-w/6, oy+s/2)
	dc.LineTo(ox-w/6, oy)
	dc.LineTo(ox-w/2, oy)
	dc.ClosePath()
	dc.Fill()
}

// imageToICO wraps the PNG encoding of img in a single-entry ICO container
func imageToICO(img image.Image) []byte {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil
	}
	pngData := pngBuf.Bytes()

	var buf bytes.Buffer

	// ICONDIR: reserved, type 1 (icon), one image
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))

	// ICONDIRENTRY, where a dimension of 0 means 256
	bounds := img.Bounds()
	buf.WriteByte(icoDimension(bounds.Dx()))
	buf.WriteByte(icoDimension(bounds.Dy()))
	buf.WriteByte(0) // No palette
	buf.WriteByte(0) // Reserved
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // Color planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // Bits per pixel
	// #nosec G115 -- icon PNGs are tiny
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(22)) // 6 byte header + 16 byte entry

	buf.Write(pngData)
	return buf.Bytes()
}

func icoDimension(v int) byte {
	if v >= 256 {
		return 0
	}
	return byte(v)
}
