package tray

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"image/png"
	"runtime"
	"testing"

	"github.com/mrcode/nightscout-panel/internal/models"
)

func TestBadgeText(t *testing.T) {
	tests := []struct {
		label     string
		wantText  string
		wantTrend models.TrendDirection
	}{
		{"BG: 5.6 →", "5.6", models.TrendFlat},
		{"BG: 180 ↑↑", "180", models.TrendDoubleUp},
		{"BG: 7.2 ↓↓↓", "7.2", models.TrendTripleDown},
		{"BG: 7.2", "7.2", models.TrendUnknown},
		{"!Last 16 m ago!   BG: 5.6 ⬈", "5.6", models.TrendFortyFiveUp},
		{"BG: ?", "?", models.TrendUnknown},
		{"Loading...", placeholderText, models.TrendUnknown},
		{"", placeholderText, models.TrendUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			text, trend := badgeText(tt.label)
			if text != tt.wantText {
				t.Errorf("badgeText(%q) text = %q, want %q", tt.label, text, tt.wantText)
			}
			if trend != tt.wantTrend {
				t.Errorf("badgeText(%q) trend = %q, want %q", tt.label, trend, tt.wantTrend)
			}
		})
	}
}

func TestResolveColor(t *testing.T) {
	tests := []struct {
		name   string
		want   color.RGBA
		wantOK bool
	}{
		{"red", color.RGBA{R: 0xff, A: 0xff}, true},
		{"Yellow", color.RGBA{R: 0xff, G: 0xff, A: 0xff}, true},
		{"#ef4444", color.RGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}, true},
		{"#fff", color.RGBA{}, false},
		{"not-a-color", color.RGBA{}, false},
		{"", color.RGBA{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveColor(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("resolveColor(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("resolveColor(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestBackgroundColor(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		category models.ColorCategory
		color    string
		want     color.RGBA
	}{
		{"loading", "Loading...", models.CategoryNormal, "", unknownColor},
		{"normal", "BG: 5.6 →", models.CategoryNormal, "", normalColor},
		{"high", "BG: 11.2 ↑", models.CategoryHigh, "red", color.RGBA{R: 0xff, A: 0xff}},
		{"low unknown color", "BG: 3.1 ↓", models.CategoryLow, "sparkly", unknownColor},
		{"stale wins", "!Last 20 m ago!   BG: 11.2 ↑", models.CategoryHigh, "red", staleColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := backgroundColor(tt.label, tt.category, tt.color); got != tt.want {
				t.Errorf("backgroundColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	gen := NewIconGenerator()

	data := gen.Generate("BG: 5.6 →", models.CategoryNormal, "")
	if len(data) == 0 {
		t.Fatal("Expected icon data")
	}

	if runtime.GOOS == osWindows {
		if binary.LittleEndian.Uint16(data[2:4]) != 1 {
			t.Error("Expected ICO type header")
		}
		data = data[22:]
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Icon is not a valid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Errorf("Icon size = %dx%d, want %dx%d", b.Dx(), b.Dy(), iconSize, iconSize)
	}

	// The center of the badge carries the background color
	r, g, b, _ := img.At(4, iconSize/2).RGBA()
	if uint8(r>>8) != normalColor.R || uint8(g>>8) != normalColor.G || uint8(b>>8) != normalColor.B {
		t.Errorf("Unexpected background color %v", img.At(4, iconSize/2))
	}
}

func TestImageToICO(t *testing.T) {
	gen := NewIconGenerator()
	ico := imageToICO(gen.render("BG: 7 →", models.CategoryNormal, ""))

	if len(ico) < 22 {
		t.Fatalf("ICO too short: %d bytes", len(ico))
	}
	if got := binary.LittleEndian.Uint16(ico[4:6]); got != 1 {
		t.Errorf("Image count = %d, want 1", got)
	}
	if ico[6] != iconSize || ico[7] != iconSize {
		t.Errorf("ICO dimensions = %dx%d", ico[6], ico[7])
	}
	if got := binary.LittleEndian.Uint32(ico[18:22]); got != 22 {
		t.Errorf("Data offset = %d, want 22", got)
	}
	if _, err := png.Decode(bytes.NewReader(ico[22:])); err != nil {
		t.Errorf("Embedded PNG invalid: %v", err)
	}
}
