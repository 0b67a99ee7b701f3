package ui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderMapASCIIMarker(t *testing.T) {
	out := renderMapASCII(nil, 16, 6, 5, 2, false)
	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 16 {
			t.Errorf("line %d width = %d", i, w)
		}
	}
	if got := []rune(lines[2])[5]; got != plainMarkerRune {
		t.Errorf("marker cell = %q, want %q", got, plainMarkerRune)
	}
	if strings.Count(out, string(plainMarkerRune)) != 1 {
		t.Errorf("marker drawn more than once:\n%s", out)
	}
}

func TestRenderImageASCIISize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 128, 255})
		}
	}
	lines := strings.Split(renderImageASCII(img, 20, 8, false), "\n")
	if len(lines) != 8 {
		t.Fatalf("lines = %d, want 8", len(lines))
	}
	if w := lipgloss.Width(lines[0]); w != 20 {
		t.Errorf("width = %d, want 20", w)
	}

	if got := renderImageASCII(nil, 3, 2, false); got != emptyGrid(3, 2) {
		t.Errorf("nil image = %q", got)
	}
}

func TestDetectTerminalCapabilities(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	if !DetectTerminalCapabilities().Color {
		t.Error("xterm without NO_COLOR should be colored")
	}
	t.Setenv("NO_COLOR", "1")
	if DetectTerminalCapabilities().Color {
		t.Error("NO_COLOR ignored")
	}
}
