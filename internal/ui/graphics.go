package ui

import (
	"image"
	"os"
	"strings"

	"github.com/qeesung/image2ascii/convert"
)

// TerminalCapabilities describes how artwork can be drawn in the terminal.
type TerminalCapabilities struct {
	Color bool
}

// DetectTerminalCapabilities inspects the environment for color support.
func DetectTerminalCapabilities() TerminalCapabilities {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return TerminalCapabilities{}
	}
	term := os.Getenv("TERM")
	return TerminalCapabilities{Color: term != "" && term != "dumb"}
}

const (
	markerRune      = '◉'
	plainMarkerRune = 'X'
)

// renderImageASCII converts an image to ASCII art of exactly width x height cells.
func renderImageASCII(img image.Image, width, height int, colored bool) string {
	if img == nil || width <= 0 || height <= 0 {
		return emptyGrid(width, height)
	}
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = width
	opts.FixedHeight = height
	opts.FitScreen = false
	opts.Colored = colored
	opts.Ratio = 0.5

	return strings.TrimRight(converter.Image2ASCIIString(img, &opts), "\n")
}

// renderMapASCII draws a map tile as plain ASCII with a marker at cell (fx, fy).
// A nil tile renders an empty grid so the marker is still placeable.
func renderMapASCII(tile image.Image, width, height, fx, fy int, colored bool) string {
	var lines []string
	if tile != nil {
		lines = strings.Split(renderImageASCII(tile, width, height, false), "\n")
	} else {
		lines = strings.Split(emptyGrid(width, height), "\n")
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	lines = lines[:height]

	marker := string(plainMarkerRune)
	if colored {
		marker = MarkerStyle.Render(string(markerRune))
	}
	for y, line := range lines {
		runes := []rune(line)
		for len(runes) < width {
			runes = append(runes, ' ')
		}
		runes = runes[:width]
		if y == fy && fx >= 0 && fx < width {
			lines[y] = string(runes[:fx]) + marker + string(runes[fx+1:])
			continue
		}
		lines[y] = string(runes)
	}
	return strings.Join(lines, "\n")
}

// emptyGrid is the placeholder drawn when no image is available.
func emptyGrid(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	rows := make([]string, height)
	for y := range rows {
		var b strings.Builder
		for x := 0; x < width; x++ {
			switch {
			case y%4 == 0 && x%8 == 0:
				b.WriteByte('+')
			case y%4 == 0:
				b.WriteByte('-')
			case x%8 == 0:
				b.WriteByte('|')
			default:
				b.WriteByte(' ')
			}
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}
