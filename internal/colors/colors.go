// Package colors reduces an image to a ranked list of dominant basic color
// names. It is a fast approximation used to seed the visual analysis prompt,
// not a color science tool.
package colors

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sort"

	_ "golang.org/x/image/webp"
)

const (
	sampleSize = 64
	topColors  = 5
)

// Dominant decodes the image at path, downsamples it, and returns up to five
// basic color names ranked by pixel coverage.
func Dominant(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	stepX := bounds.Dx() / sampleSize
	if stepX < 1 {
		stepX = 1
	}
	stepY := bounds.Dy() / sampleSize
	if stepY < 1 {
		stepY = 1
	}

	counts := make(map[string]int)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			counts[name(uint8(r>>8), uint8(g>>8), uint8(b>>8))]++
		}
	}

	ranked := make([]string, 0, len(counts))
	for c := range counts {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > topColors {
		ranked = ranked[:topColors]
	}
	return ranked, nil
}

// name maps an RGB triple to a basic color name.
func name(r, g, b uint8) string {
	avg := (int(r) + int(g) + int(b)) / 3
	switch {
	case avg < 50:
		return "black"
	case avg > 200:
		return "white"
	case r > g && r > b:
		return "red"
	case g > r && g > b:
		return "green"
	case b > r && b > g:
		return "blue"
	case r > b && g > b:
		return "yellow"
	case r > g && b > g:
		return "magenta"
	case g > r && b > r:
		return "cyan"
	default:
		return "gray"
	}
}
