package colors

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestName(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    string
	}{
		{0, 0, 0, "black"},
		{40, 45, 30, "black"},
		{255, 255, 255, "white"},
		{210, 220, 230, "white"},
		{200, 60, 60, "red"},
		{60, 180, 60, "green"},
		{60, 60, 180, "blue"},
		{180, 180, 60, "yellow"},
		{180, 60, 180, "magenta"},
		{60, 180, 180, "cyan"},
		{120, 120, 120, "gray"},
	}
	for _, tt := range tests {
		if got := name(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("name(%d, %d, %d) = %q, want %q", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func writePNG(t *testing.T, path string, fill func(x, y int) color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			img.SetRGBA(x, y, fill(x, y))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestDominantRanksByCoverage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "split.png")
	// Three quarters red, one quarter blue.
	writePNG(t, path, func(x, y int) color.RGBA {
		if x < 32 && y < 64 {
			return color.RGBA{60, 60, 180, 255}
		}
		return color.RGBA{200, 60, 60, 255}
	})

	got, err := Dominant(path)
	if err != nil {
		t.Fatalf("Dominant: %v", err)
	}
	want := []string{"red", "blue"}
	if len(got) != len(want) {
		t.Fatalf("Dominant = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Dominant = %v, want %v", got, want)
		}
	}
}

func TestDominantCapsAtFive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bands.png")
	bands := []color.RGBA{
		{0, 0, 0, 255},       // black
		{255, 255, 255, 255}, // white
		{200, 60, 60, 255},   // red
		{60, 180, 60, 255},   // green
		{60, 60, 180, 255},   // blue
		{180, 180, 60, 255},  // yellow
		{120, 120, 120, 255}, // gray
	}
	writePNG(t, path, func(x, y int) color.RGBA {
		return bands[(y*len(bands))/128]
	})

	got, err := Dominant(path)
	if err != nil {
		t.Fatalf("Dominant: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("Dominant returned %d colors, want 5: %v", len(got), got)
	}
}

func TestDominantRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Dominant(path); err == nil {
		t.Fatal("expected decode error for non-image file")
	}
}
