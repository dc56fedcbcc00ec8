package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestWritePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{R: 200, A: 255})

	path := filepath.Join(t.TempDir(), "out.png")
	if err := writePNG(path, img); err != nil {
		t.Fatalf("writePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if got.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v", got.Bounds())
	}
	if r, _, _, _ := got.At(2, 1).RGBA(); r>>8 != 200 {
		t.Errorf("pixel (2, 1) red = %d", r>>8)
	}
}

func TestWritePNGErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing directory", filepath.Join(t.TempDir(), "nope", "out.png")},
		{"directory", t.TempDir()},
	}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := writePNG(tt.path, img); err == nil {
				t.Error("writePNG succeeded")
			}
		})
	}
}
