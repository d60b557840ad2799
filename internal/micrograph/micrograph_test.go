package micrograph

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 120, 80))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Width() != 120 || m.Height() != 80 {
		t.Errorf("dimensions = %dx%d, want 120x80", m.Width(), m.Height())
	}
	if m.Name() != "sample.png" {
		t.Errorf("Name = %q, want sample.png", m.Name())
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDisplaySize(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		wantW, wantH int
	}{
		{"wide image downscales to the cap", 2000, 1500, 900, 675},
		{"narrow image displays 1:1", 640, 480, 640, 480},
		{"exactly at the cap", 900, 450, 900, 450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Micrograph{Image: image.NewRGBA(image.Rect(0, 0, tt.srcW, tt.srcH))}
			w, h := m.DisplaySize(MaxDisplayWidth)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("DisplaySize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestScaleFactors(t *testing.T) {
	m := &Micrograph{Image: image.NewRGBA(image.Rect(0, 0, 2000, 1500))}
	w, h := m.DisplaySize(MaxDisplayWidth)
	sx, sy := m.ScaleFactors(w, h)
	if math.Abs(sx-2000.0/900.0) > 1e-9 {
		t.Errorf("scaleX = %v, want %v", sx, 2000.0/900.0)
	}
	if math.Abs(sy-1500.0/675.0) > 1e-9 {
		t.Errorf("scaleY = %v, want %v", sy, 1500.0/675.0)
	}
}

func TestIsSupportedFormat(t *testing.T) {
	for _, path := range []string{"a.png", "b.JPG", "c.jpeg", "d.tif", "e.TIFF"} {
		if !IsSupportedFormat(path) {
			t.Errorf("IsSupportedFormat(%q) = false, want true", path)
		}
	}
	for _, path := range []string{"a.bmp", "b.gif", "c.txt", "noext"} {
		if IsSupportedFormat(path) {
			t.Errorf("IsSupportedFormat(%q) = true, want false", path)
		}
	}
}
