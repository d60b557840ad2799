package export

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DrawThickLine draws a line between two points using Bresenham's algorithm
// with a square brush.
func DrawThickLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawEllipseOutline draws an axis-aligned ellipse outline as a ring of the
// given stroke width, testing each pixel of the bounding box against the
// ellipse equation.
func DrawEllipseOutline(output *image.RGBA, cx, cy, rx, ry float64, col color.RGBA, stroke float64) {
	if rx <= 0 || ry <= 0 {
		return
	}
	bounds := output.Bounds()

	minX := int(cx - rx - stroke)
	maxX := int(cx + rx + stroke)
	minY := int(cy - ry - stroke)
	maxY := int(cy + ry + stroke)

	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			// On the ring when inside the outer ellipse but outside the
			// inner one.
			ox := (float64(x) - cx) / (rx + stroke)
			oy := (float64(y) - cy) / (ry + stroke)
			inner := 1.0
			if rx > stroke && ry > stroke {
				ix := (float64(x) - cx) / (rx - stroke)
				iy := (float64(y) - cy) / (ry - stroke)
				inner = ix*ix + iy*iy
			}
			if ox*ox+oy*oy <= 1 && inner >= 1 {
				output.Set(x, y, col)
			}
		}
	}
}

// NewFace builds a font face at the given pixel size for label rendering.
func NewFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

// DrawText renders text with its top-left corner at (x, y).
func DrawText(output *image.RGBA, face font.Face, text string, x, y float64, col color.RGBA) {
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  output,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(int(x), int(y)+ascent),
	}
	d.DrawString(text)
}
