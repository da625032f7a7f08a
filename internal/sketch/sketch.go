// Package sketch renders the freehand mission sketch: a fixed-size raster
// surface with round-capped strokes over an optional background reference
// image. The output is a single flattened snapshot; individual strokes are
// not editable after the fact, only a full clear.
package sketch

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
)

// Default stroke geometry, matching the field tool's pen.
const defaultStrokeWidth = 3.0

var white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// Point is a position in canvas-local pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Canvas is the drawing surface. It is not safe for concurrent use.
type Canvas struct {
	img         *image.RGBA
	strokeColor color.RGBA
	strokeWidth float64
	last        Point
	drawing     bool
}

// New creates a blank white canvas of the given size.
func New(width, height int) *Canvas {
	c := &Canvas{
		strokeColor: color.RGBA{A: 0xFF}, // black
		strokeWidth: defaultStrokeWidth,
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	c.fill(white)
	return c
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// SetColor selects the stroke color from a "#rrggbb" hex string.
func (c *Canvas) SetColor(hex string) error {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return fmt.Errorf("invalid color %q: %w", hex, err)
	}
	c.strokeColor = color.RGBA{R: r, G: g, B: b, A: 0xFF}
	return nil
}

// SetStrokeWidth sets the pen width in pixels; values below 1 are clamped.
func (c *Canvas) SetStrokeWidth(w float64) {
	if w < 1 {
		w = 1
	}
	c.strokeWidth = w
}

// SetBackground repaints the surface with the reference image as its base
// layer: scaled to fit within the canvas preserving aspect ratio, centered
// over white. Strokes drawn afterwards sit on top.
func (c *Canvas) SetBackground(bg image.Image) {
	c.fill(white)

	cb := c.img.Bounds()
	ib := bg.Bounds()
	if ib.Dx() == 0 || ib.Dy() == 0 {
		return
	}

	scale := math.Min(
		float64(cb.Dx())/float64(ib.Dx()),
		float64(cb.Dy())/float64(ib.Dy()),
	)
	w := int(math.Round(float64(ib.Dx()) * scale))
	h := int(math.Round(float64(ib.Dy()) * scale))
	x0 := (cb.Dx() - w) / 2
	y0 := (cb.Dy() - h) / 2

	target := image.Rect(x0, y0, x0+w, y0+h)
	xdraw.ApproxBiLinear.Scale(c.img, target, bg, ib, xdraw.Over, nil)
}

// Begin starts a stroke at the pointer position.
func (c *Canvas) Begin(p Point) {
	c.drawing = true
	c.last = p
	c.stamp(p)
}

// LineTo extends the active stroke to the pointer position with a
// round-capped segment. A no-op when no stroke is active.
func (c *Canvas) LineTo(p Point) {
	if !c.drawing {
		return
	}
	c.segment(c.last, p)
	c.last = p
}

// End finishes the active stroke (pointer-up or pointer-leave).
func (c *Canvas) End() {
	c.drawing = false
}

// DrawPath renders one complete stroke.
func (c *Canvas) DrawPath(points []Point) {
	if len(points) == 0 {
		return
	}
	c.Begin(points[0])
	for _, p := range points[1:] {
		c.LineTo(p)
	}
	c.End()
}

// Clear restores a blank white surface, discarding the background image and
// anything drawn so far.
func (c *Canvas) Clear() {
	c.drawing = false
	c.fill(white)
}

// Snapshot flattens the surface to a PNG image.
func (c *Canvas) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeImage decodes an uploaded background reference image (PNG, JPEG or
// GIF).
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Normalize maps client coordinates to canvas-local coordinates given the
// on-screen bounds of the surface, so touch and pointer input land on the
// same pixels regardless of how the element is scaled.
func Normalize(clientX, clientY, rectX, rectY, rectW, rectH float64, canvasW, canvasH int) Point {
	if rectW <= 0 || rectH <= 0 {
		return Point{}
	}
	return Point{
		X: (clientX - rectX) * float64(canvasW) / rectW,
		Y: (clientY - rectY) * float64(canvasH) / rectH,
	}
}

func (c *Canvas) fill(col color.RGBA) {
	b := c.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c.img.SetRGBA(x, y, col)
		}
	}
}

// segment draws a round-capped line by stamping the pen along it.
func (c *Canvas) segment(from, to Point) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		c.stamp(to)
		return
	}

	step := c.strokeWidth / 4
	if step < 0.5 {
		step = 0.5
	}
	steps := int(math.Ceil(dist / step))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.stamp(Point{X: from.X + dx*t, Y: from.Y + dy*t})
	}
}

// stamp paints a filled disc of the pen radius at p.
func (c *Canvas) stamp(p Point) {
	r := c.strokeWidth / 2
	minX := int(math.Floor(p.X - r))
	maxX := int(math.Ceil(p.X + r))
	minY := int(math.Floor(p.Y - r))
	maxY := int(math.Ceil(p.Y + r))

	b := c.img.Bounds()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
				continue
			}
			cx := float64(x) + 0.5 - p.X
			cy := float64(y) + 0.5 - p.Y
			if cx*cx+cy*cy <= r*r {
				c.img.SetRGBA(x, y, c.strokeColor)
			}
		}
	}
}
