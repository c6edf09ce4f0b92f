package marker

import (
	"image"
	"math"
	"testing"

	"umascan/pkg/geometry"
)

// ringEdges draws a one-pixel edge ring of the given radius around (cx, cy).
func ringEdges(w, h int, cx, cy, radius float64) *image.Gray {
	edges := image.NewGray(image.Rect(0, 0, w, h))
	for i := 0; i < 720; i++ {
		angle := float64(i) * math.Pi / 360
		x := int(cx + radius*math.Cos(angle) + 0.5)
		y := int(cy + radius*math.Sin(angle) + 0.5)
		if x >= 0 && x < w && y >= 0 && y < h {
			edges.Pix[y*edges.Stride+x] = 255
		}
	}
	return edges
}

func TestLargestCircle_Deterministic(t *testing.T) {
	t.Parallel()

	a := Circle{Center: geometry.Point2D{X: 10, Y: 10}, Radius: 12}
	b := Circle{Center: geometry.Point2D{X: 40, Y: 10}, Radius: 18}
	c := Circle{Center: geometry.Point2D{X: 20, Y: 30}, Radius: 18}

	orders := [][]Circle{{a, b, c}, {c, b, a}, {b, c, a}, {c, a, b}}
	for _, circles := range orders {
		got := largestCircle(circles)
		// Largest radius wins; the radius-18 tie breaks on the smaller X.
		if got != c {
			t.Fatalf("largestCircle(%v) = %+v, want %+v", circles, got, c)
		}
	}
}

func TestClassifyCircle_FilledVsPlain(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	c := Circle{Center: geometry.Point2D{X: 36, Y: 36}, Radius: 20}

	// Inner ring at 55% of the radius: the filled glyph.
	filled := ringEdges(72, 72, 36, 36, 20*p.RingRatio)
	if got := ClassifyCircle(filled, c, p); got != GlyphFilled {
		t.Fatalf("want filled glyph, got %q", got)
	}

	// Only the outer boundary: the plain glyph.
	plain := ringEdges(72, 72, 36, 36, 20)
	if got := ClassifyCircle(plain, c, p); got != GlyphPlain {
		t.Fatalf("want plain glyph, got %q", got)
	}

	// Repeated runs agree.
	for i := 0; i < 3; i++ {
		if got := ClassifyCircle(filled, c, p); got != GlyphFilled {
			t.Fatalf("classification not deterministic on run %d: %q", i, got)
		}
	}
}

// fakeDetector serves canned circles and edges for pipeline tests.
type fakeDetector struct {
	circles []Circle
	edges   *image.Gray
}

func (f *fakeDetector) Detect(crop image.Image, p Params) ([]Circle, error) {
	return f.circles, nil
}

func (f *fakeDetector) Edges(crop image.Image, p Params) (*image.Gray, error) {
	if f.edges != nil {
		return f.edges, nil
	}
	b := crop.Bounds()
	return image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy())), nil
}

func TestFind_NoCircleMeansNoMarker(t *testing.T) {
	t.Parallel()

	src := image.NewGray(image.Rect(0, 0, 400, 100))
	rect := geometry.RectInt{X: 10, Y: 30, Width: 200, Height: 24}

	if _, found := Find(src, rect, &fakeDetector{}, DefaultParams()); found {
		t.Fatalf("no circles must mean no marker")
	}
}

func TestFind_LargestCircleClassified(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	src := image.NewGray(image.Rect(0, 0, 400, 100))
	rect := geometry.RectInt{X: 10, Y: 30, Width: 200, Height: 24}

	// Window is 72px wide starting at the text's right edge (x=210),
	// with an 8px margin above the text top: crop-local (30, 32).
	det := &fakeDetector{
		circles: []Circle{
			{Center: geometry.Point2D{X: 12, Y: 12}, Radius: 9},
			{Center: geometry.Point2D{X: 30, Y: 32}, Radius: 16},
		},
		edges: ringEdges(72, 40, 30, 32, 16*p.RingRatio),
	}

	glyph, found := Find(src, rect, det, p)
	if !found {
		t.Fatalf("expected a marker")
	}
	if glyph != GlyphFilled {
		t.Fatalf("want filled glyph, got %q", glyph)
	}
}

func TestFind_WindowOutsideImage(t *testing.T) {
	t.Parallel()

	src := image.NewGray(image.Rect(0, 0, 200, 100))
	rect := geometry.RectInt{X: 150, Y: 30, Width: 60, Height: 24} // right edge beyond image

	det := &fakeDetector{circles: []Circle{{Center: geometry.Point2D{X: 5, Y: 5}, Radius: 10}}}
	if _, found := Find(src, rect, det, DefaultParams()); found {
		t.Fatalf("window outside the image must mean no marker")
	}
}
