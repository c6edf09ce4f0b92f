// Package marker detects the circular rank-marker glyph rendered to the right
// of a skill name and classifies it as plain or filled.
package marker

import (
	"image"
	"image/color"
	"math"
	"sort"

	"umascan/pkg/geometry"

	"gonum.org/v1/gonum/stat"
)

// The two glyphs this detector knows. Anything else near a candidate is not
// classified.
const (
	GlyphPlain  = "○"
	GlyphFilled = "◎"
)

// Circle is one candidate circle reported by the geometric detector: center
// coordinates relative to the crop, and radius, all in pixels.
type Circle struct {
	Center geometry.Point2D
	Radius float64
}

// Detector is the geometric circle primitive: a grayscale crop in, zero or
// more candidate circles out, order unspecified. Edges returns a binary edge
// map of the same crop for ring sampling.
type Detector interface {
	Detect(crop image.Image, p Params) ([]Circle, error)
	Edges(crop image.Image, p Params) (*image.Gray, error)
}

// Params holds the marker-detection thresholds, tuned for the glyph size at
// the reference capture scale.
type Params struct {
	// Crop window relative to the candidate text rect: WindowWidth pixels to
	// the right of the text's right edge, VMargin extra pixels above and below.
	WindowWidth int
	VMargin     int

	// Radius bounds for Hough detection, in pixels.
	MinRadius int
	MaxRadius int

	// Hough sensitivity.
	HoughDP      float64
	HoughMinDist float64
	HoughParam1  float64 // Canny high threshold
	HoughParam2  float64 // accumulator threshold

	// Canny thresholds for the edge map used in classification.
	CannyLow  float32
	CannyHigh float32

	// Classification: sample the edge map along a ring at RingRatio of the
	// detected radius; edge density at or above FillDensity means the inner
	// ring of the filled glyph is present.
	RingRatio   float64
	FillDensity float64
	RingSamples int
}

// DefaultParams returns marker thresholds tuned for the reference layout.
func DefaultParams() Params {
	return Params{
		WindowWidth:  72,
		VMargin:      8,
		MinRadius:    8,
		MaxRadius:    22,
		HoughDP:      1.2,
		HoughMinDist: 16,
		HoughParam1:  100,
		HoughParam2:  30,
		CannyLow:     50,
		CannyHigh:    150,
		RingRatio:    0.55,
		FillDensity:  0.45,
		RingSamples:  64,
	}
}

// Find looks for a rank marker next to the candidate text rect. It returns
// the glyph and true when a circle was found and classified; (_, false) means
// no marker, which is a normal outcome, never an error. Detector failures are
// also treated as "no marker" — the candidate is still usable without one.
func Find(src image.Image, textRect geometry.RectInt, det Detector, p Params) (string, bool) {
	window := cropWindow(src.Bounds(), textRect, p)
	if window.Empty() {
		return "", false
	}
	crop := cropImage(src, window)

	circles, err := det.Detect(crop, p)
	if err != nil || len(circles) == 0 {
		return "", false
	}
	best := largestCircle(circles)

	edges, err := det.Edges(crop, p)
	if err != nil {
		return "", false
	}
	return ClassifyCircle(edges, best, p), true
}

// cropWindow returns the marker search window: a band to the right of the
// text, clipped to the image bounds.
func cropWindow(img image.Rectangle, textRect geometry.RectInt, p Params) image.Rectangle {
	window := image.Rect(
		textRect.Right(),
		textRect.Y-p.VMargin,
		textRect.Right()+p.WindowWidth,
		textRect.Bottom()+p.VMargin,
	)
	return window.Intersect(img)
}

// largestCircle picks the circle with the largest radius. Ties go to the
// circle closest to the crop origin so repeated runs always agree.
func largestCircle(circles []Circle) Circle {
	sorted := make([]Circle, len(circles))
	copy(sorted, circles)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Radius != sorted[j].Radius {
			return sorted[i].Radius > sorted[j].Radius
		}
		if sorted[i].Center.X != sorted[j].Center.X {
			return sorted[i].Center.X < sorted[j].Center.X
		}
		return sorted[i].Center.Y < sorted[j].Center.Y
	})
	return sorted[0]
}

// ClassifyCircle decides plain vs filled from the edge map: the filled glyph
// has an inner circle, so edge pixels cluster along a ring at RingRatio of
// the detected radius.
func ClassifyCircle(edges *image.Gray, c Circle, p Params) string {
	if ringDensity(edges, c, p) >= p.FillDensity {
		return GlyphFilled
	}
	return GlyphPlain
}

// ringDensity samples the edge map at RingSamples evenly-spaced angles along
// the inner ring and returns the fraction of sample points that land on an
// edge pixel. A point within one pixel of an edge counts; Canny edges are
// thin and the ring estimate is not subpixel-exact.
func ringDensity(edges *image.Gray, c Circle, p Params) float64 {
	bounds := edges.Bounds()
	r := c.Radius * p.RingRatio

	samples := make([]float64, p.RingSamples)
	for i := 0; i < p.RingSamples; i++ {
		angle := float64(i) * 2.0 * math.Pi / float64(p.RingSamples)
		px := int(c.Center.X + r*math.Cos(angle) + 0.5)
		py := int(c.Center.Y + r*math.Sin(angle) + 0.5)
		if edgeNear(edges, bounds, px, py) {
			samples[i] = 1
		}
	}
	return stat.Mean(samples, nil)
}

func edgeNear(edges *image.Gray, bounds image.Rectangle, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			px, py := x+dx, y+dy
			if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
				continue
			}
			if edges.GrayAt(px, py).Y > 0 {
				return true
			}
		}
	}
	return false
}

// cropImage extracts the window as a standalone grayscale image.
func cropImage(src image.Image, window image.Rectangle) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, window.Dx(), window.Dy()))
	for y := window.Min.Y; y < window.Max.Y; y++ {
		for x := window.Min.X; x < window.Max.X; x++ {
			out.SetGray(x-window.Min.X, y-window.Min.Y, color.Gray{Y: grayAt(src, x, y)})
		}
	}
	return out
}

// grayAt returns the grayscale brightness (0-255) of the pixel at (x, y).
func grayAt(img image.Image, x, y int) uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
}
