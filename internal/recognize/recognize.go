// Package recognize defines the text-recognition contract and the Tesseract
// implementation of it. The rest of the pipeline only ever sees TextBox values.
package recognize

import (
	"image"

	"umascan/pkg/geometry"
)

// TextBox is one recognized text fragment: a bounding quadrilateral and the
// string the engine read inside it. Confidence is carried through for logging
// but never drives a decision.
type TextBox struct {
	Quad       geometry.Quad
	Text       string
	Confidence float64
}

// Bounds returns the axis-aligned bounding rectangle of the fragment.
func (b TextBox) Bounds() geometry.RectInt {
	return b.Quad.Bounds()
}

// Recognizer turns an image into zero or more text fragments. Order of the
// returned boxes is unspecified. A nil error with zero boxes is a valid
// result (a blank image); an error aborts extraction for that image.
type Recognizer interface {
	Recognize(img image.Image) ([]TextBox, error)
}
