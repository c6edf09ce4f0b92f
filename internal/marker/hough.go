package marker

import (
	"fmt"
	"image"

	"umascan/pkg/geometry"

	"gocv.io/x/gocv"
)

// HoughDetector is the production circle primitive, backed by OpenCV's Hough
// gradient transform. It is stateless and safe to share.
type HoughDetector struct{}

// NewHoughDetector creates the gocv-backed circle detector.
func NewHoughDetector() *HoughDetector {
	return &HoughDetector{}
}

// Detect runs Hough circle detection over the crop with the tuned radius
// bounds and sensitivity. Zero circles is a normal result.
func (d *HoughDetector) Detect(crop image.Image, p Params) ([]Circle, error) {
	gray, err := grayMat(crop)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: 9, Y: 9}, 2, 2, gocv.BorderDefault)

	circles := gocv.NewMat()
	defer circles.Close()
	gocv.HoughCirclesWithParams(blurred, &circles, gocv.HoughGradient,
		p.HoughDP, p.HoughMinDist,
		p.HoughParam1, p.HoughParam2,
		p.MinRadius, p.MaxRadius)

	if circles.Empty() || circles.Cols() == 0 {
		return nil, nil
	}

	found := make([]Circle, circles.Cols())
	for i := 0; i < circles.Cols(); i++ {
		found[i] = Circle{
			Center: geometry.Point2D{
				X: float64(circles.GetFloatAt(0, i*3)),
				Y: float64(circles.GetFloatAt(0, i*3+1)),
			},
			Radius: float64(circles.GetFloatAt(0, i*3+2)),
		}
	}
	return found, nil
}

// Edges returns the Canny edge map of the crop for ring sampling.
func (d *HoughDetector) Edges(crop image.Image, p Params) (*image.Gray, error) {
	gray, err := grayMat(crop)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, p.CannyLow, p.CannyHigh)

	rows, cols := edges.Rows(), edges.Cols()
	out := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			out.Pix[y*out.Stride+x] = edges.GetUCharAt(y, x)
		}
	}
	return out, nil
}

// grayMat converts a crop to a single-channel Mat.
func grayMat(crop image.Image) (gocv.Mat, error) {
	bounds := crop.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return gocv.Mat{}, fmt.Errorf("empty crop")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mat.SetUCharAt(y, x, grayAt(crop, bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return mat, nil
}
