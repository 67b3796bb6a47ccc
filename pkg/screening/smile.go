package screening

import (
	"fmt"
	"image"
	"math"
)

// Face mesh indices used by the smile ratio.
const (
	LandmarkMouthLeft  = 61
	LandmarkMouthRight = 291
	LandmarkFaceLeft   = 234
	LandmarkFaceRight  = 454
)

// minLandmarks is the smallest mesh that contains every index above.
const minLandmarks = LandmarkFaceRight + 1

// Landmark is a face mesh point normalized to the frame (0-1).
// Z is relative depth and is not used by the ratio.
type Landmark struct {
	X, Y, Z float64
}

// Pixel denormalizes the landmark into frame coordinates.
func (l Landmark) Pixel(w, h int) (x, y float64) {
	return l.X * float64(w), l.Y * float64(h)
}

// Landmarks is the ordered mesh for one detected face.
type Landmarks []Landmark

// SmileResult is one evaluation of the smile ratio.
type SmileResult struct {
	// Ratio is mouth width over face width, times 100.
	Ratio float64

	// Left and Right are the mouth corners in pixels, for drawing only.
	Left, Right image.Point
}

// SmileRatio computes the mouth-to-face width ratio of one face in a w x h
// frame. Distances are taken between denormalized float pixel positions, so
// the ratio depends only on the relative geometry of the face.
func SmileRatio(face Landmarks, w, h int) (SmileResult, error) {
	if w <= 0 || h <= 0 {
		return SmileResult{}, fmt.Errorf("%w: frame size %dx%d", ErrInvalidLandmarks, w, h)
	}
	if len(face) < minLandmarks {
		return SmileResult{}, fmt.Errorf("%w: got %d points, need %d", ErrInvalidLandmarks, len(face), minLandmarks)
	}

	mlx, mly := face[LandmarkMouthLeft].Pixel(w, h)
	mrx, mry := face[LandmarkMouthRight].Pixel(w, h)
	flx, fly := face[LandmarkFaceLeft].Pixel(w, h)
	frx, fry := face[LandmarkFaceRight].Pixel(w, h)

	mouthDist := math.Hypot(mrx-mlx, mry-mly)
	faceDist := math.Hypot(frx-flx, fry-fly)
	if faceDist == 0 || math.IsNaN(faceDist) {
		return SmileResult{}, fmt.Errorf("%w: zero face width", ErrInvalidLandmarks)
	}

	return SmileResult{
		Ratio: mouthDist / faceDist * 100,
		Left:  image.Pt(int(mlx), int(mly)),
		Right: image.Pt(int(mrx), int(mry)),
	}, nil
}
