package facemesh

import (
	"image"
	"sort"

	"github.com/teslashibe/go-neurolens/pkg/screening"
)

// Box is one YuNet detection in frame pixels.
type Box struct {
	Rect  image.Rectangle
	Score float64
}

// bestBoxes sorts by score and keeps at most n.
func bestBoxes(boxes []Box, n int) []Box {
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Score > boxes[j].Score
	})
	if len(boxes) > n {
		boxes = boxes[:n]
	}
	return boxes
}

// cropRect grows box into a square padded by margin on each side and
// clips it to the w x h frame.
func cropRect(box image.Rectangle, margin float64, w, h int) image.Rectangle {
	side := box.Dx()
	if box.Dy() > side {
		side = box.Dy()
	}
	side = int(float64(side) * (1 + 2*margin))

	cx := box.Min.X + box.Dx()/2
	cy := box.Min.Y + box.Dy()/2
	sq := image.Rect(cx-side/2, cy-side/2, cx-side/2+side, cy-side/2+side)

	return sq.Intersect(image.Rect(0, 0, w, h))
}

// decodeLandmarks maps raw model output (x, y, z triples in input pixels)
// from the crop back to coordinates normalized to the whole frame.
func decodeLandmarks(raw []float32, crop image.Rectangle, inputSize, w, h int) screening.Landmarks {
	n := len(raw) / 3
	if n > MeshPoints {
		n = MeshPoints
	}

	scaleX := float64(crop.Dx()) / float64(inputSize)
	scaleY := float64(crop.Dy()) / float64(inputSize)

	out := make(screening.Landmarks, n)
	for i := 0; i < n; i++ {
		px := float64(crop.Min.X) + float64(raw[3*i])*scaleX
		py := float64(crop.Min.Y) + float64(raw[3*i+1])*scaleY
		out[i] = screening.Landmark{
			X: px / float64(w),
			Y: py / float64(h),
			Z: float64(raw[3*i+2]) / float64(inputSize),
		}
	}
	return out
}
