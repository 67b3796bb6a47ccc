package screening

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// meshWith returns a 468-point mesh with the four ratio landmarks placed at
// the given pixel positions in a w x h frame.
func meshWith(w, h int, mouthL, mouthR, faceL, faceR [2]float64) Landmarks {
	mesh := make(Landmarks, 468)
	set := func(idx int, p [2]float64) {
		mesh[idx] = Landmark{X: p[0] / float64(w), Y: p[1] / float64(h)}
	}
	set(LandmarkMouthLeft, mouthL)
	set(LandmarkMouthRight, mouthR)
	set(LandmarkFaceLeft, faceL)
	set(LandmarkFaceRight, faceR)
	return mesh
}

func TestSmileRatio_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		mouthR    [2]float64
		wantRatio float64
	}{
		{name: "wide smile", mouthR: [2]float64{280, 240}, wantRatio: 50.0},
		{name: "flat mouth", mouthR: [2]float64{250, 240}, wantRatio: 31.25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mesh := meshWith(640, 480,
				[2]float64{200, 240}, tc.mouthR,
				[2]float64{160, 200}, [2]float64{320, 200},
			)

			res, err := SmileRatio(mesh, 640, 480)
			require.NoError(t, err)
			assert.InDelta(t, tc.wantRatio, res.Ratio, 1e-9)
			assert.Equal(t, image.Pt(200, 240), res.Left)
			assert.Equal(t, image.Pt(int(tc.mouthR[0]), 240), res.Right)
		})
	}
}

func TestSmileRatio_ScaleInvariant(t *testing.T) {
	mesh := meshWith(640, 480,
		[2]float64{211, 251}, [2]float64{297, 262},
		[2]float64{150, 190}, [2]float64{331, 205},
	)

	base, err := SmileRatio(mesh, 640, 480)
	require.NoError(t, err)

	for _, k := range []int{2, 3, 5} {
		scaled, err := SmileRatio(mesh, 640*k, 480*k)
		require.NoError(t, err)
		assert.InDelta(t, base.Ratio, scaled.Ratio, 1e-9, "scale %d", k)
	}
}

func TestSmileRatio_InvalidInput(t *testing.T) {
	valid := meshWith(640, 480,
		[2]float64{200, 240}, [2]float64{280, 240},
		[2]float64{160, 200}, [2]float64{320, 200},
	)
	degenerate := meshWith(640, 480,
		[2]float64{200, 240}, [2]float64{280, 240},
		[2]float64{160, 200}, [2]float64{160, 200},
	)

	tests := []struct {
		name string
		mesh Landmarks
		w, h int
	}{
		{name: "zero face width", mesh: degenerate, w: 640, h: 480},
		{name: "short mesh", mesh: valid[:100], w: 640, h: 480},
		{name: "empty mesh", mesh: nil, w: 640, h: 480},
		{name: "zero width frame", mesh: valid, w: 0, h: 480},
		{name: "negative height frame", mesh: valid, w: 640, h: -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SmileRatio(tc.mesh, tc.w, tc.h)
			assert.ErrorIs(t, err, ErrInvalidLandmarks)
		})
	}
}
