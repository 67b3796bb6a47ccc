package facemesh

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-neurolens/pkg/screening"
)

// Detector produces landmark sets for the faces in a BGR frame, best face
// first. An empty result means no face was found.
type Detector interface {
	Detect(frame gocv.Mat) ([]screening.Landmarks, error)
	Close() error
}

// Mesh runs YuNet followed by the face landmark network.
type Mesh struct {
	detector gocv.FaceDetectorYN
	net      gocv.Net
	cfg      Config
	logger   *slog.Logger
	mu       sync.Mutex // Protects inference
}

// New loads both models.
func New(cfg Config, logger *slog.Logger) (*Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	net := gocv.ReadNetFromONNX(cfg.LandmarkModel)
	if net.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, cfg.LandmarkModel)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	// Input size is updated per frame in Detect.
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.DetectorModel,
		"",
		image.Pt(320, 320),
		float32(cfg.ScoreThreshold),
		float32(cfg.NMSThreshold),
		5000,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	logger.Info("face mesh loaded",
		"detector", cfg.DetectorModel,
		"landmarks", cfg.LandmarkModel,
		"input", cfg.InputSize,
	)

	return &Mesh{
		detector: detector,
		net:      net,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Detect finds up to MaxFaces faces and meshes each one.
func (m *Mesh) Detect(frame gocv.Mat) ([]screening.Landmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame.Empty() {
		return nil, ErrEmptyFrame
	}

	w, h := frame.Cols(), frame.Rows()
	boxes := bestBoxes(m.findFaces(frame), m.cfg.MaxFaces)

	var out []screening.Landmarks
	for _, box := range boxes {
		crop := cropRect(box.Rect, m.cfg.Margin, w, h)
		if crop.Empty() {
			continue
		}
		lm, err := m.landmarks(frame, crop, w, h)
		if err != nil {
			return nil, err
		}
		out = append(out, lm)
	}

	if len(out) > 0 {
		m.logger.Debug("face mesh", "faces", len(out), "score", boxes[0].Score)
	}
	return out, nil
}

func (m *Mesh) findFaces(frame gocv.Mat) []Box {
	m.detector.SetInputSize(image.Pt(frame.Cols(), frame.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	m.detector.Detect(frame, &faces)

	// YuNet rows: x, y, w, h, 5 landmark pairs, score (15 columns)
	boxes := make([]Box, 0, faces.Rows())
	for r := 0; r < faces.Rows(); r++ {
		x := int(faces.GetFloatAt(r, 0))
		y := int(faces.GetFloatAt(r, 1))
		bw := int(faces.GetFloatAt(r, 2))
		bh := int(faces.GetFloatAt(r, 3))
		boxes = append(boxes, Box{
			Rect:  image.Rect(x, y, x+bw, y+bh),
			Score: float64(faces.GetFloatAt(r, 14)),
		})
	}
	return boxes
}

func (m *Mesh) landmarks(frame gocv.Mat, crop image.Rectangle, w, h int) (screening.Landmarks, error) {
	region := frame.Region(crop)
	defer region.Close()

	size := image.Pt(m.cfg.InputSize, m.cfg.InputSize)
	blob := gocv.BlobFromImage(region, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	m.net.SetInput(blob, "")
	output := m.net.Forward("")
	defer output.Close()

	raw, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadOutput, err)
	}
	if len(raw) < MeshPoints*3 {
		return nil, fmt.Errorf("%w: %d values", ErrBadOutput, len(raw))
	}

	return decodeLandmarks(raw, crop, m.cfg.InputSize, w, h), nil
}

// Close releases both models.
func (m *Mesh) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detector.Close()
	return m.net.Close()
}

var _ Detector = (*Mesh)(nil)
