package neurolens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-neurolens/internal/config"
	"github.com/teslashibe/go-neurolens/pkg/audioio"
	"github.com/teslashibe/go-neurolens/pkg/camera"
	"github.com/teslashibe/go-neurolens/pkg/facemesh"
	"github.com/teslashibe/go-neurolens/pkg/screening"
)

// maxFrames bounds every test loop.
const maxFrames = 5000

type fakeCamera struct {
	frames int
	failAt int // 0 never fails
	closed bool
}

func (c *fakeCamera) Read(dst *gocv.Mat) error {
	c.frames++
	if c.failAt > 0 && c.frames >= c.failAt {
		return camera.ErrReadFailed
	}
	blank := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blank.Close()
	blank.CopyTo(dst)
	return nil
}

func (c *fakeCamera) Close() error {
	c.closed = true
	return nil
}

type fakeDetector struct {
	faces []screening.Landmarks
	calls int
}

func (d *fakeDetector) Detect(gocv.Mat) ([]screening.Landmarks, error) {
	d.calls++
	return d.faces, nil
}

func (d *fakeDetector) Close() error { return nil }

// scriptDisplay types the scripted keys one per frame, then asks next.
type scriptDisplay struct {
	keys   []screening.Key
	next   func() screening.Key
	shown  int
	closed bool
}

func (d *scriptDisplay) Show(gocv.Mat, int) screening.Key {
	d.shown++
	time.Sleep(time.Millisecond)
	if d.shown > maxFrames {
		return screening.KeyQuit
	}
	if len(d.keys) > 0 {
		k := d.keys[0]
		d.keys = d.keys[1:]
		return k
	}
	if d.next != nil {
		return d.next()
	}
	return screening.KeyNone
}

func (d *scriptDisplay) Close() error {
	d.closed = true
	return nil
}

// smilingFace has a mouth 80px wide on a 160px face in a 640x480 frame.
func smilingFace() screening.Landmarks {
	lm := make(screening.Landmarks, facemesh.MeshPoints)
	set := func(i int, x, y float64) { lm[i] = screening.Landmark{X: x / 640, Y: y / 480} }
	set(screening.LandmarkMouthLeft, 200, 240)
	set(screening.LandmarkMouthRight, 280, 240)
	set(screening.LandmarkFaceLeft, 160, 200)
	set(screening.LandmarkFaceRight, 320, 200)
	return lm
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Recording = screening.AudioSettings{Duration: 50 * time.Millisecond, SampleRate: 8000}
	cfg.Audio = audioio.Config{
		Backend:        audioio.BackendMock,
		SampleRate:     8000,
		Channels:       1,
		BufferDuration: 10 * time.Millisecond,
	}
	return cfg
}

func newTestApp(t *testing.T, cam *fakeCamera, det *fakeDetector, disp *scriptDisplay) *App {
	t.Helper()
	app, err := New(testConfig(), nil,
		WithFrameSource(cam),
		WithDetector(det),
		WithDisplay(disp),
	)
	require.NoError(t, err)
	require.NoError(t, app.Init())
	return app
}

func TestApp_FullScreening(t *testing.T) {
	cam := &fakeCamera{}
	det := &fakeDetector{faces: []screening.Landmarks{smilingFace()}}
	disp := &scriptDisplay{keys: []screening.Key{
		screening.KeyVisual, screening.KeySpace,
		screening.KeyAudio, screening.KeyRecord,
	}}
	app := newTestApp(t, cam, det, disp)
	disp.next = func() screening.Key {
		if app.Session().Audio != screening.AudioPending {
			return screening.KeyQuit
		}
		return screening.KeyNone
	}

	require.NoError(t, app.Run(context.Background()))
	app.Shutdown()

	s := app.Session()
	assert.Equal(t, screening.VisualHealthy, s.Visual)
	assert.Equal(t, screening.AudioStable, s.Audio, "mock backend records silence")
	assert.Equal(t, screening.ModeMenu, s.Mode)
	assert.Less(t, disp.shown, maxFrames)
	assert.True(t, cam.closed)
	assert.True(t, disp.closed)
}

func TestApp_DetectsOnlyInVisualMode(t *testing.T) {
	det := &fakeDetector{}
	disp := &scriptDisplay{keys: []screening.Key{
		screening.KeyNone, screening.KeyAudio, screening.KeyNone, screening.KeyQuit,
	}}
	app := newTestApp(t, &fakeCamera{}, det, disp)

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 0, det.calls)

	disp.keys = []screening.Key{screening.KeyVisual, screening.KeyNone, screening.KeyQuit}
	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 2, det.calls)
}

func TestApp_SpaceWithoutFaceStaysVisual(t *testing.T) {
	disp := &scriptDisplay{keys: []screening.Key{
		screening.KeyVisual, screening.KeySpace, screening.KeyQuit,
	}}
	app := newTestApp(t, &fakeCamera{}, &fakeDetector{}, disp)

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, screening.ModeVisual, app.Session().Mode)
	assert.Equal(t, screening.VisualPending, app.Session().Visual)
}

func TestApp_CameraFailure(t *testing.T) {
	app := newTestApp(t, &fakeCamera{failAt: 3}, &fakeDetector{}, &scriptDisplay{})

	err := app.Run(context.Background())
	assert.ErrorIs(t, err, camera.ErrReadFailed)
}

func TestApp_ContextCancel(t *testing.T) {
	app := newTestApp(t, &fakeCamera{}, &fakeDetector{}, &scriptDisplay{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, app.Run(ctx))
}

func TestApp_RemoteKeys(t *testing.T) {
	app := newTestApp(t, &fakeCamera{}, &fakeDetector{}, &scriptDisplay{})

	require.NoError(t, app.PressKey(screening.KeyAudio))
	require.NoError(t, app.PressKey(screening.KeyVisual))
	require.NoError(t, app.PressKey(screening.KeyQuit))

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, screening.ModeVisual, app.Session().Mode)
}

func TestApp_RemoteKeyQueueFull(t *testing.T) {
	app := newTestApp(t, &fakeCamera{}, &fakeDetector{}, &scriptDisplay{})

	var err error
	for i := 0; i < 100 && err == nil; i++ {
		err = app.PressKey(screening.KeyNone)
	}
	assert.ErrorIs(t, err, ErrKeyQueueFull)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Thresholds.Smile = -1

	_, err := New(cfg, nil)
	assert.Error(t, err)
}
