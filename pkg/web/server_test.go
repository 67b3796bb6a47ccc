package web

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-neurolens/pkg/screening"
)

func TestServer_Status(t *testing.T) {
	s := NewServer(Config{Port: "0"})
	s.UpdateState(func(st *State) {
		st.Session = screening.NewSession(time.Now())
		st.Session.Visual = screening.VisualHealthy
		st.Thresholds = screening.DefaultThresholds()
		st.AudioBackend = "mock"
	})

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/status", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	session := body["session"].(map[string]any)
	assert.Equal(t, "MENU", session["mode"])
	assert.Equal(t, "HEALTHY", session["visual_status"])
	assert.Equal(t, "PENDING", session["audio_status"])
	assert.Equal(t, "mock", body["audio_backend"])
}

func TestServer_History(t *testing.T) {
	s := NewServer(Config{})
	for i := 0; i < maxHistory+5; i++ {
		s.AddMeasurement(screening.Measurement{Kind: screening.KindSmile, Value: float64(i)})
	}

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/history", nil))
	require.NoError(t, err)

	var history []screening.Measurement
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, maxHistory)
	assert.Equal(t, 5.0, history[0].Value)
}

func TestServer_Logs(t *testing.T) {
	s := NewServer(Config{})
	s.AddLog("visual", "smile captured")

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/logs", nil))
	require.NoError(t, err)

	var logs []LogEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "visual", logs[0].Type)
	assert.Equal(t, "smile captured", logs[0].Message)
}

func TestServer_Keys(t *testing.T) {
	var got []screening.Key
	s := NewServer(Config{})
	s.OnKey = func(k screening.Key) error {
		got = append(got, k)
		return nil
	}

	for _, name := range []string{"v", "space", "q"} {
		resp, err := s.App().Test(httptest.NewRequest("POST", "/api/keys/"+name, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode, name)
	}
	assert.Equal(t, []screening.Key{screening.KeyVisual, screening.KeySpace, screening.KeyQuit}, got)

	resp, err := s.App().Test(httptest.NewRequest("POST", "/api/keys/enter", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestServer_KeysErrors(t *testing.T) {
	s := NewServer(Config{})

	resp, err := s.App().Test(httptest.NewRequest("POST", "/api/keys/v", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	s.OnKey = func(screening.Key) error { return errors.New("queue full") }
	resp, err = s.App().Test(httptest.NewRequest("POST", "/api/keys/v", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "queue full")
}

func TestServer_WebsocketRequiresUpgrade(t *testing.T) {
	s := NewServer(Config{})

	resp, err := s.App().Test(httptest.NewRequest("GET", "/ws/status", nil))
	require.NoError(t, err)
	assert.Equal(t, 426, resp.StatusCode)
}

func startServer(t *testing.T) (*Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(Config{})
	go s.Serve(ln)
	t.Cleanup(func() { s.Shutdown() })

	return s, "ws://" + ln.Addr().String()
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 10*time.Millisecond)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestServer_StatusWebsocket(t *testing.T) {
	s, base := startServer(t)
	conn := dial(t, base+"/ws/status")

	var initial State
	require.NoError(t, conn.ReadJSON(&initial))
	require.Eventually(t, func() bool { return s.statusHub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	s.UpdateState(func(st *State) {
		st.Session.Mode = screening.ModeAudio
		st.Session.Listening = true
	})

	var update map[string]any
	require.NoError(t, conn.ReadJSON(&update))
	session := update["session"].(map[string]any)
	assert.Equal(t, "AUDIO", session["mode"])
	assert.Equal(t, true, session["listening"])
}

func TestServer_LogsWebsocketBacklog(t *testing.T) {
	s, base := startServer(t)
	s.AddLog("info", "first")
	s.AddLog("audio", "second")

	conn := dial(t, base+"/ws/logs")

	var entry LogEntry
	require.NoError(t, conn.ReadJSON(&entry))
	assert.Equal(t, "first", entry.Message)
	require.NoError(t, conn.ReadJSON(&entry))
	assert.Equal(t, "second", entry.Message)
}

func TestServer_CameraWebsocket(t *testing.T) {
	s, base := startServer(t)
	conn := dial(t, base+"/ws/camera")

	require.Eventually(t, func() bool { return s.CameraClients() == 1 }, time.Second, 5*time.Millisecond)
	frame := []byte{0xff, 0xd8, 0xff, 0xd9}
	s.SendCameraFrame(frame)

	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, msgType)
	assert.Equal(t, frame, data)
}
