// Package web provides a real-time dashboard mirroring the screening session.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-neurolens/pkg/hub"
	"github.com/teslashibe/go-neurolens/pkg/screening"
)

const (
	maxLogs    = 500
	maxHistory = 100
)

// ErrKeysDisabled is returned by the key endpoint when no handler is set.
var ErrKeysDisabled = errors.New("web: remote keys not configured")

// State is the dashboard view of the running screening.
type State struct {
	Session      screening.Session    `json:"session"`
	Thresholds   screening.Thresholds `json:"thresholds"`
	FaceDetected bool                 `json:"face_detected"`
	AudioBackend string               `json:"audio_backend"`
}

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, visual, audio, error
	Message string `json:"message"`
}

// Config configures the dashboard server.
type Config struct {
	Port      string
	StaticDir string // Served at / when set
	Logger    *slog.Logger
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	state   State
	stateMu sync.RWMutex

	logs   []LogEntry
	logsMu sync.RWMutex

	history   []screening.Measurement
	historyMu sync.RWMutex

	statusHub *hub.Hub
	logHub    *hub.Hub
	cameraHub *hub.Hub

	hubCtx    context.Context
	cancel    context.CancelFunc
	startOnce sync.Once

	// OnKey injects a key press into the screening loop.
	OnKey func(screening.Key) error
}

// NewServer creates a new web dashboard server
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		hubCtx:    ctx,
		cancel:    cancel,
		port:      cfg.Port,
		logger:    logger,
		logs:      make([]LogEntry, 0, maxLogs),
		history:   make([]screening.Measurement, 0, maxHistory),
		statusHub: hub.New("status", logger),
		logHub:    hub.New("logs", logger),
		cameraHub: hub.New("camera", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "NeuroLens Dashboard",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/history", s.handleHistory)
	api.Get("/logs", s.handleGetLogs)
	api.Post("/keys/:key", s.handleKey)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// startHubs runs the broadcast hubs until Shutdown.
func (s *Server) startHubs() {
	s.startOnce.Do(func() {
		go s.statusHub.Run(s.hubCtx)
		go s.logHub.Run(s.hubCtx)
		go s.cameraHub.Run(s.hubCtx)
	})
}

// Start serves on the configured port until Shutdown.
func (s *Server) Start() error {
	s.startHubs()
	s.logger.Info("web dashboard listening", "url", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.startHubs()
	s.logger.Info("web dashboard listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// UpdateState updates the dashboard state and broadcasts it to clients
func (s *Server) UpdateState(update func(*State)) {
	s.stateMu.Lock()
	update(&s.state)
	state := s.state
	s.stateMu.Unlock()

	if err := s.statusHub.BroadcastJSON(state); err != nil {
		s.logger.Warn("status broadcast failed", "error", err)
	}
}

// State returns a copy of the current dashboard state.
func (s *Server) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// AddLog adds a log entry and broadcasts to clients
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	if err := s.logHub.BroadcastJSON(entry); err != nil {
		s.logger.Warn("log broadcast failed", "error", err)
	}
}

// AddMeasurement records a capture result in the history.
func (s *Server) AddMeasurement(m screening.Measurement) {
	s.historyMu.Lock()
	s.history = append(s.history, m)
	if len(s.history) > maxHistory {
		s.history = s.history[1:]
	}
	s.historyMu.Unlock()
}

// SendCameraFrame sends a JPEG frame to all connected camera clients
func (s *Server) SendCameraFrame(jpegData []byte) {
	if s.cameraHub.ClientCount() == 0 {
		return
	}
	s.cameraHub.BroadcastBinary(jpegData)
}

// CameraClients returns the number of connected camera viewers.
func (s *Server) CameraClients() int {
	return s.cameraHub.ClientCount()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	s.cancel()
	return s.app.Shutdown()
}
