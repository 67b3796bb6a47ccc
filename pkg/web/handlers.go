package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-neurolens/pkg/hub"
	"github.com/teslashibe/go-neurolens/pkg/screening"
)

// handleStatus returns the current state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.State())
}

// handleHistory returns recent measurements, oldest first
func (s *Server) handleHistory(c *fiber.Ctx) error {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	return c.JSON(s.history)
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleKey injects a key press, e.g. POST /api/keys/v or /api/keys/space
func (s *Server) handleKey(c *fiber.Ctx) error {
	name := c.Params("key")

	key, ok := screening.ParseKey(name)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown key: " + name,
		})
	}

	if s.OnKey == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": ErrKeysDisabled.Error(),
		})
	}

	if err := s.OnKey(key); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrKeysDisabled) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.AddLog("info", "Remote key: "+key.String())

	return c.JSON(fiber.Map{
		"key": key.String(),
	})
}

// handleStatusWS sends the current state, then live updates
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if err := c.WriteJSON(s.State()); err != nil {
		return
	}
	serve(s.statusHub, c)
}

// handleLogsWS sends the log backlog, then live entries
func (s *Server) handleLogsWS(c *websocket.Conn) {
	s.logsMu.RLock()
	backlog := append([]LogEntry(nil), s.logs...)
	s.logsMu.RUnlock()

	for _, entry := range backlog {
		if err := c.WriteJSON(entry); err != nil {
			return
		}
	}
	serve(s.logHub, c)
}

// handleCameraWS streams JPEG frames
func (s *Server) handleCameraWS(c *websocket.Conn) {
	serve(s.cameraHub, c)
}

// serve hands the connection to the hub; it blocks until disconnect.
func serve(h *hub.Hub, c *websocket.Conn) {
	client := hub.NewClient(h, c)
	if client == nil {
		return
	}
	client.Run()
}
