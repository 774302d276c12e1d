package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const Version = "0.1.0"

// Pinger reports database connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessChecker reports whether the landmark model has loaded
type ReadinessChecker interface {
	Ready() bool
}

type HealthHandler struct {
	db        Pinger
	landmarks ReadinessChecker
}

// NewHealthHandler creates a health handler. Nil dependencies are reported as ok.
func NewHealthHandler(db Pinger, landmarks ReadinessChecker) *HealthHandler {
	return &HealthHandler{db: db, landmarks: landmarks}
}

type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version,omitempty"`
	Database   string `json:"database,omitempty"`
	Landmarker string `json:"landmarker,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// Ready fails only when the database is unreachable. A landmarker that is
// still loading leaves sessions inert but usable.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:     "ready",
		Database:   "ok",
		Landmarker: "ready",
	}

	if h.landmarks != nil && !h.landmarks.Ready() {
		resp.Landmarker = "loading"
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Database = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
	}

	return c.JSON(resp)
}
