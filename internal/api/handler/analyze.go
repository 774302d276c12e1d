package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
)

// Analyzer runs a one-off forensic analysis
type Analyzer interface {
	Analyze(ctx context.Context, frame []byte, mimeType, transcript string) (*domain.Verdict, error)
}

// AnalyzeHandler serves session-less analysis
type AnalyzeHandler struct {
	service Analyzer
	logger  *slog.Logger
}

func NewAnalyzeHandler(service Analyzer, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{service: service, logger: logger}
}

// Analyze POST /v1/analyze - judge a single frame and transcript
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	frame, err := extractFrame(c)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	transcript := strings.TrimSpace(c.FormValue("transcript"))

	verdict, err := h.service.Analyze(c.Context(), frame.data, frame.mimeType, transcript)
	if err != nil {
		return err
	}

	return c.JSON(verdict)
}
