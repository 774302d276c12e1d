package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
	"github.com/saturnino-fabrica-de-software/callguard/internal/landmark"
	"github.com/saturnino-fabrica-de-software/callguard/internal/service"
)

// SessionService manages guarded call sessions
type SessionService interface {
	Create(ctx context.Context) (*domain.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Activate(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Close(ctx context.Context, id uuid.UUID) error
}

// ScanService evaluates frames of a session
type ScanService interface {
	Scan(ctx context.Context, sessionID uuid.UUID, in service.ScanInput) (*domain.Scan, error)
	Evaluate(ctx context.Context, sessionID uuid.UUID, set *landmark.Set) (*service.EvaluateResult, error)
	History(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Scan, error)
}

// SessionHandler handles session lifecycle and scan requests
type SessionHandler struct {
	sessions SessionService
	scans    ScanService
	logger   *slog.Logger
}

func NewSessionHandler(sessions SessionService, scans ScanService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		scans:    scans,
		logger:   logger,
	}
}

// EvaluateRequest carries a full face mesh resolved on the client. An empty
// mesh means no face was found in the frame.
type EvaluateRequest struct {
	Landmarks []landmark.Point `json:"landmarks"`
}

// ScanHistoryResponse lists recent scans
type ScanHistoryResponse struct {
	SessionID uuid.UUID     `json:"session_id"`
	Scans     []domain.Scan `json:"scans"`
}

// Create POST /v1/sessions - open an idle session
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	session, err := h.sessions.Create(c.Context())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

// Get GET /v1/sessions/:id
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	session, err := h.sessions.Get(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(session)
}

// Close DELETE /v1/sessions/:id - tear the session down
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	if err := h.sessions.Close(c.Context(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Activate POST /v1/sessions/:id/activate
func (h *SessionHandler) Activate(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	session, err := h.sessions.Activate(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(session)
}

// Deactivate POST /v1/sessions/:id/deactivate
func (h *SessionHandler) Deactivate(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	session, err := h.sessions.Deactivate(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(session)
}

// Scan POST /v1/sessions/:id/scan - run one frame through detector and analyzer
func (h *SessionHandler) Scan(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	frame, err := extractFrame(c)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	scan, err := h.scans.Scan(c.Context(), id, service.ScanInput{
		Frame:      frame.data,
		MIMEType:   frame.mimeType,
		Transcript: strings.TrimSpace(c.FormValue("transcript")),
	})
	if err != nil {
		return err
	}

	return c.JSON(scan)
}

// Evaluate POST /v1/sessions/:id/evaluate - detector only, landmarks supplied
func (h *SessionHandler) Evaluate(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	var set *landmark.Set
	if len(req.Landmarks) > 0 {
		set, err = landmark.FromMesh(req.Landmarks)
		if err != nil {
			return domain.ErrInvalidLandmarks.WithError(err)
		}
	}

	result, err := h.scans.Evaluate(c.Context(), id, set)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// History GET /v1/sessions/:id/scans?limit=N
func (h *SessionHandler) History(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 {
		return domain.ErrValidationFailed.WithError(errors.New("limit must be positive"))
	}

	scans, err := h.scans.History(c.Context(), id, limit)
	if err != nil {
		return err
	}
	if scans == nil {
		scans = []domain.Scan{}
	}

	return c.JSON(ScanHistoryResponse{SessionID: id, Scans: scans})
}

func sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidationFailed.WithError(fmt.Errorf("invalid session id: %w", err))
	}
	return id, nil
}
