package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/callguard/internal/audit"
	"github.com/saturnino-fabrica-de-software/callguard/internal/cache"
	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
	"github.com/saturnino-fabrica-de-software/callguard/internal/landmark"
	"github.com/saturnino-fabrica-de-software/callguard/internal/liveness"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider"
	"github.com/saturnino-fabrica-de-software/callguard/internal/repository"
	"github.com/saturnino-fabrica-de-software/callguard/internal/ws"
)

const defaultHistoryLimit = 50

// VerdictCache remembers analyzer verdicts for identical inputs
type VerdictCache interface {
	Get(ctx context.Context, key string) (*domain.Verdict, bool, error)
	Set(ctx context.Context, key string, v *domain.Verdict) error
}

// ScanInput is one frame submitted for a session
type ScanInput struct {
	Frame      []byte
	MIMEType   string
	Transcript string
}

// EvaluateResult is the detector outcome for a pre-resolved landmark set
type EvaluateResult struct {
	SessionID uuid.UUID `json:"session_id"`
	liveness.Result
}

type ScanService struct {
	sessions  *SessionService
	scans     repository.ScanRepositoryInterface
	landmarks provider.LandmarkProvider
	analyzer  provider.ForensicAnalyzer
	cache     VerdictCache
	limiter   ScanLimiter
	publisher Publisher
	audit     audit.Logger
	logger    *slog.Logger
	scanLimit int
}

func NewScanService(
	sessions *SessionService,
	scans repository.ScanRepositoryInterface,
	landmarks provider.LandmarkProvider,
	analyzer provider.ForensicAnalyzer,
	logger *slog.Logger,
) *ScanService {
	return &ScanService{
		sessions:  sessions,
		scans:     scans,
		landmarks: landmarks,
		analyzer:  analyzer,
		limiter:   sessions.limiter,
		publisher: sessions.publisher,
		audit:     sessions.audit,
		logger:    logger.With("component", "scans"),
	}
}

// WithCache enables verdict caching
func (s *ScanService) WithCache(c VerdictCache) *ScanService {
	s.cache = c
	return s
}

// WithScanLimit caps analyzer calls per session per window. Zero disables it.
func (s *ScanService) WithScanLimit(limit int) *ScanService {
	s.scanLimit = limit
	return s
}

// Scan runs one frame through the liveness detector and the forensic analyzer.
func (s *ScanService) Scan(ctx context.Context, sessionID uuid.UUID, in ScanInput) (*domain.Scan, error) {
	if len(in.Frame) == 0 {
		return nil, domain.ErrValidationFailed.WithError(errors.New("image is required"))
	}

	entry, err := s.sessions.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	start := time.Now()
	wasFailed := entry.detector.Failed()

	result, err := entry.detector.EvaluateFrame(ctx, s.landmarks, in.Frame, entry.record.Active)
	if err != nil {
		// fail open: the frame still goes to the analyzer without liveness metadata
		s.logger.WarnContext(ctx, "landmark detection failed", "session_id", sessionID, "error", err)
	}

	if s.limiter != nil {
		if err := s.limiter.CheckScanLimit(ctx, sessionID, s.scanLimit); err != nil {
			// the detector already consumed the frame; keep its evidence
			s.record(ctx, entry, result)
			s.publish(ctx, sessionID, wasFailed, result, nil)
			return nil, err
		}
	}

	req := provider.AnalysisRequest{
		Image:           in.Frame,
		MIMEType:        in.MIMEType,
		Transcript:      in.Transcript,
		AdhesionFailure: result.Failed,
	}
	if !result.Inert {
		req.LivenessLabel = result.Label.String()
	}

	verdict, cached := s.verdict(ctx, sessionID, req)

	scan := &domain.Scan{
		SessionID: sessionID,
		Label:     result.Label.String(),
		Failed:    result.Failed,
		Score:     result.Score,
		Inert:     result.Inert,
		Verdict:   verdict,
		Analyzer:  s.analyzer.Name(),
		Cached:    cached,
		LatencyMs: time.Since(start).Milliseconds(),
	}

	if err := s.scans.Create(ctx, scan); err != nil {
		return nil, err
	}

	entry.record.ScanCount++
	s.record(ctx, entry, result)

	s.publish(ctx, sessionID, wasFailed, result, scan)

	return scan, nil
}

// Evaluate runs only the liveness detector on landmarks resolved by the client.
func (s *ScanService) Evaluate(ctx context.Context, sessionID uuid.UUID, set *landmark.Set) (*EvaluateResult, error) {
	entry, err := s.sessions.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	wasFailed := entry.detector.Failed()
	result := entry.detector.Observe(set)

	s.record(ctx, entry, result)

	s.publish(ctx, sessionID, wasFailed, result, nil)

	return &EvaluateResult{SessionID: sessionID, Result: result}, nil
}

// Analyze is a one-off forensic analysis outside any session
func (s *ScanService) Analyze(ctx context.Context, frame []byte, mimeType, transcript string) (*domain.Verdict, error) {
	if len(frame) == 0 {
		return nil, domain.ErrValidationFailed.WithError(errors.New("image is required"))
	}

	verdict, _ := s.verdict(ctx, uuid.Nil, provider.AnalysisRequest{
		Image:      frame,
		MIMEType:   mimeType,
		Transcript: transcript,
	})

	return &verdict, nil
}

// History lists the latest scans of a session, newest first
func (s *ScanService) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Scan, error) {
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	scans, err := s.scans.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("session %s: list scans: %w", sessionID, err)
	}

	return scans, nil
}

// verdict consults the cache, then the analyzer. Analyzer failures degrade to
// the fallback verdict, which is never cached.
func (s *ScanService) verdict(ctx context.Context, sessionID uuid.UUID, req provider.AnalysisRequest) (domain.Verdict, bool) {
	var key string
	if s.cache != nil {
		key = cache.VerdictKey(req.Image, req.Transcript, req.LivenessLabel)
		v, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "verdict cache read failed", "error", err)
		}
		if ok {
			return *v, true
		}
	}

	start := time.Now()
	v, err := s.analyzer.Analyze(ctx, req)
	latency := time.Since(start).Milliseconds()

	event := audit.Event{
		SessionID: sessionID,
		EventType: audit.EventFrameAnalyzed,
		Provider:  s.analyzer.Name(),
		Success:   err == nil,
		LatencyMs: latency,
		Metadata: map[string]string{
			"liveness_label": req.LivenessLabel,
		},
	}
	if err != nil {
		event.Error = err.Error()
	}
	_ = s.audit.Log(ctx, event)

	if err != nil {
		s.logger.ErrorContext(ctx, "forensic analysis failed",
			"session_id", sessionID,
			"analyzer", s.analyzer.Name(),
			"error", err,
		)
		return domain.FallbackVerdict(), false
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, v); err != nil {
			s.logger.WarnContext(ctx, "verdict cache write failed", "error", err)
		}
	}

	return *v, false
}

// record folds the detector state into the session row and persists it.
// Callers hold entry.mu.
func (s *ScanService) record(ctx context.Context, entry *sessionEntry, result liveness.Result) {
	s.sessions.syncRecord(entry)
	if !result.Inert {
		entry.record.Label = result.Label.String()
	}
	if err := s.sessions.persist(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist session state", "session_id", entry.record.ID, "error", err)
	}
}

func (s *ScanService) publish(ctx context.Context, sessionID uuid.UUID, wasFailed bool, result liveness.Result, scan *domain.Scan) {
	if scan != nil && s.publisher != nil {
		s.publisher.Publish(sessionID, ws.EventScanCompleted, scan)
	}

	if wasFailed || !result.Failed {
		return
	}

	if s.publisher != nil {
		s.publisher.Publish(sessionID, ws.EventLivenessFailed, result)
	}

	_ = s.audit.Log(ctx, audit.Event{
		SessionID: sessionID,
		EventType: audit.EventLivenessFailed,
		Success:   true,
		Metadata: map[string]string{
			"label": result.Label.String(),
			"score": fmt.Sprintf("%.1f", result.Score),
		},
	})
}
