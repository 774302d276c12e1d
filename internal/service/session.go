package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/callguard/internal/audit"
	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
	"github.com/saturnino-fabrica-de-software/callguard/internal/liveness"
	"github.com/saturnino-fabrica-de-software/callguard/internal/repository"
	"github.com/saturnino-fabrica-de-software/callguard/internal/ws"
)

const defaultSessionTTL = 30 * time.Minute

// ScanLimiter caps analyzer calls per session
type ScanLimiter interface {
	CheckScanLimit(ctx context.Context, sessionID uuid.UUID, limit int) error
	ResetLimit(ctx context.Context, sessionID uuid.UUID) error
}

// Publisher pushes session events to live subscribers
type Publisher interface {
	Publish(sessionID uuid.UUID, eventType ws.EventType, data interface{})
}

// sessionEntry pairs the in-memory detector with the persisted row.
// mu serializes every evaluation of the session.
type sessionEntry struct {
	mu       sync.Mutex
	detector *liveness.Session
	record   *domain.Session
}

// SessionService owns the registry of live detectors, one per open session.
type SessionService struct {
	repo      repository.SessionRepositoryInterface
	limiter   ScanLimiter
	publisher Publisher
	audit     audit.Logger
	logger    *slog.Logger
	config    liveness.Config
	ttl       time.Duration

	mu      sync.Mutex
	entries map[uuid.UUID]*sessionEntry
}

func NewSessionService(
	repo repository.SessionRepositoryInterface,
	limiter ScanLimiter,
	publisher Publisher,
	auditLogger audit.Logger,
	logger *slog.Logger,
	cfg liveness.Config,
) *SessionService {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &SessionService{
		repo:      repo,
		limiter:   limiter,
		publisher: publisher,
		audit:     auditLogger,
		logger:    logger.With("component", "sessions"),
		config:    cfg,
		ttl:       defaultSessionTTL,
		entries:   make(map[uuid.UUID]*sessionEntry),
	}
}

// WithTTL sets how long a session may stay untouched before it expires
func (s *SessionService) WithTTL(ttl time.Duration) *SessionService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// Create opens an idle session
func (s *SessionService) Create(ctx context.Context) (*domain.Session, error) {
	session := &domain.Session{
		ID:        uuid.New(),
		Label:     "",
		ExpiresAt: time.Now().Add(s.ttl),
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[session.ID] = s.newEntry(session)
	s.mu.Unlock()

	_ = s.audit.Log(ctx, audit.Event{
		SessionID: session.ID,
		EventType: audit.EventSessionCreated,
		Success:   true,
	})

	copied := *session
	return &copied, nil
}

// Get returns the session with the live detector state folded in
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	s.mu.Unlock()

	if ok {
		entry.mu.Lock()
		defer entry.mu.Unlock()
		snapshot := *entry.record
		return &snapshot, nil
	}

	return s.repo.GetByID(ctx, id)
}

// Activate starts active liveness checking on the session
func (s *SessionService) Activate(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.setMode(ctx, id, true)
}

// Deactivate pauses liveness checking; the score is kept
func (s *SessionService) Deactivate(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.setMode(ctx, id, false)
}

func (s *SessionService) setMode(ctx context.Context, id uuid.UUID, active bool) (*domain.Session, error) {
	entry, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	if active {
		entry.detector.Activate()
	} else {
		entry.detector.Deactivate()
	}
	s.syncRecord(entry)

	if err := s.persist(ctx, entry); err != nil {
		return nil, err
	}

	snapshot := *entry.record
	return &snapshot, nil
}

// Close tears the session down and discards its evidence
func (s *SessionService) Close(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if ok {
		entry.mu.Lock()
		entry.detector.Teardown()
		entry.mu.Unlock()
	}

	if err := s.repo.Close(ctx, id); err != nil {
		return err
	}

	if s.limiter != nil {
		if err := s.limiter.ResetLimit(ctx, id); err != nil {
			s.logger.Warn("failed to reset scan limit", "session_id", id, "error", err)
		}
	}

	if s.publisher != nil {
		s.publisher.Publish(id, ws.EventSessionClosed, nil)
	}

	_ = s.audit.Log(ctx, audit.Event{
		SessionID: id,
		EventType: audit.EventSessionClosed,
		Success:   true,
	})

	return nil
}

// CloseExpired closes up to limit sessions past their expiry
func (s *SessionService) CloseExpired(ctx context.Context, limit int) (int, error) {
	ids, err := s.repo.ListExpired(ctx, limit)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, id := range ids {
		if err := s.Close(ctx, id); err != nil {
			s.logger.Error("failed to close expired session", "session_id", id, "error", err)
			continue
		}
		closed++
	}

	return closed, nil
}

// acquire returns the registry entry of an open session with entry.mu held;
// the caller unlocks it. A session known only to the database (e.g. after a
// restart) gets a fresh detector; evidence is never restored from storage.
func (s *SessionService) acquire(ctx context.Context, id uuid.UUID) (*sessionEntry, error) {
	entry, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	if entry.record.IsExpired() {
		entry.mu.Unlock()
		return nil, domain.ErrSessionExpired
	}

	return entry, nil
}

func (s *SessionService) lookup(ctx context.Context, id uuid.UUID) (*sessionEntry, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	s.mu.Unlock()
	if ok {
		return entry, nil
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.IsClosed() {
		return nil, domain.ErrSessionClosed
	}
	if record.IsExpired() {
		return nil, domain.ErrSessionExpired
	}

	record.Active = false
	record.Failed = false
	record.Score = 0

	s.mu.Lock()
	defer s.mu.Unlock()

	// another request may have loaded it meanwhile
	if existing, ok := s.entries[id]; ok {
		return existing, nil
	}
	entry = s.newEntry(record)
	s.entries[id] = entry

	return entry, nil
}

func (s *SessionService) newEntry(record *domain.Session) *sessionEntry {
	return &sessionEntry{
		detector: liveness.NewSession(s.config, nil),
		record:   record,
	}
}

// syncRecord copies the detector state onto the row and extends the expiry.
// Callers hold entry.mu.
func (s *SessionService) syncRecord(entry *sessionEntry) {
	entry.record.Active = entry.detector.Mode() == liveness.ModeActive
	entry.record.Failed = entry.detector.Failed()
	entry.record.Score = entry.detector.Score()
	entry.record.ExpiresAt = time.Now().Add(s.ttl)
}

func (s *SessionService) persist(ctx context.Context, entry *sessionEntry) error {
	if err := s.repo.UpdateState(ctx, entry.record); err != nil {
		return fmt.Errorf("session %s: %w", entry.record.ID, err)
	}
	return nil
}
