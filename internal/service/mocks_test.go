package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
	"github.com/saturnino-fabrica-de-software/callguard/internal/landmark"
	"github.com/saturnino-fabrica-de-software/callguard/internal/liveness"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider"
	"github.com/saturnino-fabrica-de-software/callguard/internal/ws"
)

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) UpdateState(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Close(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) ListExpired(ctx context.Context, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockScanRepository struct {
	mock.Mock
}

func (m *MockScanRepository) Create(ctx context.Context, scan *domain.Scan) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

func (m *MockScanRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Scan, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Scan), args.Error(1)
}

type MockLandmarkProvider struct {
	mock.Mock
}

func (m *MockLandmarkProvider) Ready() bool {
	return m.Called().Bool(0)
}

func (m *MockLandmarkProvider) Detect(ctx context.Context, frame []byte) (*landmark.Set, error) {
	args := m.Called(ctx, frame)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*landmark.Set), args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Name() string {
	return "test"
}

func (m *MockAnalyzer) Analyze(ctx context.Context, req provider.AnalysisRequest) (*domain.Verdict, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Verdict), args.Error(1)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) CheckScanLimit(ctx context.Context, sessionID uuid.UUID, limit int) error {
	args := m.Called(ctx, sessionID, limit)
	return args.Error(0)
}

func (m *MockLimiter) ResetLimit(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(sessionID uuid.UUID, eventType ws.EventType, data interface{}) {
	m.Called(sessionID, eventType, data)
}

type MockVerdictCache struct {
	mock.Mock
}

func (m *MockVerdictCache) Get(ctx context.Context, key string) (*domain.Verdict, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Verdict), args.Bool(1), args.Error(2)
}

func (m *MockVerdictCache) Set(ctx context.Context, key string, v *domain.Verdict) error {
	args := m.Called(ctx, key, v)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires a SessionService and ScanService over mocks
type fixture struct {
	sessionRepo *MockSessionRepository
	scanRepo    *MockScanRepository
	landmarks   *MockLandmarkProvider
	analyzer    *MockAnalyzer
	limiter     *MockLimiter
	publisher   *MockPublisher
	sessions    *SessionService
	scans       *ScanService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		sessionRepo: new(MockSessionRepository),
		scanRepo:    new(MockScanRepository),
		landmarks:   new(MockLandmarkProvider),
		analyzer:    new(MockAnalyzer),
		limiter:     new(MockLimiter),
		publisher:   new(MockPublisher),
	}

	f.sessions = NewSessionService(f.sessionRepo, f.limiter, f.publisher, nil, testLogger(), liveness.DefaultConfig())
	f.scans = NewScanService(f.sessions, f.scanRepo, f.landmarks, f.analyzer, testLogger()).WithScanLimit(60)

	return f
}

// openSession registers an open session directly, bypassing Create
func (f *fixture) openSession(active bool) uuid.UUID {
	record := &domain.Session{ID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	entry := f.sessions.newEntry(record)
	if active {
		entry.detector.Activate()
		record.Active = true
	}

	f.sessions.mu.Lock()
	f.sessions.entries[record.ID] = entry
	f.sessions.mu.Unlock()

	return record.ID
}

func faceSet(t *testing.T, depth float64, irisX float64) *landmark.Set {
	t.Helper()

	edge := func(x float64) landmark.Point {
		return landmark.Point{X: x, Y: 0.5, Visibility: 0.95}
	}

	set, err := landmark.NewSet(map[landmark.Role]landmark.Point{
		landmark.NoseTip:          {X: 0.5, Y: 0.55, Z: -depth, Visibility: 0.99},
		landmark.LeftEar:          edge(0.3),
		landmark.RightEar:         edge(0.7),
		landmark.LeftEyeUpperLid:  {X: 0.42, Y: 0.40, Visibility: 0.99},
		landmark.LeftEyeLowerLid:  {X: 0.42, Y: 0.43, Visibility: 0.99},
		landmark.RightEyeUpperLid: {X: 0.58, Y: 0.40, Visibility: 0.99},
		landmark.RightEyeLowerLid: {X: 0.58, Y: 0.43, Visibility: 0.99},
		landmark.Forehead:         {X: 0.5, Y: 0.15, Visibility: 0.95},
		landmark.Chin:             {X: 0.5, Y: 0.9, Visibility: 0.95},
		landmark.LeftCheekEdge:    edge(0.3),
		landmark.RightCheekEdge:   edge(0.7),
		landmark.LeftIris:         {X: irisX, Y: 0.41, Visibility: 0.99},
		landmark.RightIris:        {X: irisX + 0.16, Y: 0.41, Visibility: 0.99},
	})
	require.NoError(t, err)
	return set
}

// flatFace is a printed photo: no nose depth, moving iris
func flatFace(t *testing.T, step int) *landmark.Set {
	return faceSet(t, 0.0, 0.45+float64(step)*0.002)
}

func liveFace(t *testing.T, step int) *landmark.Set {
	return faceSet(t, 0.06, 0.45+float64(step)*0.002)
}
