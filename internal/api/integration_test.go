//go:build integration

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/callguard/internal/audit"
	"github.com/saturnino-fabrica-de-software/callguard/internal/cache"
	"github.com/saturnino-fabrica-de-software/callguard/internal/database"
	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
	"github.com/saturnino-fabrica-de-software/callguard/internal/liveness"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/callguard/internal/ratelimit"
	"github.com/saturnino-fabrica-de-software/callguard/internal/repository"
	"github.com/saturnino-fabrica-de-software/callguard/internal/service"
	"github.com/saturnino-fabrica-de-software/callguard/internal/ws"
)

const testAPIKey = "integration-key"

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(runMain(m))
}

func runMain(m *testing.M) int {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "callguard_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Printf("Failed to start container: %v\n", err)
		return 1
	}

	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}()

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432")

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/callguard_test?sslmode=disable", host, port.Port())

	sqlDB, err := database.OpenSQL(ctx, connStr)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	if err := database.MigrateUp(sqlDB, "callguard_test"); err != nil {
		fmt.Printf("Failed to run migrations: %v\n", err)
		return 1
	}
	_ = sqlDB.Close()

	testDB, err = pgxpool.New(ctx, connStr)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		return 1
	}
	defer testDB.Close()

	return m.Run()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newIntegrationRouter wires the real services over the test database with
// mock providers.
func newIntegrationRouter(t *testing.T) *Router {
	t.Helper()

	logger := testLogger()

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	landmarks := mock.NewLandmarkProvider()
	limiter := ratelimit.NewRateLimiter(testDB, time.Minute)
	verdicts := cache.NewVerdictCache(cache.NewPGCache(testDB), time.Minute)

	sessions := service.NewSessionService(
		repository.NewSessionRepository(testDB),
		limiter,
		hub,
		audit.NewSlogLogger(logger),
		logger,
		liveness.DefaultConfig(),
	)
	scans := service.NewScanService(
		sessions,
		repository.NewScanRepository(testDB),
		landmarks,
		mock.NewAnalyzer(),
		logger,
	).WithCache(verdicts).WithScanLimit(60)

	router := NewRouter(logger, &Dependencies{
		Sessions:  sessions,
		Scans:     scans,
		Hub:       hub,
		DB:        testDB,
		Landmarks: landmarks,
		APIKey:    testAPIKey,
	})
	router.Setup()
	t.Cleanup(func() { _ = router.Shutdown() })

	return router
}

func authed(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func frameForm(t *testing.T, frame []byte, transcript string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("transcript", transcript))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="frame.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(frame)
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func fakeFrame(seed byte) []byte {
	frame := bytes.Repeat([]byte{seed}, 4096)
	copy(frame, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return frame
}

func TestIntegration_HealthEndpoint(t *testing.T) {
	router := NewRouter(testLogger(), nil)
	router.Setup()

	resp, err := router.App().Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result["status"])
}

func TestIntegration_ReadyEndpoint(t *testing.T) {
	router := newIntegrationRouter(t)

	resp, err := router.App().Test(httptest.NewRequest("GET", "/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result["database"])
	assert.Equal(t, "ready", result["landmarker"])
}

func TestIntegration_NotFoundReturns404(t *testing.T) {
	router := NewRouter(testLogger(), nil)
	router.Setup()

	resp, err := router.App().Test(httptest.NewRequest("GET", "/nonexistent", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestIntegration_RequiresAPIKey(t *testing.T) {
	router := newIntegrationRouter(t)

	resp, err := router.App().Test(httptest.NewRequest("POST", "/v1/sessions", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestIntegration_SessionLifecycle(t *testing.T) {
	router := newIntegrationRouter(t)
	app := router.App()

	// open
	resp, err := app.Test(authed("POST", "/v1/sessions", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	var session domain.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.False(t, session.Active)
	base := "/v1/sessions/" + session.ID.String()

	// activate
	resp, err = app.Test(authed("POST", base+"/activate", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	// scan two frames
	for i := 0; i < 2; i++ {
		body, contentType := frameForm(t, fakeFrame(byte(i+1)), "hi, it's me")
		req := authed("POST", base+"/scan", body)
		req.Header.Set("Content-Type", contentType)

		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var scan domain.Scan
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&scan))
		assert.Equal(t, session.ID, scan.SessionID)
		assert.Equal(t, "mock", scan.Analyzer)
		assert.False(t, scan.Failed)
	}

	// history
	resp, err = app.Test(authed("GET", base+"/scans?limit=10", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var history struct {
		Scans []domain.Scan `json:"scans"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	assert.Len(t, history.Scans, 2)

	// persisted state
	resp, err = app.Test(authed("GET", base, nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var current domain.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&current))
	assert.True(t, current.Active)
	assert.Equal(t, 2, current.ScanCount)

	// close
	resp, err = app.Test(authed("DELETE", base, nil), -1)
	require.NoError(t, err)
	require.Equal(t, 204, resp.StatusCode)

	resp, err = app.Test(authed("POST", base+"/activate", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}

func TestIntegration_AnalyzeWithoutSession(t *testing.T) {
	router := newIntegrationRouter(t)

	body, contentType := frameForm(t, fakeFrame(7), "please wire the money today")
	req := authed("POST", "/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := router.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var verdict domain.Verdict
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verdict))
	assert.False(t, verdict.IsFake)
	assert.GreaterOrEqual(t, verdict.TrustScore, 0)
	assert.LessOrEqual(t, verdict.TrustScore, 100)
}

func TestIntegration_UnknownSession(t *testing.T) {
	router := newIntegrationRouter(t)

	resp, err := router.App().Test(authed("GET", "/v1/sessions/6f1c3a5e-8d2b-4f7a-9c1e-2b3d4e5f6a7b", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
