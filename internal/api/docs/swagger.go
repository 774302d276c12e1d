package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// VerdictResponse is the forensic analyzer's judgment of one frame
type VerdictResponse struct {
	TrustScore  int    `json:"trust_score" example:"87"`
	VisualScore int    `json:"visual_score" example:"92"`
	LogicScore  int    `json:"logic_score" example:"81"`
	IsFake      bool   `json:"is_fake" example:"false"`
	Reason      string `json:"reason" example:"Lighting and speech are consistent with a live caller."`
}

// SessionResponse represents a guarded call session
type SessionResponse struct {
	ID        string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Label     string  `json:"label" example:"Normal"`
	Active    bool    `json:"active" example:"true"`
	Failed    bool    `json:"failed" example:"false"`
	Score     float64 `json:"score" example:"1.5"`
	ScanCount int     `json:"scan_count" example:"12"`
	ExpiresAt string  `json:"expires_at" example:"2024-01-01T00:30:00Z"`
	CreatedAt string  `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt string  `json:"updated_at" example:"2024-01-01T00:05:00Z"`
	ClosedAt  string  `json:"closed_at,omitempty" example:""`
}

// ScanResponse represents one evaluated frame
type ScanResponse struct {
	ID        string          `json:"id" example:"7b0c1c5e-4f7e-4c61-9c8a-3d5c9a1e2f10"`
	SessionID string          `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Label     string          `json:"label" example:"PHYSICAL_FAIL_Z_DEPTH"`
	Failed    bool            `json:"failed" example:"true"`
	Score     float64         `json:"score" example:"21"`
	Inert     bool            `json:"inert" example:"false"`
	Verdict   VerdictResponse `json:"verdict"`
	Analyzer  string          `json:"analyzer" example:"gemini"`
	Cached    bool            `json:"cached" example:"false"`
	LatencyMs int64           `json:"latency_ms" example:"840"`
	CreatedAt string          `json:"created_at" example:"2024-01-01T00:05:00Z"`
}

// ScanHistoryResponse lists recent scans of a session
type ScanHistoryResponse struct {
	SessionID string         `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Scans     []ScanResponse `json:"scans"`
}

// LandmarkPoint is one normalized face mesh point
type LandmarkPoint struct {
	X          float64 `json:"x" example:"0.51"`
	Y          float64 `json:"y" example:"0.47"`
	Z          float64 `json:"z" example:"-0.06"`
	Visibility float64 `json:"visibility" example:"0.98"`
}

// EvaluateRequest carries a 478-point face mesh resolved on the client
type EvaluateRequest struct {
	Landmarks []LandmarkPoint `json:"landmarks"`
}

// FeaturesData is the per-frame signal bundle
type FeaturesData struct {
	DepthDelta          float64 `json:"depth_delta" example:"0.012"`
	IsFlat              bool    `json:"is_flat" example:"true"`
	PerimeterVisibility float64 `json:"perimeter_visibility" example:"0.91"`
	IsBlurryBoundary    bool    `json:"is_blurry_boundary" example:"false"`
	LeftEAR             float64 `json:"left_ear" example:"0.031"`
	RightEAR            float64 `json:"right_ear" example:"0.029"`
	IsSquinting         bool    `json:"is_squinting" example:"false"`
	IrisX               float64 `json:"iris_x" example:"0.452"`
	IsUnnaturallyStatic bool    `json:"is_unnaturally_static" example:"false"`
	YawRatio            float64 `json:"yaw_ratio" example:"1.02"`
	IsExtremeProfile    bool    `json:"is_extreme_profile" example:"false"`
}

// EvaluateResponse is the detector outcome for one landmark set
type EvaluateResponse struct {
	SessionID string        `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Label     string        `json:"label" example:"Normal"`
	Failed    bool          `json:"failed" example:"false"`
	Score     float64       `json:"score" example:"0"`
	Inert     bool          `json:"inert" example:"false"`
	Features  *FeaturesData `json:"features,omitempty"`
}

// HealthResponse reports service status
type HealthResponse struct {
	Status     string `json:"status" example:"ready"`
	Version    string `json:"version,omitempty" example:"0.1.0"`
	Database   string `json:"database,omitempty" example:"ok"`
	Landmarker string `json:"landmarker,omitempty" example:"loading"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

var (
	errUnauthorized    = response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized")
	errSessionNotFound = response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found")
	errSessionClosed   = response.New(ErrorResponse{Code: "SESSION_CLOSED", Message: "Session has been closed"}, "409", "Conflict")
	errSessionExpired  = response.New(ErrorResponse{Code: "SESSION_EXPIRED", Message: "Session has expired"}, "410", "Gone")
	errValidation      = response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity")
	errInvalidImage    = response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format or corrupted file"}, "422", "Unprocessable Entity")
	errRateLimit       = response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests")
	errInternal        = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")

	apiKeyAuth = []map[string][]string{{"ApiKeyAuth": {}}}
)

func sessionIDParam() *parameter.Parameter {
	return parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session ID (UUID)"))
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Callguard API",
		Version:     "v1.0.0",
		Description: "Real-time impersonation detection for video calls: face liveness scoring plus forensic frame analysis",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/analyze - one-off analysis
		endpoint.New(
			endpoint.POST,
			"/analyze",
			endpoint.WithTags("Analysis"),
			endpoint.WithSummary("Analyze a single frame"),
			endpoint.WithDescription("Runs the forensic analyzer on an uploaded frame and optional transcript. Analyzer failures return trust_score 0 with reason \"Analysis Engine Error\"."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerdictResponse{}, "200", "Analysis completed"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errValidation, errInvalidImage, errRateLimit, errInternal}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// POST /v1/sessions
		endpoint.New(
			endpoint.POST,
			"/sessions",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Open a session"),
			endpoint.WithDescription("Opens an idle guarded call session. Liveness checking starts on activate."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "201", "Session created"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errInternal}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/sessions/:id
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Get a session"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionIDParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Session retrieved"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errSessionNotFound, errValidation, errInternal}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// DELETE /v1/sessions/:id
		endpoint.New(
			endpoint.DELETE,
			"/sessions/{id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Close a session"),
			endpoint.WithDescription("Tears the session down and discards all liveness evidence"),
			endpoint.WithParams(sessionIDParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Session closed"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errSessionNotFound, errInternal}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// POST /v1/sessions/:id/activate
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/activate",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Start active liveness checking"),
			endpoint.WithDescription("Moves the session to active checking. Evidence from an earlier activation is discarded unless LIVENESS_RESUME_POLICY=keep."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionIDParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Session activated"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errSessionNotFound, errSessionClosed, errSessionExpired, errInternal}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// POST /v1/sessions/:id/deactivate
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/deactivate",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Pause liveness checking"),
			endpoint.WithDescription("Frames are no longer evaluated; the evidence score is frozen"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionIDParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Session deactivated"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errSessionNotFound, errSessionClosed, errSessionExpired, errInternal}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// POST /v1/sessions/:id/scan
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/scan",
			endpoint.WithTags("Scans"),
			endpoint.WithSummary("Scan a frame"),
			endpoint.WithDescription("Runs landmark detection and liveness scoring, then the forensic analyzer with the liveness label attached"),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionIDParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ScanResponse{}, "200", "Frame scanned"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errSessionNotFound, errSessionClosed, errSessionExpired, errValidation, errInvalidImage, errRateLimit, errInternal}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// POST /v1/sessions/:id/evaluate
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/evaluate",
			endpoint.WithTags("Scans"),
			endpoint.WithSummary("Evaluate client-side landmarks"),
			endpoint.WithDescription("Feeds a face mesh computed on the client straight into the liveness detector. An empty mesh means no face was found."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionIDParam()),
			endpoint.WithBody(EvaluateRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EvaluateResponse{}, "200", "Landmarks evaluated"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				errSessionNotFound,
				response.New(ErrorResponse{Code: "INVALID_LANDMARKS", Message: "Landmark mesh is incomplete or malformed"}, "422", "Unprocessable Entity"),
				errInternal,
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/sessions/:id/scans
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}/scans",
			endpoint.WithTags("Scans"),
			endpoint.WithSummary("List recent scans"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				sessionIDParam(),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of scans (1-50, default: 20)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ScanHistoryResponse{}, "200", "Scans retrieved"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errSessionNotFound, errValidation, errInternal}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/sessions/:id/ws
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}/ws",
			endpoint.WithTags("Events"),
			endpoint.WithSummary("Subscribe to session events"),
			endpoint.WithDescription("WebSocket upgrade. Pushes scan.completed, liveness.failed and session.closed events."),
			endpoint.WithParams(sessionIDParam()),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "HTTP_ERROR", Message: "Upgrade Required"}, "426", "Upgrade Required"),
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
