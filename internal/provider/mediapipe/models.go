package mediapipe

import "github.com/saturnino-fabrica-de-software/callguard/internal/landmark"

// HealthResponse from GET /health
type HealthResponse struct {
	Status string `json:"status"` // "loading" or "ready"
	Model  string `json:"model,omitempty"`
}

const statusReady = "ready"

// LandmarksRequest for POST /landmarks
type LandmarksRequest struct {
	Image    string `json:"image"` // base64 encoded frame
	MaxFaces int    `json:"max_faces"`
}

// LandmarksResponse from POST /landmarks
type LandmarksResponse struct {
	Faces []Face `json:"faces"`
}

// Face is one detected face mesh, normalized to the frame.
type Face struct {
	Landmarks []landmark.Point `json:"landmarks"`
}
