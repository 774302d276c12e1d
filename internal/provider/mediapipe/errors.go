package mediapipe

import "errors"

var (
	ErrLandmarkerUnavailable = errors.New("face landmarker service unavailable")
	ErrLandmarkerNotReady    = errors.New("face landmarker model not loaded")
	ErrInvalidResponse       = errors.New("invalid response from face landmarker")
	ErrMalformedMesh         = errors.New("malformed landmark mesh")
)
