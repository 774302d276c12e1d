package gemini

import "errors"

var (
	ErrMissingAPIKey   = errors.New("gemini API key is required")
	ErrEmptyResponse   = errors.New("no response from Gemini API")
	ErrInvalidResponse = errors.New("unexpected response format from Gemini API")
)
