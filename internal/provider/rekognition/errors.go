package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage indicates the image is empty, too large or undecodable
	ErrInvalidImage = errors.New("invalid image for rekognition")

	// ErrThrottled indicates AWS rejected the call due to rate limits
	ErrThrottled = errors.New("rekognition request throttled")
)
