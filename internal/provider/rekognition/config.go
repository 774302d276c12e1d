package rekognition

// Config holds configuration for the AWS Rekognition analyzer
type Config struct {
	// Region is the AWS region where Rekognition service will be used (e.g., "us-east-1")
	Region string

	// MinConfidence is the detection confidence (0-100) below which a face is
	// treated as unreliable
	MinConfidence float32
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:        "us-east-1",
		MinConfidence: 90,
	}
}
