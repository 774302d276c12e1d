package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
)

const (
	errCodeAccessDenied          = "AccessDeniedException"
	errCodeInvalidParameter      = "InvalidParameterException"
	errCodeInvalidImageFormat    = "InvalidImageFormatException"
	errCodeImageTooLarge         = "ImageTooLargeException"
	errCodeThroughputExceeded    = "ProvisionedThroughputExceededException"
	errCodeThrottling            = "ThrottlingException"
	errCodeUnrecognizedClient    = "UnrecognizedClientException"
	errCodeInvalidSignature      = "InvalidSignatureException"
	errCodeExpiredToken          = "ExpiredTokenException"
	errCodeInternalServerFailure = "InternalServerError"
)

// RekognitionAPI is the subset of the Rekognition client the analyzer calls
type RekognitionAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Client wraps the AWS Rekognition client
type Client struct {
	api    RekognitionAPI
	config Config
}

// NewClient creates a new Rekognition client with the provided configuration
// It uses the AWS default credential chain to authenticate
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		api:    rekognition.NewFromConfig(awsCfg),
		config: cfg,
	}, nil
}

// NewClientWithAPI builds a Client around an existing API implementation
func NewClientWithAPI(api RekognitionAPI, cfg Config) *Client {
	return &Client{api: api, config: cfg}
}

// DetectFaces runs DetectFaces with every facial attribute requested
func (c *Client) DetectFaces(ctx context.Context, image []byte) ([]types.FaceDetail, error) {
	output, err := c.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return nil, parseAPIError(err)
	}

	return output.FaceDetails, nil
}

// parseAPIError maps AWS error codes onto package errors
func parseAPIError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("detect faces: %w", err)
	}

	switch apiErr.ErrorCode() {
	case errCodeAccessDenied, errCodeUnrecognizedClient, errCodeInvalidSignature, errCodeExpiredToken:
		return fmt.Errorf("detect faces: %w", ErrInvalidCredentials)
	case errCodeInvalidParameter, errCodeInvalidImageFormat, errCodeImageTooLarge:
		return fmt.Errorf("%w: %s", ErrInvalidImage, apiErr.ErrorMessage())
	case errCodeThroughputExceeded, errCodeThrottling:
		return fmt.Errorf("detect faces: %w", ErrThrottled)
	case errCodeInternalServerFailure:
		return fmt.Errorf("detect faces: rekognition internal error: %w", err)
	}

	return fmt.Errorf("detect faces: %w", err)
}
