package rekognition

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100

	// neutralLogicScore is reported because Rekognition cannot read the transcript
	neutralLogicScore = 50
	// fakeThreshold is the trust score below which a frame is called fake
	fakeThreshold = 50
)

// Analyzer implements provider.ForensicAnalyzer using AWS Rekognition.
// It judges image quality and face integrity only; the transcript is ignored.
type Analyzer struct {
	client *Client
}

var _ provider.ForensicAnalyzer = (*Analyzer)(nil)

// NewAnalyzer creates a Rekognition analyzer using the default AWS credential chain
func NewAnalyzer(ctx context.Context, cfg Config) (*Analyzer, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Analyzer{client: client}, nil
}

// NewAnalyzerWithClient creates an analyzer around an existing client
func NewAnalyzerWithClient(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

func (a *Analyzer) Name() string {
	return "rekognition"
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// Analyze scores the frame from Rekognition's face quality signals
func (a *Analyzer) Analyze(ctx context.Context, req provider.AnalysisRequest) (*domain.Verdict, error) {
	if err := validateImage(req.Image); err != nil {
		return nil, err
	}

	faces, err := a.client.DetectFaces(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	return a.judge(faces, req), nil
}

func (a *Analyzer) judge(faces []types.FaceDetail, req provider.AnalysisRequest) *domain.Verdict {
	var reasons []string

	visual := 0
	switch len(faces) {
	case 0:
		reasons = append(reasons, "no face visible")
	default:
		face := faces[0]
		visual = visualScore(face)
		if len(faces) > 1 {
			visual -= 20
			reasons = append(reasons, fmt.Sprintf("%d faces in frame", len(faces)))
		}
		if face.Confidence != nil && *face.Confidence < a.client.config.MinConfidence {
			reasons = append(reasons, fmt.Sprintf("low detection confidence %.1f", *face.Confidence))
		}
		if face.Quality != nil && face.Quality.Sharpness != nil && *face.Quality.Sharpness < 20 {
			reasons = append(reasons, "blurry face")
		}
	}
	visual = provider.ClampScore(visual)

	trust := (visual + neutralLogicScore) / 2
	isFake := trust < fakeThreshold

	if req.AdhesionFailure {
		isFake = true
		trust = provider.ClampScore(trust - 40)
		reasons = append(reasons, fmt.Sprintf("liveness check failed (%s)", req.LivenessLabel))
	}

	reason := "face looks natural"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}

	return &domain.Verdict{
		TrustScore:  trust,
		VisualScore: visual,
		LogicScore:  neutralLogicScore,
		IsFake:      isFake,
		Reason:      reason,
	}
}

// visualScore combines sharpness, brightness and detection confidence into 0..100
func visualScore(face types.FaceDetail) int {
	sharpness, brightness, confidence := 0.0, 0.0, 0.0

	if face.Quality != nil {
		if face.Quality.Sharpness != nil {
			sharpness = float64(*face.Quality.Sharpness)
		}
		if face.Quality.Brightness != nil {
			brightness = float64(*face.Quality.Brightness)
		}
	}
	if face.Confidence != nil {
		confidence = float64(*face.Confidence)
	}

	// Sharpness dominates: screen replays and printed photos lose detail first
	score := sharpness*0.5 + brightness*0.2 + confidence*0.3
	return int(math.Round(score))
}
