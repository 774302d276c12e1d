package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
	"github.com/saturnino-fabrica-de-software/callguard/internal/landmark"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider"
)

// minImageSize rejects obviously truncated uploads
const minImageSize = 1000

// Analyzer implements provider.ForensicAnalyzer for tests and development.
// Verdicts are derived from a hash of the image so repeated frames agree.
type Analyzer struct{}

var _ provider.ForensicAnalyzer = (*Analyzer)(nil)

// NewAnalyzer creates a mock analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Name() string {
	return "mock"
}

// Analyze returns a stable verdict for the image
func (a *Analyzer) Analyze(ctx context.Context, req provider.AnalysisRequest) (*domain.Verdict, error) {
	if len(req.Image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	seed := imageSeed(req.Image)
	visual := 70 + int(seed%30)
	logic := 60 + int((seed>>8)%40)
	trust := (visual + logic) / 2

	verdict := &domain.Verdict{
		TrustScore:  trust,
		VisualScore: visual,
		LogicScore:  logic,
		IsFake:      false,
		Reason:      "Mock analysis: no manipulation detected.",
	}

	if req.AdhesionFailure {
		verdict.TrustScore = 10
		verdict.IsFake = true
		verdict.Reason = "Mock analysis: liveness sensor reported " + req.LivenessLabel + "."
	}

	return verdict, nil
}

// LandmarkProvider implements provider.LandmarkProvider with a synthetic live
// face, so the detector can run without a landmarker sidecar.
type LandmarkProvider struct{}

var _ provider.LandmarkProvider = (*LandmarkProvider)(nil)

// NewLandmarkProvider creates a mock landmark provider
func NewLandmarkProvider() *LandmarkProvider {
	return &LandmarkProvider{}
}

// Ready always reports true
func (p *LandmarkProvider) Ready() bool {
	return true
}

// Detect returns a frontal 3-D face whose iris position varies with the frame
// content. Frames shorter than minImageSize are treated as containing no face.
func (p *LandmarkProvider) Detect(ctx context.Context, frame []byte) (*landmark.Set, error) {
	if len(frame) < minImageSize {
		return nil, nil
	}

	jitter := float64(imageSeed(frame)%100) * 0.0005
	mesh := make([]landmark.Point, landmark.MeshSize)
	for i := range mesh {
		mesh[i] = landmark.Point{X: 0.5, Y: 0.5, Visibility: 0.95}
	}

	mesh[landmark.MeshNoseTip] = landmark.Point{X: 0.5, Y: 0.55, Z: -0.07, Visibility: 0.99}
	mesh[landmark.MeshLeftFaceEdge] = landmark.Point{X: 0.3, Y: 0.5, Visibility: 0.93}
	mesh[landmark.MeshRightFaceEdge] = landmark.Point{X: 0.7, Y: 0.5, Visibility: 0.93}
	mesh[landmark.MeshForehead] = landmark.Point{X: 0.5, Y: 0.2, Visibility: 0.96}
	mesh[landmark.MeshChin] = landmark.Point{X: 0.5, Y: 0.85, Visibility: 0.94}
	mesh[landmark.MeshLeftEyeUpperLid] = landmark.Point{X: 0.42, Y: 0.40, Visibility: 0.98}
	mesh[landmark.MeshLeftEyeLowerLid] = landmark.Point{X: 0.42, Y: 0.43, Visibility: 0.98}
	mesh[landmark.MeshRightEyeUpperLid] = landmark.Point{X: 0.58, Y: 0.40, Visibility: 0.98}
	mesh[landmark.MeshRightEyeLowerLid] = landmark.Point{X: 0.58, Y: 0.43, Visibility: 0.98}
	mesh[landmark.MeshLeftIrisCenter] = landmark.Point{X: 0.42 + jitter, Y: 0.415, Visibility: 0.99}
	mesh[landmark.MeshRightIrisCenter] = landmark.Point{X: 0.58 + jitter, Y: 0.415, Visibility: 0.99}

	return landmark.FromMesh(mesh)
}

func imageSeed(image []byte) uint64 {
	sum := sha256.Sum256(image)
	return binary.BigEndian.Uint64(sum[:8])
}
