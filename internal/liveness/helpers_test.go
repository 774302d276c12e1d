package liveness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/callguard/internal/landmark"
)

// faceSpec describes a synthetic face in terms of the signals it should produce.
type faceSpec struct {
	depth      float64
	visibility float64
	leftEAR    float64
	rightEAR   float64
	irisX      float64
	noseX      float64
}

// liveFace returns a frontal, sharp, open-eyed face. step shifts the iris so
// consecutive frames are never static.
func liveFace(step int) faceSpec {
	return faceSpec{
		depth:      0.06,
		visibility: 0.95,
		leftEAR:    0.03,
		rightEAR:   0.03,
		irisX:      0.45 + float64(step)*0.002,
		noseX:      0.5,
	}
}

func buildSet(t *testing.T, f faceSpec) *landmark.Set {
	t.Helper()

	edge := landmark.Point{Visibility: f.visibility}
	leftEdge := edge
	leftEdge.X = 0.3
	rightEdge := edge
	rightEdge.X = 0.7

	set, err := landmark.NewSet(map[landmark.Role]landmark.Point{
		landmark.NoseTip:          {X: f.noseX, Y: 0.55, Z: -f.depth, Visibility: 0.99},
		landmark.LeftEar:          leftEdge,
		landmark.RightEar:         rightEdge,
		landmark.LeftEyeUpperLid:  {X: 0.42, Y: 0.40, Visibility: 0.99},
		landmark.LeftEyeLowerLid:  {X: 0.42, Y: 0.40 + f.leftEAR, Visibility: 0.99},
		landmark.RightEyeUpperLid: {X: 0.58, Y: 0.40, Visibility: 0.99},
		landmark.RightEyeLowerLid: {X: 0.58, Y: 0.40 + f.rightEAR, Visibility: 0.99},
		landmark.Forehead:         {X: 0.5, Y: 0.15, Visibility: f.visibility},
		landmark.Chin:             {X: 0.5, Y: 0.9, Visibility: f.visibility},
		landmark.LeftCheekEdge:    leftEdge,
		landmark.RightCheekEdge:   rightEdge,
		landmark.LeftIris:         {X: f.irisX, Y: 0.41, Visibility: 0.99},
		landmark.RightIris:        {X: f.irisX + 0.16, Y: 0.41, Visibility: 0.99},
	})
	require.NoError(t, err)
	return set
}
