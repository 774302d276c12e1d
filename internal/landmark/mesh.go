package landmark

import "fmt"

// Face mesh indices following the MediaPipe face landmarker convention
// (478 points with iris refinement).
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	MeshNoseTip          = 1
	MeshForehead         = 10
	MeshLeftEyeLowerLid  = 145
	MeshChin             = 152
	MeshLeftEyeUpperLid  = 159
	MeshLeftFaceEdge     = 234
	MeshRightEyeLowerLid = 374
	MeshRightEyeUpperLid = 386
	MeshRightFaceEdge    = 454
	MeshLeftIrisCenter   = 468
	MeshRightIrisCenter  = 473
	MeshSize             = 478
)

// meshIndex maps each role onto its face mesh index. The face edge points
// double as the ear plane for depth and yaw.
var meshIndex = map[Role]int{
	NoseTip:          MeshNoseTip,
	LeftEar:          MeshLeftFaceEdge,
	RightEar:         MeshRightFaceEdge,
	LeftEyeUpperLid:  MeshLeftEyeUpperLid,
	LeftEyeLowerLid:  MeshLeftEyeLowerLid,
	RightEyeUpperLid: MeshRightEyeUpperLid,
	RightEyeLowerLid: MeshRightEyeLowerLid,
	Forehead:         MeshForehead,
	Chin:             MeshChin,
	LeftCheekEdge:    MeshLeftFaceEdge,
	RightCheekEdge:   MeshRightFaceEdge,
	LeftIris:         MeshLeftIrisCenter,
	RightIris:        MeshRightIrisCenter,
}

// FromMesh builds a Set from a full face mesh.
func FromMesh(mesh []Point) (*Set, error) {
	if len(mesh) < MeshSize {
		return nil, fmt.Errorf("%w: mesh has %d points, want %d", ErrIncompleteSet, len(mesh), MeshSize)
	}

	points := make(map[Role]Point, len(meshIndex))
	for role, idx := range meshIndex {
		points[role] = mesh[idx]
	}
	return NewSet(points)
}
