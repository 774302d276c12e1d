// Package landmark holds the facial landmark value types consumed by the liveness detector.
package landmark

import (
	"errors"
	"fmt"
)

// ErrIncompleteSet is returned when a landmark set is missing a tracked role.
var ErrIncompleteSet = errors.New("incomplete landmark set")

// Role identifies a tracked facial point by its anatomical meaning.
type Role int

const (
	NoseTip Role = iota
	LeftEar
	RightEar
	LeftEyeUpperLid
	LeftEyeLowerLid
	RightEyeUpperLid
	RightEyeLowerLid
	Forehead
	Chin
	LeftCheekEdge
	RightCheekEdge
	LeftIris
	RightIris
	numRoles
)

var roleNames = [numRoles]string{
	NoseTip:          "nose_tip",
	LeftEar:          "left_ear",
	RightEar:         "right_ear",
	LeftEyeUpperLid:  "left_eye_upper_lid",
	LeftEyeLowerLid:  "left_eye_lower_lid",
	RightEyeUpperLid: "right_eye_upper_lid",
	RightEyeLowerLid: "right_eye_lower_lid",
	Forehead:         "forehead",
	Chin:             "chin",
	LeftCheekEdge:    "left_cheek_edge",
	RightCheekEdge:   "right_cheek_edge",
	LeftIris:         "left_iris",
	RightIris:        "right_iris",
}

func (r Role) String() string {
	if r < 0 || r >= numRoles {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Roles returns every tracked role in declaration order.
func Roles() []Role {
	roles := make([]Role, 0, numRoles)
	for r := Role(0); r < numRoles; r++ {
		roles = append(roles, r)
	}
	return roles
}

// Point is a frame-normalized 3-D landmark.
// X and Y are in [0,1], Z is relative depth (negative is nearer the camera)
// and Visibility is the detector confidence that the point is a sharp facial boundary.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Set is the collection of tracked points for one face in one frame.
// A Set is complete by construction and never mutated after creation.
type Set struct {
	points [numRoles]Point
}

// NewSet builds a Set from points keyed by role.
// Every role must be present.
func NewSet(points map[Role]Point) (*Set, error) {
	s := &Set{}
	for r := Role(0); r < numRoles; r++ {
		p, ok := points[r]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrIncompleteSet, r)
		}
		s.points[r] = p
	}
	return s, nil
}

// Point returns the point for role. It panics on an unknown role: a Set
// always holds every tracked role, so a miss is a programming error.
func (s *Set) Point(r Role) Point {
	if r < 0 || r >= numRoles {
		panic(fmt.Sprintf("landmark: unknown role %d", int(r)))
	}
	return s.points[r]
}

// Perimeter returns the four face-boundary points used for edge sharpness.
func (s *Set) Perimeter() [4]Point {
	return [4]Point{
		s.points[Forehead],
		s.points[Chin],
		s.points[LeftCheekEdge],
		s.points[RightCheekEdge],
	}
}
