package liveness

import (
	"math"

	"github.com/saturnino-fabrica-de-software/callguard/internal/landmark"
)

// Features is the per-frame signal bundle extracted from one landmark set.
type Features struct {
	DepthDelta float64 `json:"depth_delta"`
	IsFlat     bool    `json:"is_flat"`

	PerimeterVisibility float64 `json:"perimeter_visibility"`
	IsBlurryBoundary    bool    `json:"is_blurry_boundary"`

	LeftEAR     float64 `json:"left_ear"`
	RightEAR    float64 `json:"right_ear"`
	IsSquinting bool    `json:"is_squinting"`

	IrisX               float64 `json:"iris_x"`
	IsUnnaturallyStatic bool    `json:"is_unnaturally_static"`

	// YawRatio is informational: an extreme profile never adds evidence.
	YawRatio         float64 `json:"yaw_ratio"`
	IsExtremeProfile bool    `json:"is_extreme_profile"`
}

// Physical reports whether the frame carries physical-layer spoof evidence.
func (f Features) Physical() bool {
	return f.IsFlat || f.IsBlurryBoundary
}

// Behavioral reports whether the frame carries behavioral spoof evidence.
func (f Features) Behavioral() bool {
	return f.IsSquinting || f.IsUnnaturallyStatic
}

// Extract computes the feature bundle for set. previousIrisX is the tracked
// iris x from the prior frame; pass the current value on a first observation.
func Extract(set *landmark.Set, previousIrisX float64, th Thresholds) Features {
	nose := set.Point(landmark.NoseTip)
	leftEar := set.Point(landmark.LeftEar)
	rightEar := set.Point(landmark.RightEar)

	var f Features

	f.DepthDelta = math.Abs(nose.Z - (leftEar.Z+rightEar.Z)/2)
	f.IsFlat = f.DepthDelta < th.FlatDepth

	var visibility float64
	perimeter := set.Perimeter()
	for _, p := range perimeter {
		visibility += p.Visibility
	}
	f.PerimeterVisibility = visibility / float64(len(perimeter))
	f.IsBlurryBoundary = f.PerimeterVisibility < th.BoundaryVisibility

	f.LeftEAR = math.Abs(set.Point(landmark.LeftEyeUpperLid).Y - set.Point(landmark.LeftEyeLowerLid).Y)
	f.RightEAR = math.Abs(set.Point(landmark.RightEyeUpperLid).Y - set.Point(landmark.RightEyeLowerLid).Y)
	f.IsSquinting = f.LeftEAR < th.SquintEAR || f.RightEAR < th.SquintEAR

	f.IrisX = set.Point(landmark.LeftIris).X
	f.IsUnnaturallyStatic = math.Abs(f.IrisX-previousIrisX) < th.StaticIris

	f.YawRatio = math.Abs(nose.X-leftEar.X) / math.Max(math.Abs(nose.X-rightEar.X), th.YawEpsilon)
	f.IsExtremeProfile = f.YawRatio < th.ProfileYawMin || f.YawRatio > th.ProfileYawMax

	return f
}
