package liveness

// Label is the diagnostic outcome of one evaluation.
type Label string

const (
	LabelNormal              Label = "Normal"
	LabelPhysicalFailBlur    Label = "PHYSICAL_FAIL_BLUR"
	LabelPhysicalFailZDepth  Label = "PHYSICAL_FAIL_Z_DEPTH"
	LabelBehavioralSquint    Label = "BEHAVIORAL_SQUINT"
	LabelBehavioralStaticEye Label = "BEHAVIORAL_STATIC_EYE"
)

func (l Label) String() string {
	return string(l)
}

// IsPhysicalFailure reports whether the label is one of the PHYSICAL_FAIL variants.
func (l Label) IsPhysicalFailure() bool {
	return l == LabelPhysicalFailBlur || l == LabelPhysicalFailZDepth
}

// Classify maps the failure flag and the latest features to a label.
// First match wins: failure, squint, static eye, normal.
func Classify(failed bool, f Features) Label {
	switch {
	case failed && f.IsBlurryBoundary:
		return LabelPhysicalFailBlur
	case failed:
		return LabelPhysicalFailZDepth
	case f.IsSquinting:
		return LabelBehavioralSquint
	case f.IsUnnaturallyStatic:
		return LabelBehavioralStaticEye
	default:
		return LabelNormal
	}
}
