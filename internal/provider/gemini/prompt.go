package gemini

import (
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/callguard/internal/provider"
)

const promptTemplate = `You are a forensic deepfake analyst. Analyze this video frame and the context.
TRANSCRIPT CONTEXT: %q
%s
Evaluate three specific pillars:
1. VISUAL: Look for jawline flickering, lighting mismatches, or screen-door effects.
2. LOGIC: Is the transcript using high-pressure scam tactics?
3. CONSISTENCY: Does the face look like a natural human interaction?

RETURN ONLY A VALID JSON OBJECT:
{
  "trust_score": (int 0-100),
  "visual_score": (int 0-100),
  "logic_score": (int 0-100),
  "is_fake": (boolean),
  "reason": "Short one-sentence explanation"
}`

func buildPrompt(req provider.AnalysisRequest) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(req.Transcript), livenessContext(req))
}

// livenessContext describes the on-device detector result, if any
func livenessContext(req provider.AnalysisRequest) string {
	if req.LivenessLabel == "" {
		return ""
	}
	if req.AdhesionFailure {
		return fmt.Sprintf("LIVENESS SENSOR: FAILED (%s). The landmark tracker saw a flat or blurred face over several frames; weigh this as strong evidence of a replayed or printed face.\n", req.LivenessLabel)
	}
	return fmt.Sprintf("LIVENESS SENSOR: %s. The landmark tracker has not accumulated enough evidence to fail this subject.\n", req.LivenessLabel)
}
