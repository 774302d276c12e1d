package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider"
)

type rawVerdict struct {
	TrustScore  float64 `json:"trust_score"`
	VisualScore float64 `json:"visual_score"`
	LogicScore  float64 `json:"logic_score"`
	IsFake      bool    `json:"is_fake"`
	Reason      string  `json:"reason"`
}

// parseVerdict extracts the JSON object from a model reply. The model
// sometimes wraps it in ```json fences or surrounds it with prose.
func parseVerdict(text string) (*domain.Verdict, error) {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in %q", ErrInvalidResponse, truncate(clean, 120))
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(clean[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return &domain.Verdict{
		TrustScore:  provider.ClampScore(int(raw.TrustScore)),
		VisualScore: provider.ClampScore(int(raw.VisualScore)),
		LogicScore:  provider.ClampScore(int(raw.LogicScore)),
		IsFake:      raw.IsFake,
		Reason:      strings.TrimSpace(raw.Reason),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
