package domain

// Challenges is the loosely typed per-participant metrics bag. Upstream adds
// and drops keys between patches, so every read goes through an accessor that
// makes absence explicit.
type Challenges map[string]any

// Well-known challenge keys read by the scoring code.
const (
	ChallengeKDA                  = "kda"
	ChallengeKillParticipation    = "killParticipation"
	ChallengeTeamDamagePercentage = "teamDamagePercentage"
	ChallengeGoldPerMinute        = "goldPerMinute"
	ChallengeVisionScorePerMinute = "visionScorePerMinute"
)

// Float returns the numeric value stored under key. A missing key or a value
// that is not a number reports false.
func (c Challenges) Float(key string) (float64, bool) {
	v, ok := c[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func (c Challenges) FloatOr(key string, fallback float64) float64 {
	if v, ok := c.Float(key); ok {
		return v
	}
	return fallback
}
