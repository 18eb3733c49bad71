package models

// PromptScore is the score of the target entity for one (prompt, backend)
// pair.
type PromptScore struct {
	EntityName         string             `json:"entity_name"`
	PromptID           string             `json:"prompt_id"`
	Backend            string             `json:"backend"`
	RawScore           float64            `json:"raw_score"`
	Weight             float64            `json:"weight"`
	WeightedScore      float64            `json:"weighted_score"`
	Position           *int               `json:"position,omitempty"`
	RecommendationType RecommendationType `json:"recommendation_type"`
	Context            string             `json:"context,omitempty"`
}

// Mentioned reports whether this score came from an actual mention.
func (s PromptScore) Mentioned() bool {
	return s.RecommendationType != RecommendationNotMentioned
}

// BackendScore is the aggregate restricted to one backend's prompt scores.
type BackendScore struct {
	Backend     string   `json:"backend"`
	Score       float64  `json:"score"`
	MentionRate float64  `json:"mention_rate"`
	PromptCount int      `json:"prompt_count"`
	AvgPosition *float64 `json:"avg_position,omitempty"`
}

// DimensionScore is the aggregate restricted to one prompt dimension.
type DimensionScore struct {
	Dimension   Dimension `json:"dimension"`
	Score       float64   `json:"score"`
	MentionRate float64   `json:"mention_rate"`
	PromptCount int       `json:"prompt_count"`
	AvgPosition *float64  `json:"avg_position,omitempty"`
}

// ScoreInterval is a bootstrap confidence interval over per-prompt weighted
// scores, populated when enough samples exist.
type ScoreInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Mean  float64 `json:"mean"`
}

// AggregateScore is the composite visibility index for one entity over one
// run. An empty run produces the zero value, never NaN.
type AggregateScore struct {
	EntityName    string             `json:"entity_name"`
	OverallScore  float64            `json:"overall_score"`
	MentionRate   float64            `json:"mention_rate"`
	MentionsCount int                `json:"mentions_count"`
	TotalPrompts  int                `json:"total_prompts"`
	BackendScores map[string]float64 `json:"backend_scores,omitempty"`
	Backends      []BackendScore     `json:"backends,omitempty"`
	PromptScores  []PromptScore      `json:"prompt_scores,omitempty"`
	Interval      *ScoreInterval     `json:"interval,omitempty"`
}

// SeverityBand classifies an overall score for display and triage.
type SeverityBand string

const (
	BandCritical     SeverityBand = "critical"
	BandPoor         SeverityBand = "poor"
	BandBelowAverage SeverityBand = "below_avg"
	BandModerate     SeverityBand = "moderate"
	BandGood         SeverityBand = "good"
	BandStrong       SeverityBand = "strong"
	BandDominant     SeverityBand = "dominant"
)

// SeverityFor maps a 0-100 score to its severity band.
func SeverityFor(score float64) SeverityBand {
	switch {
	case score <= 15:
		return BandCritical
	case score <= 30:
		return BandPoor
	case score <= 45:
		return BandBelowAverage
	case score <= 60:
		return BandModerate
	case score <= 75:
		return BandGood
	case score <= 90:
		return BandStrong
	default:
		return BandDominant
	}
}
