package models

import "time"

// PromptResult is the outcome of one (prompt, backend) pair: the raw reply
// plus everything the parser extracted about the target brand. A failed
// pair carries Error and contributes a "not mentioned" score downstream.
type PromptResult struct {
	PromptID     string    `json:"prompt_id"`
	PromptText   string    `json:"prompt_text"`
	Dimension    Dimension `json:"dimension"`
	Persona      string    `json:"persona,omitempty"`
	Topic        string    `json:"topic,omitempty"`
	Weight       float64   `json:"weight"`
	Backend      string    `json:"backend"`
	ModelVersion string    `json:"model_version,omitempty"`
	RawReply     string    `json:"raw_reply,omitempty"`
	LatencyMs    int64     `json:"latency_ms"`
	TokensUsed   int       `json:"tokens_used,omitempty"`
	Error        string    `json:"error,omitempty"`

	Mentions []ParsedMention `json:"mentions,omitempty"`

	// Target-brand extraction, filled when the brand appears in Mentions.
	BrandMentioned     bool               `json:"brand_mentioned"`
	Position           *int               `json:"position,omitempty"`
	RecommendationType RecommendationType `json:"recommendation_type"`
	Sentiment          Sentiment          `json:"sentiment"`
	Confidence         float64            `json:"confidence"`
	Context            string             `json:"context,omitempty"`
}

// AnalysisResult holds the aggregate statistics the pattern detectors
// consume: the four-factor composite plus every breakdown.
type AnalysisResult struct {
	OverallScore float64      `json:"overall_score"`
	Severity     SeverityBand `json:"severity"`

	// Four-factor scores, each 0-100.
	MentionFrequency  float64 `json:"mention_frequency"`
	PositionQuality   float64 `json:"position_quality"`
	NarrativeAccuracy float64 `json:"narrative_accuracy"`
	FounderRetrieval  float64 `json:"founder_retrieval"`

	DimensionScores        []DimensionScore   `json:"dimension_scores"`
	BackendScores          []BackendScore     `json:"backend_scores"`
	PersonaMentionRates    map[string]float64 `json:"persona_mention_rates,omitempty"`
	TopicMentionRates      map[string]float64 `json:"topic_mention_rates,omitempty"`
	CompetitorMentionRates map[string]float64 `json:"competitor_mention_rates,omitempty"`

	TotalPrompts   int `json:"total_prompts"`
	TotalResponses int `json:"total_responses"`
	MentionsCount  int `json:"mentions_count"`
	ErrorCount     int `json:"error_count"`

	TotalTokens      int     `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

// Dimension returns the score entry for dim, or nil when the run had no
// prompts in that dimension.
func (a *AnalysisResult) Dimension(dim Dimension) *DimensionScore {
	for i := range a.DimensionScores {
		if a.DimensionScores[i].Dimension == dim {
			return &a.DimensionScores[i]
		}
	}
	return nil
}

// AuditOutcome is the complete result of one audit run.
type AuditOutcome struct {
	RunID       string    `json:"run_id"`
	CompanyName string    `json:"company_name"`
	Domain      string    `json:"domain,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	DurationMs  int64     `json:"duration_ms"`

	Aggregate AggregateScore    `json:"aggregate"`
	Analysis  AnalysisResult    `json:"analysis"`
	Patterns  []DetectedPattern `json:"patterns"`
	Gaps      []GapRecord       `json:"gaps"`
	Results   []PromptResult    `json:"results,omitempty"`

	Backends []string `json:"backends"`
}
