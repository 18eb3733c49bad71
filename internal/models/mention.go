package models

import "strings"

// RecommendationType classifies endorsement strength for a mention.
type RecommendationType string

const (
	RecommendationExplicit     RecommendationType = "explicit"
	RecommendationRanked       RecommendationType = "ranked"
	RecommendationListed       RecommendationType = "listed"
	RecommendationMentioned    RecommendationType = "mentioned"
	RecommendationNotMentioned RecommendationType = "not_mentioned"
)

// ParseRecommendationType maps a string to a RecommendationType, defaulting
// to "mentioned" for anything unrecognized.
func ParseRecommendationType(s string) RecommendationType {
	switch RecommendationType(s) {
	case RecommendationExplicit, RecommendationRanked, RecommendationListed,
		RecommendationMentioned, RecommendationNotMentioned:
		return RecommendationType(s)
	default:
		return RecommendationMentioned
	}
}

// Sentiment classifies the tone with which an entity was mentioned.
type Sentiment string

const (
	SentimentPositive   Sentiment = "positive"
	SentimentNeutral    Sentiment = "neutral"
	SentimentMixed      Sentiment = "mixed"
	SentimentCautionary Sentiment = "cautionary"
	SentimentNegative   Sentiment = "negative"
)

// ParseSentiment maps a string to a Sentiment, defaulting to neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(s) {
	case SentimentPositive, SentimentNeutral, SentimentMixed,
		SentimentCautionary, SentimentNegative:
		return Sentiment(s)
	default:
		return SentimentNeutral
	}
}

// ParsedMention is a single structured entity mention extracted from one
// backend reply. Position is nil when the entity was not part of a list.
type ParsedMention struct {
	EntityName         string             `json:"entity_name"`
	NormalizedName     string             `json:"normalized_name"`
	Position           *int               `json:"position,omitempty"`
	RecommendationType RecommendationType `json:"recommendation_type"`
	Sentiment          Sentiment          `json:"sentiment"`
	Context            string             `json:"context,omitempty"`
	Confidence         float64            `json:"confidence"`
}

// NormalizeEntityName is the shared lower-cased comparison key for entity
// matching across the parser and scoring engine.
func NormalizeEntityName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
