// Package scoring turns parsed mentions into deterministic visibility scores.
//
// The score for a single mention takes the higher of its position score and
// its recommendation-type score, then applies sentiment and confidence
// modifiers. Prompt scores are weighted by prompt importance and normalized
// to 0-100 on aggregation.
package scoring

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/beaconlabs/beacon/internal/models"
	"github.com/beaconlabs/beacon/internal/statistics"
)

// Config holds the scoring weights.
type Config struct {
	PositionScores       map[int]float64
	RecommendationScores map[models.RecommendationType]float64
	SentimentModifiers   map[models.Sentiment]float64
}

// DefaultConfig returns the standard scoring weights.
func DefaultConfig() Config {
	return Config{
		PositionScores: map[int]float64{
			1: 100,
			2: 80,
			3: 60,
			4: 40,
			5: 20,
		},
		RecommendationScores: map[models.RecommendationType]float64{
			models.RecommendationExplicit:     100,
			models.RecommendationRanked:       85,
			models.RecommendationListed:       60,
			models.RecommendationMentioned:    40,
			models.RecommendationNotMentioned: 0,
		},
		SentimentModifiers: map[models.Sentiment]float64{
			models.SentimentPositive:   1.1,
			models.SentimentNeutral:    1.0,
			models.SentimentMixed:      0.9,
			models.SentimentCautionary: 0.7,
			models.SentimentNegative:   0.3,
		},
	}
}

// Engine computes scores from parsed mentions.
type Engine struct {
	config Config
}

// NewEngine creates a scoring engine. A zero Config falls back to defaults.
func NewEngine(config Config) *Engine {
	if config.PositionScores == nil {
		config = DefaultConfig()
	}
	return &Engine{config: config}
}

// ScoreMention calculates the score for a single mention.
func (e *Engine) ScoreMention(mention models.ParsedMention) float64 {
	var positionScore float64
	if mention.Position != nil {
		pos := *mention.Position
		if score, ok := e.config.PositionScores[pos]; ok {
			positionScore = score
		} else if pos > 5 {
			// Diminishing returns past the top five.
			positionScore = math.Max(10, 20-float64(pos-5)*2)
		}
	}

	recScore := e.config.RecommendationScores[mention.RecommendationType]
	baseScore := math.Max(positionScore, recScore)

	sentimentMod, ok := e.config.SentimentModifiers[mention.Sentiment]
	if !ok {
		sentimentMod = 1.0
	}

	// Confidence scales the score into the 0.5..1.0 range.
	confidenceMod := 0.5 + mention.Confidence*0.5

	return math.Min(100, baseScore*sentimentMod*confidenceMod)
}

// ScorePromptForEntity scores one entity from a single reply's mentions.
// An exact normalized-name match wins; otherwise the longest substring match
// in either direction is taken so "acme" can never shadow "acme audio".
func (e *Engine) ScorePromptForEntity(entityName string, mentions []models.ParsedMention, promptID, backendName string, promptWeight float64) models.PromptScore {
	entityLower := models.NormalizeEntityName(entityName)

	var match *models.ParsedMention
	bestLen := -1
	for i := range mentions {
		m := &mentions[i]
		if m.NormalizedName == entityLower {
			match = m
			break
		}
		if strings.Contains(m.NormalizedName, entityLower) || strings.Contains(entityLower, m.NormalizedName) {
			if len(m.NormalizedName) > bestLen {
				match = m
				bestLen = len(m.NormalizedName)
			}
		}
	}

	if match == nil {
		return models.PromptScore{
			EntityName:         entityName,
			PromptID:           promptID,
			Backend:            backendName,
			Weight:             promptWeight,
			RecommendationType: models.RecommendationNotMentioned,
		}
	}

	rawScore := e.ScoreMention(*match)
	return models.PromptScore{
		EntityName:         entityName,
		PromptID:           promptID,
		Backend:            backendName,
		RawScore:           rawScore,
		Weight:             promptWeight,
		WeightedScore:      rawScore * promptWeight,
		Position:           match.Position,
		RecommendationType: match.RecommendationType,
		Context:            match.Context,
	}
}

// Aggregate combines prompt scores into the final 0-100 score with
// per-backend breakdowns and a bootstrap confidence interval.
func (e *Engine) Aggregate(entityName string, promptScores []models.PromptScore) models.AggregateScore {
	if len(promptScores) == 0 {
		return models.AggregateScore{EntityName: entityName}
	}

	var totalWeighted, totalWeight float64
	rawScores := make([]float64, 0, len(promptScores))
	for _, ps := range promptScores {
		totalWeighted += ps.WeightedScore
		totalWeight += ps.Weight
		rawScores = append(rawScores, ps.RawScore)
	}

	var overall float64
	if maxPossible := totalWeight * 100; maxPossible > 0 {
		overall = totalWeighted / maxPossible * 100
	}

	byBackend := map[string][]models.PromptScore{}
	var backendNames []string
	for _, ps := range promptScores {
		if _, ok := byBackend[ps.Backend]; !ok {
			backendNames = append(backendNames, ps.Backend)
		}
		byBackend[ps.Backend] = append(byBackend[ps.Backend], ps)
	}
	sort.Strings(backendNames)

	backendScores := map[string]float64{}
	backends := make([]models.BackendScore, 0, len(backendNames))
	for _, name := range backendNames {
		scores := byBackend[name]

		var weighted, weight float64
		var mentionCount int
		var positions []float64
		for _, s := range scores {
			weighted += s.WeightedScore
			weight += s.Weight
			if s.Mentioned() {
				mentionCount++
				if s.Position != nil {
					positions = append(positions, float64(*s.Position))
				}
			}
		}

		var score float64
		if maxPossible := weight * 100; maxPossible > 0 {
			score = weighted / maxPossible * 100
		}

		var avgPosition *float64
		if len(positions) > 0 {
			avg := mean(positions)
			avgPosition = &avg
		}

		backends = append(backends, models.BackendScore{
			Backend:     name,
			Score:       round1(score),
			MentionRate: ratio(mentionCount, len(scores)),
			PromptCount: len(scores),
			AvgPosition: avgPosition,
		})
		backendScores[name] = round1(score)
	}

	var mentionsCount int
	for _, ps := range promptScores {
		if ps.Mentioned() {
			mentionsCount++
		}
	}

	var interval *models.ScoreInterval
	if ci := statistics.BootstrapCI(rawScores, 0.95); ci.NumBootstraps > 0 {
		interval = &models.ScoreInterval{
			Lower: ci.Lower,
			Upper: ci.Upper,
			Mean:  ci.Mean,
		}
	}

	slog.Debug("aggregated entity score",
		"entity", entityName,
		"overall", round1(overall),
		"mentions", mentionsCount,
		"prompts", len(promptScores))

	return models.AggregateScore{
		EntityName:    entityName,
		OverallScore:  round1(overall),
		MentionRate:   ratio(mentionsCount, len(promptScores)),
		MentionsCount: mentionsCount,
		TotalPrompts:  len(promptScores),
		BackendScores: backendScores,
		Backends:      backends,
		PromptScores:  promptScores,
		Interval:      interval,
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
