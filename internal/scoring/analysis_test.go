package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaconlabs/beacon/internal/backend"
	"github.com/beaconlabs/beacon/internal/models"
)

func analysisProfile() *models.BrandProfile {
	return &models.BrandProfile{
		CompanyName: "Acme Audio",
		Industry:    "headphones",
		Competitors: []models.Competitor{{Name: "SoundCore"}, {Name: "AudioMax"}},
		Founders:    []models.Founder{{Name: "Dana Reyes", Title: "CEO", PriorCompanies: []string{"WaveSound"}}},
	}
}

func mentionedResult(dim models.Dimension, pos int, backendName string) models.PromptResult {
	return models.PromptResult{
		PromptID:           "p-" + string(dim),
		Dimension:          dim,
		Backend:            backendName,
		RawReply:           "Acme Audio is a solid option.",
		BrandMentioned:     true,
		Position:           intPtr(pos),
		RecommendationType: models.RecommendationRanked,
		Sentiment:          models.SentimentNeutral,
		Confidence:         0.9,
		Context:            "Acme Audio is a solid option.",
	}
}

func missedResult(dim models.Dimension, backendName string) models.PromptResult {
	return models.PromptResult{
		PromptID:           "m-" + string(dim),
		Dimension:          dim,
		Backend:            backendName,
		RawReply:           "SoundCore leads the market.",
		RecommendationType: models.RecommendationNotMentioned,
		Sentiment:          models.SentimentNeutral,
	}
}

func TestAnalyzeMentionFrequency(t *testing.T) {
	a := NewAnalyzer(NewEngine(DefaultConfig()), nil)

	results := []models.PromptResult{
		mentionedResult(models.DimensionCategoryDefault, 1, "openai"),
		missedResult(models.DimensionCategoryDefault, "openai"),
		missedResult(models.DimensionUseCase, "openai"),
		missedResult(models.DimensionGeographic, "openai"),
	}

	analysis := a.Analyze(context.Background(), analysisProfile(), results)

	assert.InDelta(t, 25.0, analysis.MentionFrequency, 0.01)
	assert.Equal(t, 1, analysis.MentionsCount)
	assert.Equal(t, 4, analysis.TotalResponses)
}

func TestAnalyzePositionQualityIgnoresConfidence(t *testing.T) {
	// Position quality uses sentiment but not confidence; a low-confidence
	// first-place mention still scores a full 100.
	results := []models.PromptResult{
		{
			BrandMentioned:     true,
			Position:           intPtr(1),
			RecommendationType: models.RecommendationRanked,
			Sentiment:          models.SentimentNeutral,
			Confidence:         0.1,
		},
	}

	assert.InDelta(t, 100, positionQuality(results), 0.0001)
}

func TestAnalyzeNarrativeAccuracyJudge(t *testing.T) {
	judge := backend.NewMock("judge").DefaultReply(`{"ratings": [1.0, 0.5]}`)
	a := NewAnalyzer(NewEngine(DefaultConfig()), judge)

	results := []models.PromptResult{
		mentionedResult(models.DimensionCategoryDefault, 1, "openai"),
		mentionedResult(models.DimensionUseCase, 2, "openai"),
	}

	analysis := a.Analyze(context.Background(), analysisProfile(), results)
	assert.InDelta(t, 75.0, analysis.NarrativeAccuracy, 0.01)
}

func TestAnalyzeNarrativeAccuracyFallbacks(t *testing.T) {
	results := []models.PromptResult{mentionedResult(models.DimensionCategoryDefault, 1, "openai")}

	t.Run("no judge gives partial credit", func(t *testing.T) {
		a := NewAnalyzer(NewEngine(DefaultConfig()), nil)
		analysis := a.Analyze(context.Background(), analysisProfile(), results)
		assert.InDelta(t, 50.0, analysis.NarrativeAccuracy, 0.01)
	})

	t.Run("judge failure gives partial credit", func(t *testing.T) {
		a := NewAnalyzer(NewEngine(DefaultConfig()), backend.NewMock("judge").Fail(errors.New("down")))
		analysis := a.Analyze(context.Background(), analysisProfile(), results)
		assert.InDelta(t, 50.0, analysis.NarrativeAccuracy, 0.01)
	})

	t.Run("garbage reply gives partial credit", func(t *testing.T) {
		a := NewAnalyzer(NewEngine(DefaultConfig()), backend.NewMock("judge").DefaultReply("not json"))
		analysis := a.Analyze(context.Background(), analysisProfile(), results)
		assert.InDelta(t, 50.0, analysis.NarrativeAccuracy, 0.01)
	})

	t.Run("no mentions at all scores zero", func(t *testing.T) {
		a := NewAnalyzer(NewEngine(DefaultConfig()), nil)
		analysis := a.Analyze(context.Background(), analysisProfile(), []models.PromptResult{
			missedResult(models.DimensionCategoryDefault, "openai"),
		})
		assert.Zero(t, analysis.NarrativeAccuracy)
	})
}

func TestAnalyzeFounderRetrieval(t *testing.T) {
	profile := analysisProfile()

	tests := []struct {
		name  string
		reply string
		want  float64
	}{
		{name: "nothing retrieved", reply: "I have no idea.", want: 0},
		{name: "company only", reply: "Acme Audio makes headphones.", want: 30},
		{name: "company and founder", reply: "Acme Audio was founded by Dana Reyes.", want: 80},
		{name: "everything capped", reply: "Dana Reyes, CEO of Acme Audio, previously at WaveSound.", want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := []models.PromptResult{{
				Dimension: models.DimensionFounderBrand,
				RawReply:  tt.reply,
			}}
			assert.InDelta(t, tt.want, founderRetrieval(profile, results), 0.0001)
		})
	}

	t.Run("no founder prompts", func(t *testing.T) {
		results := []models.PromptResult{mentionedResult(models.DimensionCategoryDefault, 1, "openai")}
		assert.Zero(t, founderRetrieval(profile, results))
	})
}

func TestAnalyzeBreakdowns(t *testing.T) {
	a := NewAnalyzer(NewEngine(DefaultConfig()), nil)

	results := []models.PromptResult{
		mentionedResult(models.DimensionCategoryDefault, 1, "openai"),
		missedResult(models.DimensionCategoryDefault, "gemini"),
		mentionedResult(models.DimensionUseCase, 3, "gemini"),
	}
	results[0].Persona = "commuter"
	results[0].Topic = "battery life"
	results[1].Persona = "commuter"
	results[2].Topic = "battery life"

	analysis := a.Analyze(context.Background(), analysisProfile(), results)

	catScore := analysis.Dimension(models.DimensionCategoryDefault)
	require.NotNil(t, catScore)
	assert.Equal(t, 2, catScore.PromptCount)
	assert.InDelta(t, 0.5, catScore.MentionRate, 0.0001)
	require.NotNil(t, catScore.AvgPosition)
	assert.InDelta(t, 1.0, *catScore.AvgPosition, 0.0001)

	require.Len(t, analysis.BackendScores, 2)
	assert.InDelta(t, 0.5, analysis.PersonaMentionRates["commuter"], 0.0001)
	assert.InDelta(t, 1.0, analysis.TopicMentionRates["battery life"], 0.0001)

	// Competitor substring scan over raw replies: "SoundCore" shows up only
	// in the missed result.
	assert.InDelta(t, 1.0/3.0, analysis.CompetitorMentionRates["SoundCore"], 0.0001)
	assert.Zero(t, analysis.CompetitorMentionRates["AudioMax"])
}

func TestAnalyzeSeverityBands(t *testing.T) {
	tests := []struct {
		score float64
		want  models.SeverityBand
	}{
		{score: 10, want: models.BandCritical},
		{score: 20, want: models.BandPoor},
		{score: 40, want: models.BandBelowAverage},
		{score: 55, want: models.BandModerate},
		{score: 70, want: models.BandGood},
		{score: 85, want: models.BandStrong},
		{score: 95, want: models.BandDominant},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, models.SeverityFor(tt.score), "score %v", tt.score)
	}
}
