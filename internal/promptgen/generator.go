// Package promptgen renders the 8-dimension audit prompt matrix from a brand
// profile. Roughly 60 prompts are distributed across dimensions proportional
// to their weights, with a floor of 2 per dimension so sparse profiles still
// probe every dimension.
package promptgen

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/beaconlabs/beacon/internal/models"
)

// TargetTotalPrompts is the default matrix size.
const TargetTotalPrompts = 60

// Config controls matrix generation.
type Config struct {
	Weights     map[models.Dimension]float64
	TargetTotal int
}

// DefaultConfig returns the standard weights and target.
func DefaultConfig() Config {
	weights := make(map[models.Dimension]float64, len(models.DimensionWeights))
	for dim, w := range models.DimensionWeights {
		weights[dim] = w
	}

	return Config{
		Weights:     weights,
		TargetTotal: TargetTotalPrompts,
	}
}

// Generate renders the full prompt matrix for a profile.
func Generate(profile *models.BrandProfile, config Config) []models.Prompt {
	if config.Weights == nil {
		config = DefaultConfig()
	}
	if config.TargetTotal <= 0 {
		config.TargetTotal = TargetTotalPrompts
	}

	entityType := profile.EntityType
	if entityType == "" {
		entityType = "company"
	}
	category := profile.Industry
	if category == "" {
		category = "this category"
	}
	year := fmt.Sprintf("%d", time.Now().Year())

	targets := make(map[models.Dimension]int, len(config.Weights))
	for dim, weight := range config.Weights {
		targets[dim] = max(2, int(weight*float64(config.TargetTotal)+0.5))
	}

	var prompts []models.Prompt
	prompts = append(prompts, categoryDefault(profile, targets[models.DimensionCategoryDefault], config.Weights, entityType, category, year)...)
	prompts = append(prompts, useCase(profile, targets[models.DimensionUseCase], config.Weights, entityType)...)
	prompts = append(prompts, comparison(profile, targets[models.DimensionComparison], config.Weights, category)...)
	prompts = append(prompts, attributeSpecific(profile, targets[models.DimensionAttributeSpecific], config.Weights, entityType, category)...)
	prompts = append(prompts, giftSocial(profile, targets[models.DimensionGiftSocial], config.Weights, entityType, category)...)
	prompts = append(prompts, founderBrand(profile, targets[models.DimensionFounderBrand], config.Weights)...)
	prompts = append(prompts, geographic(profile, targets[models.DimensionGeographic], config.Weights, entityType, category)...)
	prompts = append(prompts, adjacentCategory(profile, targets[models.DimensionAdjacentCategory], config.Weights)...)

	slog.Info("generated audit prompt matrix",
		"prompts", len(prompts),
		"dimensions", len(config.Weights))

	return prompts
}

// categoryDefault covers "best X in Y" and "top X companies" queries, plus
// persona variants for the first two personas.
func categoryDefault(profile *models.BrandProfile, target int, weights map[models.Dimension]float64, entityType, category, year string) []models.Prompt {
	type variant struct {
		text    string
		persona string
	}

	variants := []variant{
		{text: fmt.Sprintf("What is the best %s in %s?", entityType, year)},
		{text: fmt.Sprintf("What are the top %s companies?", entityType)},
		{text: fmt.Sprintf("Who are the leading %s companies?", category)},
		{text: fmt.Sprintf("What %s would you recommend?", entityType)},
		{text: fmt.Sprintf("What are the most trusted %s brands?", category)},
		{text: fmt.Sprintf("If I need a %s, which company should I choose?", entityType)},
		{text: fmt.Sprintf("What are the top 5 %s companies in %s?", category, year)},
		{text: fmt.Sprintf("Which %s has the best reputation?", entityType)},
	}

	for _, persona := range head(profile.Personas, 2) {
		variants = append(variants,
			variant{text: fmt.Sprintf("What %s would you recommend for a %s?", entityType, persona), persona: persona},
			variant{text: fmt.Sprintf("As a %s, which %s company should I use?", persona, category), persona: persona},
		)
	}

	weight := weights[models.DimensionCategoryDefault]
	prompts := make([]models.Prompt, 0, target)
	for i, v := range variants {
		if i >= target {
			break
		}
		prompts = append(prompts, models.Prompt{
			ID:        fmt.Sprintf("cat-%d", i),
			Text:      v.text,
			Dimension: models.DimensionCategoryDefault,
			Persona:   v.persona,
			Topic:     category,
			Weight:    weight,
		})
	}

	return prompts
}

// useCase walks the persona x topic grid from the profile.
func useCase(profile *models.BrandProfile, target int, weights map[models.Dimension]float64, entityType string) []models.Prompt {
	templates := []func(persona, topic string) string{
		func(persona, topic string) string {
			return fmt.Sprintf("What %s would you recommend for %s looking for %s?", entityType, persona, topic)
		},
		func(persona, topic string) string {
			return fmt.Sprintf("What is the best %s for %s interested in %s?", entityType, persona, topic)
		},
		func(persona, topic string) string {
			return fmt.Sprintf("As a %s, what %s should I choose for %s?", persona, entityType, topic)
		},
	}

	weight := weights[models.DimensionUseCase]
	var prompts []models.Prompt

	idx := 0
	for _, persona := range head(profile.Personas, 4) {
		for _, topic := range head(profile.Topics, 4) {
			if idx >= target {
				return prompts
			}
			prompts = append(prompts, models.Prompt{
				ID:        fmt.Sprintf("use-%d", idx),
				Text:      templates[idx%len(templates)](persona, topic),
				Dimension: models.DimensionUseCase,
				Persona:   persona,
				Topic:     topic,
				Weight:    weight,
			})
			idx++
		}
	}

	return prompts
}

// comparison renders head-to-head prompts against the first five competitors.
// These carry a 1.3x weight because a head-to-head answer is a stronger signal
// than an open-ended list.
func comparison(profile *models.BrandProfile, target int, weights map[models.Dimension]float64, category string) []models.Prompt {
	templates := []func(company, competitor, topic string) string{
		func(company, competitor, topic string) string {
			return fmt.Sprintf("If choosing between %s and %s, which is better for %s?", company, competitor, topic)
		},
		func(company, competitor, topic string) string {
			return fmt.Sprintf("Compare %s vs %s for %s.", company, competitor, topic)
		},
		func(company, competitor, topic string) string {
			return fmt.Sprintf("%s or %s - which should I choose?", company, competitor)
		},
	}

	weight := weights[models.DimensionComparison] * 1.3
	var prompts []models.Prompt

	for idx, comp := range head(profile.Competitors, 5) {
		if idx >= target {
			break
		}

		topic := category
		if len(profile.Topics) > 0 {
			topic = profile.Topics[idx%len(profile.Topics)]
		}
		persona := ""
		if len(profile.Personas) > 0 {
			persona = profile.Personas[idx%len(profile.Personas)]
		}

		prompts = append(prompts, models.Prompt{
			ID:         fmt.Sprintf("cmp-%d", idx),
			Text:       templates[idx%len(templates)](profile.CompanyName, comp.Name, topic),
			Dimension:  models.DimensionComparison,
			Persona:    persona,
			Topic:      topic,
			Weight:     weight,
			Competitor: comp.Name,
		})
	}

	return prompts
}

// attributeSpecific probes differentiators and topics as attributes.
func attributeSpecific(profile *models.BrandProfile, target int, weights map[models.Dimension]float64, entityType, category string) []models.Prompt {
	attrs := append(head(profile.Differentiators, 4), head(profile.Topics, 4)...)

	seen := map[string]bool{}
	unique := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, a)
		}
	}

	templates := []func(attr string) string{
		func(attr string) string { return fmt.Sprintf("Which %s is best for %s?", entityType, attr) },
		func(attr string) string { return fmt.Sprintf("What is the top %s company for %s?", category, attr) },
		func(attr string) string {
			return fmt.Sprintf("Who leads in %s among %s companies?", attr, category)
		},
	}

	weight := weights[models.DimensionAttributeSpecific]
	var prompts []models.Prompt

	for idx, attr := range unique {
		if idx >= target {
			break
		}
		prompts = append(prompts, models.Prompt{
			ID:        fmt.Sprintf("attr-%d", idx),
			Text:      templates[idx%len(templates)](attr),
			Dimension: models.DimensionAttributeSpecific,
			Topic:     attr,
			Weight:    weight,
		})
	}

	return prompts
}

// giftSocial covers occasion-driven queries, falling back to generic occasions
// when the profile has none.
func giftSocial(profile *models.BrandProfile, target int, weights map[models.Dimension]float64, entityType, category string) []models.Prompt {
	occasions := head(profile.Occasions, 4)
	if len(occasions) == 0 {
		occasions = []string{
			"someone just starting out",
			"a gift",
			"a special occasion",
			"a first-time buyer",
		}
	}
	occasions = append(occasions, head(profile.UseCases, 3)...)

	templates := []func(occasion string) string{
		func(occasion string) string { return fmt.Sprintf("What is the best %s for %s?", entityType, occasion) },
		func(occasion string) string {
			return fmt.Sprintf("Which %s company would you recommend for %s?", category, occasion)
		},
		func(occasion string) string {
			return fmt.Sprintf("What %s should I choose for %s?", entityType, occasion)
		},
	}

	weight := weights[models.DimensionGiftSocial]
	var prompts []models.Prompt

	for idx, occasion := range occasions {
		if idx >= target {
			break
		}
		prompts = append(prompts, models.Prompt{
			ID:        fmt.Sprintf("gift-%d", idx),
			Text:      templates[idx%len(templates)](occasion),
			Dimension: models.DimensionGiftSocial,
			Topic:     occasion,
			Weight:    weight,
		})
	}

	return prompts
}

// founderBrand asks about founders by name and about the brand's origin.
// Founder retrieval is one of the weakest spots for most brands, so prompts
// are generated even when the profile lists no founders.
func founderBrand(profile *models.BrandProfile, target int, weights map[models.Dimension]float64) []models.Prompt {
	weight := weights[models.DimensionFounderBrand]
	company := profile.CompanyName

	var prompts []models.Prompt
	add := func(idPrefix, text, founder string) {
		prompts = append(prompts, models.Prompt{
			ID:        fmt.Sprintf("%s-%d", idPrefix, len(prompts)),
			Text:      text,
			Dimension: models.DimensionFounderBrand,
			Weight:    weight,
			Founder:   founder,
		})
	}

	for _, founder := range head(profile.Founders, 2) {
		if founder.Name == "" {
			continue
		}
		add("fnd-who", fmt.Sprintf("Who is %s?", founder.Name), founder.Name)
		add("fnd-bg", fmt.Sprintf("What is %s's background and career history?", founder.Name), founder.Name)
		if founder.Title != "" {
			add("fnd-role", fmt.Sprintf("Who is the %s of %s?", founder.Title, company), founder.Name)
		}
	}

	add("fnd-brand", fmt.Sprintf("Who founded %s?", company), "")
	add("fnd-story", fmt.Sprintf("What is the story behind %s?", company), "")
	add("fnd-lead", fmt.Sprintf("Who runs %s and what is their background?", company), "")

	if len(profile.Founders) == 0 {
		add("fnd-team", fmt.Sprintf("Who are the leaders behind %s?", company), "")
		add("fnd-hist", fmt.Sprintf("What is the history of %s?", company), "")
	}

	if len(prompts) > target {
		prompts = prompts[:target]
	}
	return prompts
}

// geographic probes region-scoped queries.
func geographic(profile *models.BrandProfile, target int, weights map[models.Dimension]float64, entityType, category string) []models.Prompt {
	regions := head(profile.Regions, 3)
	if len(regions) == 0 {
		regions = []string{"the United States", "North America"}
	}

	templates := []func(region string) string{
		func(region string) string {
			return fmt.Sprintf("What are the best %s companies in %s?", category, region)
		},
		func(region string) string {
			return fmt.Sprintf("Which %s would you recommend in %s?", entityType, region)
		},
		func(region string) string {
			return fmt.Sprintf("Who are the leading %s providers based in %s?", category, region)
		},
	}

	weight := weights[models.DimensionGeographic]
	var prompts []models.Prompt

	for idx, region := range regions {
		if idx >= target {
			break
		}
		prompts = append(prompts, models.Prompt{
			ID:        fmt.Sprintf("geo-%d", idx),
			Text:      templates[idx%len(templates)](region),
			Dimension: models.DimensionGeographic,
			Topic:     region,
			Weight:    weight,
		})
	}

	return prompts
}

// adjacentCategory probes related categories where the brand could plausibly
// surface alongside its core category.
func adjacentCategory(profile *models.BrandProfile, target int, weights map[models.Dimension]float64) []models.Prompt {
	categories := head(profile.AdjacentCategories, 4)
	if len(categories) == 0 {
		categories = []string{fmt.Sprintf("companies related to %s", profile.Industry)}
	}

	templates := []func(adj string) string{
		func(adj string) string { return fmt.Sprintf("What are the top companies in %s?", adj) },
		func(adj string) string { return fmt.Sprintf("Which brands would you recommend for %s?", adj) },
		func(adj string) string { return fmt.Sprintf("Who are the leaders in %s?", adj) },
	}

	weight := weights[models.DimensionAdjacentCategory]
	var prompts []models.Prompt

	for idx, adj := range categories {
		if idx >= target {
			break
		}
		prompts = append(prompts, models.Prompt{
			ID:        fmt.Sprintf("adj-%d", idx),
			Text:      templates[idx%len(templates)](adj),
			Dimension: models.DimensionAdjacentCategory,
			Topic:     adj,
			Weight:    weight,
		})
	}

	return prompts
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
