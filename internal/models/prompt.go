package models

// Dimension identifies one of the eight fixed prompt categories used to
// stratify the audit matrix.
type Dimension string

const (
	DimensionCategoryDefault   Dimension = "category_default"
	DimensionUseCase           Dimension = "use_case"
	DimensionComparison        Dimension = "comparison"
	DimensionAttributeSpecific Dimension = "attribute_specific"
	DimensionGiftSocial        Dimension = "gift_social"
	DimensionFounderBrand      Dimension = "founder_brand"
	DimensionGeographic        Dimension = "geographic"
	DimensionAdjacentCategory  Dimension = "adjacent_category"
)

// AllDimensions lists the eight dimensions in display order.
var AllDimensions = []Dimension{
	DimensionCategoryDefault,
	DimensionUseCase,
	DimensionComparison,
	DimensionAttributeSpecific,
	DimensionGiftSocial,
	DimensionFounderBrand,
	DimensionGeographic,
	DimensionAdjacentCategory,
}

// DimensionWeights is the fixed weight table for the prompt matrix. The
// weights sum to 1.0 and double as the coverage factor in gap analysis.
var DimensionWeights = map[Dimension]float64{
	DimensionCategoryDefault:   0.20,
	DimensionUseCase:           0.15,
	DimensionComparison:        0.10,
	DimensionAttributeSpecific: 0.15,
	DimensionGiftSocial:        0.10,
	DimensionFounderBrand:      0.15,
	DimensionGeographic:        0.05,
	DimensionAdjacentCategory:  0.10,
}

// Prompt is a single rendered audit prompt. Immutable once generated.
type Prompt struct {
	ID         string    `json:"id" yaml:"id"`
	Text       string    `json:"text" yaml:"text"`
	Dimension  Dimension `json:"dimension" yaml:"dimension"`
	Persona    string    `json:"persona,omitempty" yaml:"persona,omitempty"`
	Topic      string    `json:"topic,omitempty" yaml:"topic,omitempty"`
	Weight     float64   `json:"weight" yaml:"weight"`
	Competitor string    `json:"competitor,omitempty" yaml:"competitor,omitempty"`
	Founder    string    `json:"founder,omitempty" yaml:"founder,omitempty"`
}
