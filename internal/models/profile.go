package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Competitor is a named competitor from the discovery profile.
type Competitor struct {
	Name   string `json:"name" yaml:"name"`
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// Founder is a founder or leader attached to the brand profile.
type Founder struct {
	Name           string   `json:"name" yaml:"name"`
	Title          string   `json:"title,omitempty" yaml:"title,omitempty"`
	Background     string   `json:"background,omitempty" yaml:"background,omitempty"`
	PriorCompanies []string `json:"prior_companies,omitempty" yaml:"prior_companies,omitempty"`
}

// Product is a product or service line.
type Product struct {
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// BrandProfile is the read-only subject profile supplied by an external
// discovery collaborator. The audit never mutates it.
type BrandProfile struct {
	CompanyName     string       `json:"company_name" yaml:"company_name"`
	Domain          string       `json:"domain,omitempty" yaml:"domain,omitempty"`
	Industry        string       `json:"industry,omitempty" yaml:"industry,omitempty"`
	Description     string       `json:"description,omitempty" yaml:"description,omitempty"`
	EntityType      string       `json:"entity_type,omitempty" yaml:"entity_type,omitempty"`
	Competitors     []Competitor `json:"competitors,omitempty" yaml:"competitors,omitempty"`
	Personas        []string     `json:"personas,omitempty" yaml:"personas,omitempty"`
	Topics          []string     `json:"topics,omitempty" yaml:"topics,omitempty"`
	Differentiators []string     `json:"differentiators,omitempty" yaml:"differentiators,omitempty"`

	Aliases            []string  `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Founders           []Founder `json:"founders,omitempty" yaml:"founders,omitempty"`
	Products           []Product `json:"products,omitempty" yaml:"products,omitempty"`
	Awards             []string  `json:"awards,omitempty" yaml:"awards,omitempty"`
	PressMentions      []string  `json:"press_mentions,omitempty" yaml:"press_mentions,omitempty"`
	UseCases           []string  `json:"use_cases,omitempty" yaml:"use_cases,omitempty"`
	Occasions          []string  `json:"occasions,omitempty" yaml:"occasions,omitempty"`
	Regions            []string  `json:"regions,omitempty" yaml:"regions,omitempty"`
	AdjacentCategories []string  `json:"adjacent_categories,omitempty" yaml:"adjacent_categories,omitempty"`
	CategoryLeader     string    `json:"category_leader,omitempty" yaml:"category_leader,omitempty"`
	SiblingBrands      []string  `json:"sibling_brands,omitempty" yaml:"sibling_brands,omitempty"`
}

// KnownEntityNames returns the brand plus every competitor name, in a stable
// order. The parser uses this list for the fallback extraction path.
func (p *BrandProfile) KnownEntityNames() []string {
	names := make([]string, 0, len(p.Competitors)+1)
	names = append(names, p.CompanyName)
	for _, c := range p.Competitors {
		names = append(names, c.Name)
	}
	return names
}

// LoadBrandProfile loads a brand profile from a YAML file.
func LoadBrandProfile(path string) (*BrandProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var profile BrandProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Validate checks that the profile has the minimum required fields.
func (p *BrandProfile) Validate() error {
	if p.CompanyName == "" {
		return fmt.Errorf("profile is missing company_name")
	}
	return nil
}
