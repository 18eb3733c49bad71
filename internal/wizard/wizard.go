// Package wizard collects a starter brand profile interactively and renders
// it as a brand.yaml the audit can run against.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ProfileSpec holds all fields collected during the interactive wizard.
type ProfileSpec struct {
	CompanyName     string
	Domain          string
	Industry        string
	Description     string
	Competitors     []string
	Personas        []string
	Topics          []string
	Differentiators []string
}

const profileYAMLTemplate = `# Brand profile for {{ .CompanyName }}
company_name: {{ .CompanyName }}
{{- if .Domain }}
domain: {{ .Domain }}
{{- end }}
{{- if .Industry }}
industry: {{ .Industry }}
{{- end }}
{{- if .Description }}
description: >
  {{ .Description }}
{{- end }}
{{- if .Competitors }}
competitors:
{{- range .Competitors }}
  - name: {{ . }}
{{- end }}
{{- end }}
{{- if .Personas }}
personas:
{{- range .Personas }}
  - {{ . }}
{{- end }}
{{- end }}
{{- if .Topics }}
topics:
{{- range .Topics }}
  - {{ . }}
{{- end }}
{{- end }}
{{- if .Differentiators }}
differentiators:
{{- range .Differentiators }}
  - {{ . }}
{{- end }}
{{- end }}

# Optional fields used by deeper checks. Fill these in for better coverage:
# aliases: []
# founders:
#   - name: Jane Doe
#     title: CEO
# awards: []
# press_mentions: []
# use_cases: []
# occasions: []
# regions: []
# adjacent_categories: []
# sibling_brands: []
`

// RunProfileWizard runs an interactive huh form to collect brand metadata.
// If initialName is non-empty, it pre-populates the company name field.
func RunProfileWizard(in io.Reader, out io.Writer, initialName string) (*ProfileSpec, error) {
	var (
		name               = initialName
		domain             string
		industry           string
		description        string
		competitorsRaw     string
		personasRaw        string
		topicsRaw          string
		differentiatorsRaw string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Company name").
				Description("The brand the audit measures").
				Placeholder("Acme Audio").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("company name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Domain").
				Description("Primary website domain").
				Placeholder("acmeaudio.com").
				Value(&domain),
			huh.NewInput().
				Title("Industry").
				Description("What market does the brand operate in?").
				Placeholder("consumer audio").
				Value(&industry),
			huh.NewInput().
				Title("Description").
				Description("One sentence on what the company does").
				Value(&description),
			huh.NewInput().
				Title("Competitors").
				Description("Comma-separated competitor names").
				Placeholder("SoundCore, AudioMax").
				Value(&competitorsRaw),
			huh.NewInput().
				Title("Personas").
				Description("Comma-separated buyer personas").
				Placeholder("podcasters, remote workers").
				Value(&personasRaw),
			huh.NewInput().
				Title("Topics").
				Description("Comma-separated topics buyers ask about").
				Placeholder("noise cancelling, battery life").
				Value(&topicsRaw),
			huh.NewInput().
				Title("Differentiators").
				Description("Comma-separated things that set the brand apart").
				Placeholder("repairable design, 10-year warranty").
				Value(&differentiatorsRaw),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return &ProfileSpec{
		CompanyName:     strings.TrimSpace(name),
		Domain:          strings.TrimSpace(domain),
		Industry:        strings.TrimSpace(industry),
		Description:     strings.TrimSpace(description),
		Competitors:     splitAndTrim(competitorsRaw),
		Personas:        splitAndTrim(personasRaw),
		Topics:          splitAndTrim(topicsRaw),
		Differentiators: splitAndTrim(differentiatorsRaw),
	}, nil
}

// GenerateProfileYAML renders a brand.yaml from the given spec.
func GenerateProfileYAML(spec *ProfileSpec) (string, error) {
	tmpl, err := template.New("profile").Parse(profileYAMLTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
