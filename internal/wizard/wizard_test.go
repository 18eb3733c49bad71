package wizard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/beaconlabs/beacon/internal/models"
)

func TestGenerateProfileYAML_BasicSpec(t *testing.T) {
	spec := &ProfileSpec{
		CompanyName:     "Acme Audio",
		Domain:          "acmeaudio.com",
		Industry:        "consumer audio",
		Description:     "Makes repairable headphones.",
		Competitors:     []string{"SoundCore", "AudioMax"},
		Personas:        []string{"podcasters", "remote workers"},
		Topics:          []string{"noise cancelling"},
		Differentiators: []string{"repairable design"},
	}

	result, err := GenerateProfileYAML(spec)
	require.NoError(t, err)

	assert.Contains(t, result, "company_name: Acme Audio")
	assert.Contains(t, result, "domain: acmeaudio.com")
	assert.Contains(t, result, "industry: consumer audio")
	assert.Contains(t, result, "- name: SoundCore")
	assert.Contains(t, result, "- name: AudioMax")
	assert.Contains(t, result, "- podcasters")
	assert.Contains(t, result, "- noise cancelling")
	assert.Contains(t, result, "- repairable design")
}

func TestGenerateProfileYAML_IsValidProfile(t *testing.T) {
	spec := &ProfileSpec{
		CompanyName: "Acme Audio",
		Competitors: []string{"SoundCore"},
	}

	result, err := GenerateProfileYAML(spec)
	require.NoError(t, err)

	// The rendered file must round-trip through the profile loader.
	var profile models.BrandProfile
	require.NoError(t, yaml.Unmarshal([]byte(result), &profile))
	assert.Equal(t, "Acme Audio", profile.CompanyName)
	require.Len(t, profile.Competitors, 1)
	assert.Equal(t, "SoundCore", profile.Competitors[0].Name)
}

func TestGenerateProfileYAML_OmitsEmptySections(t *testing.T) {
	spec := &ProfileSpec{CompanyName: "Acme Audio"}

	result, err := GenerateProfileYAML(spec)
	require.NoError(t, err)

	assert.Contains(t, result, "company_name: Acme Audio")
	assert.NotContains(t, result, "domain:")
	// Commented hints are fine; active keys must not appear.
	for _, line := range strings.Split(result, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || trimmed == "" {
			continue
		}
		assert.NotContains(t, trimmed, "competitors:")
		assert.NotContains(t, trimmed, "personas:")
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "one", []string{"one"}},
		{"multiple with spaces", " one , two ,three", []string{"one", "two", "three"}},
		{"trailing comma", "one,two,", []string{"one", "two"}},
		{"only commas", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitAndTrim(tt.input))
		})
	}
}
