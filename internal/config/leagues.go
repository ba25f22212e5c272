package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LeagueEntry is one competition in the declarative league registry. The
// ids map carries each provider's native identifier for the league; an
// entry without an id for a provider is simply not fetched from it.
type LeagueEntry struct {
	CountryCode  string            `yaml:"country_code" validate:"required,uppercase,len=3"`
	CountryName  string            `yaml:"country_name"`
	Level        int               `yaml:"level" validate:"min=0,max=10"`
	LeagueName   string            `yaml:"league_name" validate:"required"`
	SeasonFormat string            `yaml:"season_format"`
	IDs          map[string]string `yaml:"ids"`
	Active       *bool             `yaml:"active"`
}

type leagueRegistry struct {
	Leagues []LeagueEntry `yaml:"leagues" validate:"required,min=1,dive"`
}

// IsActive defaults to true when the flag is omitted.
func (e LeagueEntry) IsActive() bool {
	return e.Active == nil || *e.Active
}

// SourceID returns the provider-native league identifier, empty when the
// registry does not map this league for that provider.
func (e LeagueEntry) SourceID(source string) string {
	return e.IDs[source]
}

// LoadLeagues reads and validates the league registry. A malformed
// registry is the one configuration failure that aborts a run.
func LoadLeagues(path string) ([]LeagueEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read leagues config %s: %w", path, err)
	}

	var registry leagueRegistry
	if err := yaml.Unmarshal(raw, &registry); err != nil {
		return nil, fmt.Errorf("parse leagues config %s: %w", path, err)
	}

	for i := range registry.Leagues {
		if registry.Leagues[i].Level == 0 {
			registry.Leagues[i].Level = 1
		}
		if registry.Leagues[i].SeasonFormat == "" {
			registry.Leagues[i].SeasonFormat = "YYYY-YYYY"
		}
	}

	if err := validator.New().Struct(registry); err != nil {
		return nil, fmt.Errorf("validate leagues config %s: %w", path, err)
	}

	return registry.Leagues, nil
}

// ActiveTopLevel filters the registry down to the competitions a run
// processes: active entries at the top tier.
func ActiveTopLevel(entries []LeagueEntry) []LeagueEntry {
	out := make([]LeagueEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsActive() && entry.Level == 1 {
			out = append(out, entry)
		}
	}
	return out
}
