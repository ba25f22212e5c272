package league

import (
	"fmt"

	"github.com/tolgakurt/footlake/internal/platform/ident"
)

// League is one configured competition. The ID is structured rather than
// hashed because country, level and name are guaranteed-present
// categorical fields and a readable, sortable ID is worth keeping.
type League struct {
	ID          string
	Name        string
	CountryCode string
	Level       int
}

// Season is one football season of one league, keyed by the first
// calendar year of the season.
type Season struct {
	ID        string
	LeagueID  string
	StartYear int
	Label     string
}

// MakeID builds the canonical league ID, e.g. "ENG_1_premier_league".
func MakeID(countryCode string, level int, name string) string {
	return fmt.Sprintf("%s_%d_%s", countryCode, level, ident.Slug(name))
}

// MakeSeasonID builds the canonical season ID,
// e.g. "ENG_1_premier_league__2019_2020".
func MakeSeasonID(leagueID string, startYear int) string {
	return fmt.Sprintf("%s__%d_%d", leagueID, startYear, startYear+1)
}

// SeasonLabel is the display form, e.g. "2019/2020".
func SeasonLabel(startYear int) string {
	return fmt.Sprintf("%d/%d", startYear, startYear+1)
}

// NewSeason derives the full season entity for a league and start year.
func NewSeason(leagueID string, startYear int) Season {
	return Season{
		ID:        MakeSeasonID(leagueID, startYear),
		LeagueID:  leagueID,
		StartYear: startYear,
		Label:     SeasonLabel(startYear),
	}
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.CountryCode == "" {
		return fmt.Errorf("league country code is required")
	}
	if l.Level < 1 {
		return fmt.Errorf("league level must be >= 1")
	}
	return nil
}
