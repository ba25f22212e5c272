package usecase

import (
	"context"
	"fmt"

	"github.com/tolgakurt/footlake/internal/config"
	"github.com/tolgakurt/footlake/internal/domain/league"
	"github.com/tolgakurt/footlake/internal/platform/logging"
	"github.com/tolgakurt/footlake/internal/platform/tabular"
)

// StatsProvider is one scraped data source. Fetches take the provider's
// native league identifier and the first calendar year of the season; the
// returned table carries the provider's native season representation.
type StatsProvider interface {
	Name() string
	FetchPlayerSeasonStats(ctx context.Context, leagueID string, startYear int) (*tabular.Table, error)
	FetchTeamSeasonStats(ctx context.Context, leagueID string, startYear int) (*tabular.Table, error)
}

// ExtractSet holds the accumulated raw tables of one run, keyed by
// provider name. A provider that failed every fetch is present with an
// empty table, never absent.
type ExtractSet struct {
	Players map[string]*tabular.Table
	Teams   map[string]*tabular.Table
}

func (e *ExtractSet) PlayerRowCount() int {
	total := 0
	for _, tbl := range e.Players {
		total += tbl.Len()
	}
	return total
}

func (e *ExtractSet) TeamRowCount() int {
	total := 0
	for _, tbl := range e.Teams {
		total += tbl.Len()
	}
	return total
}

type ExtractService struct {
	providers []StatsProvider
	logger    *logging.Logger
}

func NewExtractService(providers []StatsProvider, logger *logging.Logger) *ExtractService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExtractService{providers: providers, logger: logger}
}

// Run fetches every configured league-season from every provider,
// strictly sequentially. Provider rate limits are the scarce resource
// here, not CPU, and interleaved concurrent scraping is what gets
// scrapers banned. A failed fetch is logged and skipped; the loop never
// aborts on one bad page.
func (s *ExtractService) Run(ctx context.Context, leagues []config.LeagueEntry, startYears []int) (*ExtractSet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExtractService.Run")
	defer span.End()

	if len(s.providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", ErrInvalidInput)
	}
	if len(leagues) == 0 {
		return nil, fmt.Errorf("%w: no leagues to fetch", ErrInvalidInput)
	}
	if len(startYears) == 0 {
		return nil, fmt.Errorf("%w: no seasons to fetch", ErrInvalidInput)
	}

	out := &ExtractSet{
		Players: make(map[string]*tabular.Table, len(s.providers)),
		Teams:   make(map[string]*tabular.Table, len(s.providers)),
	}

	for _, provider := range s.providers {
		source := provider.Name()
		players := tabular.New()
		teams := tabular.New()

		for _, entry := range leagues {
			sourceLeagueID := entry.SourceID(source)
			if sourceLeagueID == "" {
				s.logger.DebugContext(ctx, "league not mapped for source",
					"source", source,
					"league", entry.LeagueName,
				)
				continue
			}
			canonicalID := league.MakeID(entry.CountryCode, entry.Level, entry.LeagueName)

			for _, year := range startYears {
				if err := ctx.Err(); err != nil {
					return nil, err
				}

				playerTbl, err := provider.FetchPlayerSeasonStats(ctx, sourceLeagueID, year)
				if err != nil {
					s.logger.WarnContext(ctx, "player extract failed, skipping league-season",
						"source", source,
						"league_id", canonicalID,
						"season", year,
						"error", err,
					)
				} else {
					playerTbl.AddConst("source", source)
					playerTbl.AddConst("league_code", canonicalID)
					players.Append(playerTbl)
				}

				teamTbl, err := provider.FetchTeamSeasonStats(ctx, sourceLeagueID, year)
				if err != nil {
					s.logger.WarnContext(ctx, "team extract failed, skipping league-season",
						"source", source,
						"league_id", canonicalID,
						"season", year,
						"error", err,
					)
				} else {
					teamTbl.AddConst("source", source)
					teamTbl.AddConst("league_code", canonicalID)
					teams.Append(teamTbl)
				}
			}
		}

		s.logger.InfoContext(ctx, "source extract complete",
			"source", source,
			"player_rows", players.Len(),
			"team_rows", teams.Len(),
		)
		out.Players[source] = players
		out.Teams[source] = teams
	}

	return out, nil
}
