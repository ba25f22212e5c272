package usecase

import (
	"context"
	"sort"

	"github.com/tolgakurt/footlake/internal/domain/player"
	"github.com/tolgakurt/footlake/internal/domain/team"
	"github.com/tolgakurt/footlake/internal/etl/schema"
	"github.com/tolgakurt/footlake/internal/platform/ident"
	"github.com/tolgakurt/footlake/internal/platform/logging"
)

// CatalogService builds the team and player dimension catalogs. Identity
// across sources is canonical-name equality: two names that canonicalize
// to the same string are the same entity, and the first spelling seen
// wins as the display name.
type CatalogService struct {
	logger *logging.Logger
}

func NewCatalogService(logger *logging.Logger) *CatalogService {
	if logger == nil {
		logger = logging.Default()
	}
	return &CatalogService{logger: logger}
}

// BuildTeams derives the team catalog from standings rows and, as a
// fallback for teams that never appear in a standings table, from player
// stat rows. Output is sorted by ID.
func (s *CatalogService) BuildTeams(ctx context.Context, standings []schema.TeamStandingRow, playerRows []schema.PlayerStatRow) []team.Team {
	_, span := startUsecaseSpan(ctx, "usecase.CatalogService.BuildTeams")
	defer span.End()

	byCanonical := make(map[string]team.Team, len(standings))
	add := func(name string) {
		canonical := ident.Canonicalize(name)
		if canonical == "" {
			return
		}
		if _, seen := byCanonical[canonical]; seen {
			return
		}
		byCanonical[canonical] = team.Team{
			ID:   ident.StableID("team", name),
			Name: name,
		}
	}

	for _, row := range standings {
		add(row.TeamName)
	}
	for _, row := range playerRows {
		add(row.TeamName)
	}

	out := make([]team.Team, 0, len(byCanonical))
	for _, t := range byCanonical {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BuildPlayers derives the player catalog from player stat rows. The
// first spelling seen fixes the display name; descriptive fields are
// filled from the first row that carries them, whichever source it came
// from.
func (s *CatalogService) BuildPlayers(ctx context.Context, rows []schema.PlayerStatRow) []player.Player {
	_, span := startUsecaseSpan(ctx, "usecase.CatalogService.BuildPlayers")
	defer span.End()

	byCanonical := make(map[string]player.Player, len(rows))
	for _, row := range rows {
		canonical := ident.Canonicalize(row.PlayerName)
		if canonical == "" {
			continue
		}

		p, seen := byCanonical[canonical]
		if !seen {
			p = player.Player{
				ID:   ident.StableID("player", row.PlayerName),
				Name: row.PlayerName,
			}
		}
		if p.BirthDate == "" {
			p.BirthDate = row.BirthDate
		}
		if p.Nationality == "" {
			p.Nationality = row.Nationality
		}
		if p.Position == "" {
			p.Position = row.Position
		}
		byCanonical[canonical] = p
	}

	out := make([]player.Player, 0, len(byCanonical))
	for _, p := range byCanonical {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TeamIndex maps canonical team name to catalog ID for fact joins.
func TeamIndex(teams []team.Team) map[string]string {
	out := make(map[string]string, len(teams))
	for _, t := range teams {
		out[ident.Canonicalize(t.Name)] = t.ID
	}
	return out
}

// PlayerIndex maps canonical player name to catalog ID for fact joins.
func PlayerIndex(players []player.Player) map[string]string {
	out := make(map[string]string, len(players))
	for _, p := range players {
		out[ident.Canonicalize(p.Name)] = p.ID
	}
	return out
}
