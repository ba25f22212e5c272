package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/tolgakurt/footlake/internal/domain/league"
	"github.com/tolgakurt/footlake/internal/domain/player"
	"github.com/tolgakurt/footlake/internal/domain/stats"
	"github.com/tolgakurt/footlake/internal/etl/schema"
	"github.com/tolgakurt/footlake/internal/etl/season"
	"github.com/tolgakurt/footlake/internal/platform/ident"
	"github.com/tolgakurt/footlake/internal/platform/logging"
)

// MergeService joins typed extract rows against the catalogs and folds
// multi-source observations into single facts.
type MergeService struct {
	logger *logging.Logger
}

func NewMergeService(logger *logging.Logger) *MergeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MergeService{logger: logger}
}

// BuildPlayerFacts resolves each row's season and catalog IDs and merges
// duplicate observations of the same (player, team, season) by per-field
// maximum, so the same statistic reported by both sources is never
// double-counted. Rows whose season cannot be resolved to a configured
// season, or whose player misses the catalog, are dropped; a team miss
// keeps the row with an empty team ID. Output order is deterministic.
func (s *MergeService) BuildPlayerFacts(
	ctx context.Context,
	rows []schema.PlayerStatRow,
	seasonIDs map[string]bool,
	playerIDs map[string]string,
	teamIDs map[string]string,
) []stats.PlayerSeasonStat {
	_, span := startUsecaseSpan(ctx, "usecase.MergeService.BuildPlayerFacts")
	defer span.End()

	merged := make(map[stats.FactKey]stats.PlayerSeasonStat, len(rows))
	droppedSeason := 0
	droppedPlayer := 0

	for _, row := range rows {
		seasonID, ok := resolveSeasonID(row.LeagueCode, row.SeasonRaw, row.Source, seasonIDs)
		if !ok {
			droppedSeason++
			continue
		}

		playerID, ok := playerIDs[ident.Canonicalize(row.PlayerName)]
		if !ok {
			droppedPlayer++
			continue
		}
		teamID := teamIDs[ident.Canonicalize(row.TeamName)]

		fact := stats.PlayerSeasonStat{
			PlayerID: playerID,
			TeamID:   teamID,
			SeasonID: seasonID,
			Minutes:  row.Minutes,
			Goals:    row.Goals,
			Assists:  row.Assists,
			XG:       row.XG,
		}
		if existing, seen := merged[fact.Key()]; seen {
			fact = existing.MergeMax(fact)
		}
		merged[fact.Key()] = fact
	}

	if droppedSeason > 0 || droppedPlayer > 0 {
		s.logger.WarnContext(ctx, "player fact rows dropped",
			"unresolved_season", droppedSeason,
			"player_miss", droppedPlayer,
		)
	}

	out := make([]stats.PlayerSeasonStat, 0, len(merged))
	for _, fact := range merged {
		out = append(out, fact)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SeasonID != b.SeasonID {
			return a.SeasonID < b.SeasonID
		}
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		return a.TeamID < b.TeamID
	})
	return out
}

// BuildTeamFacts derives standings facts from the single authoritative
// source. Standings differ between providers for legitimate reasons, so
// they are never merged; the caller names the source of record.
func (s *MergeService) BuildTeamFacts(
	ctx context.Context,
	rows []schema.TeamStandingRow,
	standingsSource string,
	seasonIDs map[string]bool,
	teamIDs map[string]string,
) []stats.TeamSeason {
	_, span := startUsecaseSpan(ctx, "usecase.MergeService.BuildTeamFacts")
	defer span.End()

	out := make([]stats.TeamSeason, 0, len(rows))
	droppedSeason := 0

	for _, row := range rows {
		if row.Source != standingsSource {
			continue
		}
		seasonID, ok := resolveSeasonID(row.LeagueCode, row.SeasonRaw, row.Source, seasonIDs)
		if !ok {
			droppedSeason++
			continue
		}

		out = append(out, stats.TeamSeason{
			TeamID:   teamIDs[ident.Canonicalize(row.TeamName)],
			SeasonID: seasonID,
			Points:   row.Points,
			Rank:     row.Rank,
		})
	}

	if droppedSeason > 0 {
		s.logger.WarnContext(ctx, "standings rows dropped",
			"unresolved_season", droppedSeason,
		)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SeasonID != b.SeasonID {
			return a.SeasonID < b.SeasonID
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.TeamID < b.TeamID
	})
	return out
}

// TopForwards ranks forwards by the attacking score over the merged fact
// table, best first, capped at limit. Ties break on player ID to keep
// repeated runs byte-identical.
func (s *MergeService) TopForwards(
	ctx context.Context,
	facts []stats.PlayerSeasonStat,
	players []player.Player,
	limit int,
) []stats.TopForward {
	_, span := startUsecaseSpan(ctx, "usecase.MergeService.TopForwards")
	defer span.End()

	type profile struct {
		name    string
		forward bool
	}
	profiles := make(map[string]profile, len(players))
	for _, p := range players {
		profiles[p.ID] = profile{name: p.Name, forward: isForwardPosition(p.Position)}
	}

	out := make([]stats.TopForward, 0, len(facts))
	for _, fact := range facts {
		prof, ok := profiles[fact.PlayerID]
		if !ok || !prof.forward {
			continue
		}
		out = append(out, stats.TopForward{
			PlayerID: fact.PlayerID,
			Name:     prof.name,
			SeasonID: fact.SeasonID,
			Goals:    fact.Goals,
			Assists:  fact.Assists,
			XG:       fact.XG,
			Score:    stats.ForwardScore(fact.Goals, fact.Assists, fact.XG),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].SeasonID < out[j].SeasonID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// resolveSeasonID decodes the source-native season value and checks the
// result against the configured seasons. An unresolvable or unknown
// season never leaks into a fact row.
func resolveSeasonID(leagueCode, seasonRaw, source string, seasonIDs map[string]bool) (string, bool) {
	if leagueCode == "" {
		return "", false
	}
	year, ok := season.ResolveStartYear(seasonRaw, season.Kind(source))
	if !ok {
		return "", false
	}
	seasonID := league.MakeSeasonID(leagueCode, year)
	if !seasonIDs[seasonID] {
		return "", false
	}
	return seasonID, true
}

// isForwardPosition reports whether a position string marks a forward.
// Sources spell positions differently ("FW", "FW,MF", "F M", "F S"); a
// token of F or FW in any of them counts.
func isForwardPosition(position string) bool {
	upper := strings.ToUpper(position)
	for _, token := range strings.FieldsFunc(upper, func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	}) {
		if token == "F" || token == "FW" {
			return true
		}
	}
	return false
}
