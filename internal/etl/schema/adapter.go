// Package schema flattens each provider's drifting column shapes into a
// fixed internal vocabulary. Every accepted source spelling of a canonical
// field is listed here, in priority order, and a raw extract is resolved
// into typed records exactly once; nothing downstream touches raw column
// names again.
package schema

import (
	"strings"

	"github.com/tolgakurt/footlake/internal/platform/tabular"
)

// Alias lists per canonical field. First match wins; a field with no
// match is absent and defaults to zero/empty, never an error.
var (
	playerAliases      = []string{"player", "player_name", "name"}
	teamAliases        = []string{"squad", "team", "club", "team_name"}
	seasonAliases      = []string{"season", "season_year", "year"}
	leagueCodeAliases  = []string{"league_code", "league"}
	minutesAliases     = []string{"minutes", "min", "playing_time_min", "time"}
	goalsAliases       = []string{"goals", "gls", "performance_gls"}
	assistsAliases     = []string{"assists", "ast", "performance_ast"}
	xgAliases          = []string{"xg", "expected_xg", "expected_goals"}
	positionAliases    = []string{"position", "pos"}
	birthDateAliases   = []string{"birth_date", "born", "dob"}
	nationalityAliases = []string{"nationality", "nation"}
	pointsAliases      = []string{"points", "pts"}
	rankAliases        = []string{"rank", "rk"}
	sourceAliases      = []string{"source"}
)

// PlayerStatRow is one player-season observation in internal vocabulary.
// Numerics are already coerced; absent fields are zero values.
type PlayerStatRow struct {
	Source      string
	LeagueCode  string
	SeasonRaw   string
	PlayerName  string
	TeamName    string
	Position    string
	BirthDate   string
	Nationality string
	Minutes     int
	Goals       int
	Assists     int
	XG          float64
}

// TeamStandingRow is one team-season standings observation.
type TeamStandingRow struct {
	Source     string
	LeagueCode string
	SeasonRaw  string
	TeamName   string
	Points     int
	Rank       int
}

// PlayerRows resolves a raw extract into typed player-season rows.
func PlayerRows(t *tabular.Table) []PlayerStatRow {
	if t.IsEmpty() {
		return nil
	}
	t = t.DedupColumns()

	cols := struct {
		source, league, seasonRaw            string
		player, team, position, born, nation string
		minutes, goals, assists, xg          string
	}{
		source:    pick(t, sourceAliases),
		league:    pick(t, leagueCodeAliases),
		seasonRaw: pick(t, seasonAliases),
		player:    pick(t, playerAliases),
		team:      pick(t, teamAliases),
		position:  pick(t, positionAliases),
		born:      pick(t, birthDateAliases),
		nation:    pick(t, nationalityAliases),
		minutes:   pick(t, minutesAliases),
		goals:     pick(t, goalsAliases),
		assists:   pick(t, assistsAliases),
		xg:        pick(t, xgAliases),
	}

	out := make([]PlayerStatRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, PlayerStatRow{
			Source:      cell(t, i, cols.source),
			LeagueCode:  cell(t, i, cols.league),
			SeasonRaw:   cell(t, i, cols.seasonRaw),
			PlayerName:  cell(t, i, cols.player),
			TeamName:    cell(t, i, cols.team),
			Position:    cell(t, i, cols.position),
			BirthDate:   cell(t, i, cols.born),
			Nationality: cell(t, i, cols.nation),
			Minutes:     tabular.AsInt(cell(t, i, cols.minutes)),
			Goals:       tabular.AsInt(cell(t, i, cols.goals)),
			Assists:     tabular.AsInt(cell(t, i, cols.assists)),
			XG:          tabular.AsFloat(cell(t, i, cols.xg)),
		})
	}
	return out
}

// TeamRows resolves a raw extract into typed team-season standings rows.
func TeamRows(t *tabular.Table) []TeamStandingRow {
	if t.IsEmpty() {
		return nil
	}
	t = t.DedupColumns()

	sourceCol := pick(t, sourceAliases)
	leagueCol := pick(t, leagueCodeAliases)
	seasonCol := pick(t, seasonAliases)
	teamCol := pick(t, teamAliases)
	pointsCol := pick(t, pointsAliases)
	rankCol := pick(t, rankAliases)

	out := make([]TeamStandingRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, TeamStandingRow{
			Source:     cell(t, i, sourceCol),
			LeagueCode: cell(t, i, leagueCol),
			SeasonRaw:  cell(t, i, seasonCol),
			TeamName:   cell(t, i, teamCol),
			Points:     tabular.AsInt(cell(t, i, pointsCol)),
			Rank:       tabular.AsInt(cell(t, i, rankCol)),
		})
	}
	return out
}

func pick(t *tabular.Table, candidates []string) string {
	col, ok := t.PickColumn(candidates...)
	if !ok {
		return ""
	}
	return col
}

func cell(t *tabular.Table, row int, col string) string {
	if col == "" {
		return ""
	}
	return strings.TrimSpace(t.Cell(row, col))
}
