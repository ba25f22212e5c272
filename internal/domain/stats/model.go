package stats

// TeamSeason is one standings fact: a team's points and final rank in one
// season. Sourced from a single provider.
type TeamSeason struct {
	TeamID   string
	SeasonID string
	Points   int
	Rank     int
}

// PlayerSeasonStat is one row of the central fact table. Rows reported by
// multiple providers for the same key are merged, not concatenated.
type PlayerSeasonStat struct {
	PlayerID string
	TeamID   string
	SeasonID string
	Minutes  int
	Goals    int
	Assists  int
	XG       float64
}

// FactKey is the merge key of the fact table.
type FactKey struct {
	PlayerID string
	TeamID   string
	SeasonID string
}

func (s PlayerSeasonStat) Key() FactKey {
	return FactKey{PlayerID: s.PlayerID, TeamID: s.TeamID, SeasonID: s.SeasonID}
}

// MergeMax folds another observation of the same fact into s by taking
// the per-field maximum. The same statistic reported by two sources must
// not be double-counted, and on disagreement the max wins rather than one
// source unconditionally.
func (s PlayerSeasonStat) MergeMax(other PlayerSeasonStat) PlayerSeasonStat {
	if other.Minutes > s.Minutes {
		s.Minutes = other.Minutes
	}
	if other.Goals > s.Goals {
		s.Goals = other.Goals
	}
	if other.Assists > s.Assists {
		s.Assists = other.Assists
	}
	if other.XG > s.XG {
		s.XG = other.XG
	}
	return s
}

// TopForward is one row of the forward ranking report derived from the
// fact table.
type TopForward struct {
	PlayerID string
	Name     string
	SeasonID string
	Goals    int
	Assists  int
	XG       float64
	Score    float64
}

// ForwardScore is the ranking heuristic for forwards.
func ForwardScore(goals, assists int, xg float64) float64 {
	return float64(goals)*4 + float64(assists)*3 + xg*2
}
