// Package snapshot is the fully normalized output of one pipeline run:
// the dimension catalogs, the fact tables, the provenance map and the raw
// extracts that produced them. Sinks consume a snapshot whole.
package snapshot

import (
	"time"

	"github.com/tolgakurt/footlake/internal/domain/league"
	"github.com/tolgakurt/footlake/internal/domain/player"
	"github.com/tolgakurt/footlake/internal/domain/sourcemap"
	"github.com/tolgakurt/footlake/internal/domain/stats"
	"github.com/tolgakurt/footlake/internal/domain/team"
	"github.com/tolgakurt/footlake/internal/platform/tabular"
)

type Snapshot struct {
	RunID       string
	GeneratedAt time.Time

	Leagues []league.League
	Seasons []league.Season
	Teams   []team.Team
	Players []player.Player

	TeamSeasons       []stats.TeamSeason
	PlayerSeasonStats []stats.PlayerSeasonStat
	SourceEntities    []sourcemap.Entry
	TopForwards       []stats.TopForward

	RawExtracts []RawExtract
}

// RawExtract is one accumulated provider table kept verbatim for
// debugging; Name becomes the output file stem.
type RawExtract struct {
	Name  string
	Table *tabular.Table
}
