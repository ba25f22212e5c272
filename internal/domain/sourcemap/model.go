package sourcemap

import "time"

// Entry records how one source-native identifier was mapped to a
// canonical ID: the provenance trail for every cross-source join the
// pipeline performed or was configured with.
type Entry struct {
	EntityType  string
	Source      string
	SourceID    string
	CanonicalID string
	SourceName  string
	SeasonID    string
	Confidence  float64
	MatchMethod string
	FetchedAt   time.Time
}

const (
	EntityTypeLeague = "league"

	// MethodConfig marks mappings taken verbatim from the league
	// configuration file. Team and player entries would carry their own
	// method once those mappings are recorded; today identity below
	// league level is canonical-name equality and is not written here,
	// which keeps that limitation visible in the output.
	MethodConfig = "config"
)
