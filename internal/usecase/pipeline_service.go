package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tolgakurt/footlake/internal/config"
	"github.com/tolgakurt/footlake/internal/domain/league"
	"github.com/tolgakurt/footlake/internal/domain/snapshot"
	"github.com/tolgakurt/footlake/internal/domain/sourcemap"
	"github.com/tolgakurt/footlake/internal/etl/schema"
	"github.com/tolgakurt/footlake/internal/platform/logging"
)

// SnapshotWriter persists one normalized snapshot, typically as CSV flat
// files.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, snap *snapshot.Snapshot) error
}

// WarehouseLoader pushes one snapshot into the relational warehouse.
type WarehouseLoader interface {
	LoadSnapshot(ctx context.Context, snap *snapshot.Snapshot) error
}

const defaultTopForwardLimit = 50

type PipelineConfig struct {
	Leagues          []config.LeagueEntry
	SeasonStartYears []int

	// StandingsSource names the provider whose league tables are the
	// source of record for team-season facts.
	StandingsSource string
	TopForwardLimit int
}

// PipelineService runs one end-to-end ETL pass: extract every configured
// league-season from every provider, normalize into catalogs and facts,
// and hand the snapshot to the sinks.
type PipelineService struct {
	cfg       PipelineConfig
	extractor *ExtractService
	catalogs  *CatalogService
	merger    *MergeService
	writer    SnapshotWriter
	loader    WarehouseLoader
	logger    *logging.Logger
	now       func() time.Time
}

func NewPipelineService(
	cfg PipelineConfig,
	extractor *ExtractService,
	catalogs *CatalogService,
	merger *MergeService,
	writer SnapshotWriter,
	loader WarehouseLoader,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TopForwardLimit <= 0 {
		cfg.TopForwardLimit = defaultTopForwardLimit
	}
	return &PipelineService{
		cfg:       cfg,
		extractor: extractor,
		catalogs:  catalogs,
		merger:    merger,
		writer:    writer,
		loader:    loader,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one full pipeline pass and returns the snapshot it
// persisted. Every output table is written even when extraction yields
// nothing; if every source came back empty the run still fails with
// ErrNoEntities after persisting the header-only snapshot.
func (s *PipelineService) Run(ctx context.Context) (*snapshot.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	runID := uuid.NewString()
	started := s.now()
	s.logger.InfoContext(ctx, "pipeline run starting",
		"run_id", runID,
		"leagues", len(s.cfg.Leagues),
		"seasons", len(s.cfg.SeasonStartYears),
	)

	leagues, seasons := s.buildDimensions()
	seasonIDs := make(map[string]bool, len(seasons))
	for _, season := range seasons {
		seasonIDs[season.ID] = true
	}

	extracts, err := s.extractor.Run(ctx, s.cfg.Leagues, s.cfg.SeasonStartYears)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	playerRows := make([]schema.PlayerStatRow, 0, extracts.PlayerRowCount())
	for _, source := range sortedKeys(extracts.Players) {
		playerRows = append(playerRows, schema.PlayerRows(extracts.Players[source])...)
	}
	standingRows := make([]schema.TeamStandingRow, 0, extracts.TeamRowCount())
	for _, source := range sortedKeys(extracts.Teams) {
		standingRows = append(standingRows, schema.TeamRows(extracts.Teams[source])...)
	}

	teams := s.catalogs.BuildTeams(ctx, standingRows, playerRows)
	players := s.catalogs.BuildPlayers(ctx, playerRows)

	teamIndex := TeamIndex(teams)
	playerIndex := PlayerIndex(players)

	playerFacts := s.merger.BuildPlayerFacts(ctx, playerRows, seasonIDs, playerIndex, teamIndex)
	teamFacts := s.merger.BuildTeamFacts(ctx, standingRows, s.cfg.StandingsSource, seasonIDs, teamIndex)
	topForwards := s.merger.TopForwards(ctx, playerFacts, players, s.cfg.TopForwardLimit)

	snap := &snapshot.Snapshot{
		RunID:             runID,
		GeneratedAt:       started,
		Leagues:           leagues,
		Seasons:           seasons,
		Teams:             teams,
		Players:           players,
		TeamSeasons:       teamFacts,
		PlayerSeasonStats: playerFacts,
		SourceEntities:    s.buildSourceEntities(started),
		TopForwards:       topForwards,
		RawExtracts:       buildRawExtracts(extracts),
	}

	if err := s.writer.WriteSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	if len(teams) == 0 && len(players) == 0 {
		s.logger.ErrorContext(ctx, "no entities extracted from any source",
			"run_id", runID,
		)
		return nil, ErrNoEntities
	}
	if s.loader != nil {
		if err := s.loader.LoadSnapshot(ctx, snap); err != nil {
			return nil, fmt.Errorf("%w: warehouse load: %v", ErrDependencyUnavailable, err)
		}
	}

	s.logger.InfoContext(ctx, "pipeline run complete",
		"run_id", runID,
		"teams", len(teams),
		"players", len(players),
		"player_facts", len(playerFacts),
		"team_facts", len(teamFacts),
		"duration_ms", s.now().Sub(started).Milliseconds(),
	)
	return snap, nil
}

// buildDimensions derives the league and season dimension tables from
// configuration alone; they exist even when every fetch fails.
func (s *PipelineService) buildDimensions() ([]league.League, []league.Season) {
	leagues := make([]league.League, 0, len(s.cfg.Leagues))
	seasons := make([]league.Season, 0, len(s.cfg.Leagues)*len(s.cfg.SeasonStartYears))

	for _, entry := range s.cfg.Leagues {
		id := league.MakeID(entry.CountryCode, entry.Level, entry.LeagueName)
		leagues = append(leagues, league.League{
			ID:          id,
			Name:        entry.LeagueName,
			CountryCode: entry.CountryCode,
			Level:       entry.Level,
		})
		for _, year := range s.cfg.SeasonStartYears {
			seasons = append(seasons, league.NewSeason(id, year))
		}
	}

	sort.Slice(leagues, func(i, j int) bool { return leagues[i].ID < leagues[j].ID })
	sort.Slice(seasons, func(i, j int) bool { return seasons[i].ID < seasons[j].ID })
	return leagues, seasons
}

// buildSourceEntities records the provenance of every configured
// league-id mapping. Team and player identity is canonical-name equality
// rather than a recorded mapping, so only league entries appear here.
func (s *PipelineService) buildSourceEntities(fetchedAt time.Time) []sourcemap.Entry {
	out := make([]sourcemap.Entry, 0, len(s.cfg.Leagues)*2)
	for _, entry := range s.cfg.Leagues {
		canonicalID := league.MakeID(entry.CountryCode, entry.Level, entry.LeagueName)
		for _, source := range sortedKeys(entry.IDs) {
			out = append(out, sourcemap.Entry{
				EntityType:  sourcemap.EntityTypeLeague,
				Source:      source,
				SourceID:    entry.IDs[source],
				CanonicalID: canonicalID,
				SourceName:  entry.LeagueName,
				Confidence:  1,
				MatchMethod: sourcemap.MethodConfig,
				FetchedAt:   fetchedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CanonicalID != out[j].CanonicalID {
			return out[i].CanonicalID < out[j].CanonicalID
		}
		return out[i].Source < out[j].Source
	})
	return out
}

func buildRawExtracts(extracts *ExtractSet) []snapshot.RawExtract {
	out := make([]snapshot.RawExtract, 0, len(extracts.Players)+len(extracts.Teams))
	for _, source := range sortedKeys(extracts.Players) {
		out = append(out, snapshot.RawExtract{
			Name:  source + "_player_season_raw",
			Table: extracts.Players[source],
		})
	}
	for _, source := range sortedKeys(extracts.Teams) {
		out = append(out, snapshot.RawExtract{
			Name:  source + "_team_season_raw",
			Table: extracts.Teams[source],
		})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
