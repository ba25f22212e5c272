package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/tolgakurt/footlake/internal/domain/snapshot"
	"github.com/tolgakurt/footlake/internal/etl/season"
	"github.com/tolgakurt/footlake/internal/platform/ident"
	"github.com/tolgakurt/footlake/internal/platform/logging"
	"github.com/tolgakurt/footlake/internal/platform/tabular"
)

type stubWriter struct {
	snap *snapshot.Snapshot
	err  error
}

func (w *stubWriter) WriteSnapshot(_ context.Context, snap *snapshot.Snapshot) error {
	w.snap = snap
	return w.err
}

type stubLoader struct {
	snap *snapshot.Snapshot
	err  error
}

func (l *stubLoader) LoadSnapshot(_ context.Context, snap *snapshot.Snapshot) error {
	l.snap = snap
	return l.err
}

// fbrefStub mimics the real client's shape: fbref column spellings and
// the compact season code.
func fbrefStub() *stubProvider {
	return &stubProvider{
		name: "fbref",
		playerTable: func(_ string, startYear int) *tabular.Table {
			tbl := tabular.New("player", "squad", "pos", "min", "performance_gls", "performance_ast", "xg", "season")
			tbl.AppendRow("Raúl García", "Athletic Club", "FW", "1,980", "9", "2", "7.1", season.CompactCode(startYear))
			tbl.AppendRow("Harry Kane", "Tottenham", "FW", "2,653", "18", "2", "16.9", season.CompactCode(startYear))
			return tbl
		},
		teamTable: func(_ string, startYear int) *tabular.Table {
			tbl := tabular.New("squad", "pts", "rk", "season")
			tbl.AppendRow("Athletic Club", "51", "10", season.CompactCode(startYear))
			tbl.AppendRow("Tottenham", "59", "6", season.CompactCode(startYear))
			return tbl
		},
	}
}

// understatStub mimics understat's shape: its own spellings and the bare
// calendar year as season.
func understatStub() *stubProvider {
	return &stubProvider{
		name: "understat",
		playerTable: func(_ string, startYear int) *tabular.Table {
			tbl := tabular.New("player", "team", "position", "minutes", "goals", "assists", "xg", "season")
			tbl.AppendRow("Raul Garcia", "Athletic Club", "F S", "900", "5", "4", "4.2", strconv.Itoa(startYear))
			return tbl
		},
		teamTable: func(_ string, startYear int) *tabular.Table {
			tbl := tabular.New("team", "points", "season")
			tbl.AppendRow("Athletic Club", "49", strconv.Itoa(startYear))
			return tbl
		},
	}
}

func newTestPipeline(writer SnapshotWriter, loader WarehouseLoader, providers ...StatsProvider) *PipelineService {
	logger := logging.NewNop()
	return NewPipelineService(
		PipelineConfig{
			Leagues:          testLeagues()[:1],
			SeasonStartYears: []int{2019},
			StandingsSource:  "fbref",
		},
		NewExtractService(providers, logger),
		NewCatalogService(logger),
		NewMergeService(logger),
		writer,
		loader,
		logger,
	)
}

func TestPipelineService_Run_MergesProvidersIntoOneSnapshot(t *testing.T) {
	t.Parallel()

	writer := &stubWriter{}
	service := newTestPipeline(writer, nil, fbrefStub(), understatStub())

	snap, err := service.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if writer.snap != snap {
		t.Fatal("writer should receive the returned snapshot")
	}
	if snap.RunID == "" {
		t.Fatal("run id must be set")
	}

	if len(snap.Leagues) != 1 || snap.Leagues[0].ID != "ENG_1_premier_league" {
		t.Fatalf("leagues = %+v", snap.Leagues)
	}
	if len(snap.Seasons) != 1 || snap.Seasons[0].ID != "ENG_1_premier_league__2019_2020" {
		t.Fatalf("seasons = %+v", snap.Seasons)
	}
	if snap.Seasons[0].Label != "2019/2020" {
		t.Fatalf("season label = %q", snap.Seasons[0].Label)
	}

	// Both spellings of the same player collapse into one catalog entry
	// and one merged fact.
	if len(snap.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(snap.Players))
	}
	wantID := ident.StableID("player", "Raúl García")
	var merged bool
	for _, fact := range snap.PlayerSeasonStats {
		if fact.PlayerID != wantID {
			continue
		}
		merged = true
		if fact.SeasonID != "ENG_1_premier_league__2019_2020" {
			t.Fatalf("fact season = %q", fact.SeasonID)
		}
		if fact.Minutes != 1980 || fact.Goals != 9 || fact.Assists != 4 || fact.XG != 7.1 {
			t.Fatalf("per-field max expected, got %+v", fact)
		}
	}
	if !merged {
		t.Fatal("merged fact for Raúl García not found")
	}

	// Standings facts come from the source of record only.
	if len(snap.TeamSeasons) != 2 {
		t.Fatalf("team seasons = %d, want fbref rows only", len(snap.TeamSeasons))
	}

	// League id mappings recorded per source, deterministic order.
	if len(snap.SourceEntities) != 2 {
		t.Fatalf("source entities = %d", len(snap.SourceEntities))
	}
	if snap.SourceEntities[0].Source != "fbref" || snap.SourceEntities[0].SourceID != "9" {
		t.Fatalf("source entity = %+v", snap.SourceEntities[0])
	}

	if len(snap.TopForwards) == 0 || snap.TopForwards[0].Name != "Harry Kane" {
		t.Fatalf("top forwards = %+v", snap.TopForwards)
	}

	if len(snap.RawExtracts) != 4 {
		t.Fatalf("raw extracts = %d", len(snap.RawExtracts))
	}
	if snap.RawExtracts[0].Name != "fbref_player_season_raw" {
		t.Fatalf("raw extract order: %q", snap.RawExtracts[0].Name)
	}
}

func TestPipelineService_Run_DegradesWhenOneSourceFails(t *testing.T) {
	t.Parallel()

	writer := &stubWriter{}
	failing := &stubProvider{name: "understat", failPlayers: true, failTeams: true}
	service := newTestPipeline(writer, nil, fbrefStub(), failing)

	snap, err := service.Run(context.Background())
	if err != nil {
		t.Fatalf("a single failing source must not abort the run: %v", err)
	}

	if len(snap.Players) != 2 || len(snap.Teams) != 2 {
		t.Fatalf("surviving source should fill the catalogs: %d players, %d teams", len(snap.Players), len(snap.Teams))
	}
	if len(snap.RawExtracts) != 4 {
		t.Fatal("failed source must still surface an empty raw extract")
	}
	for _, raw := range snap.RawExtracts {
		if raw.Table == nil {
			t.Fatalf("raw extract %q has no table", raw.Name)
		}
	}
}

func TestPipelineService_Run_AllSourcesEmptyStillWritesSnapshot(t *testing.T) {
	t.Parallel()

	writer := &stubWriter{}
	loader := &stubLoader{}
	service := newTestPipeline(writer,
		loader,
		&stubProvider{name: "fbref", failPlayers: true, failTeams: true},
		&stubProvider{name: "understat", failPlayers: true, failTeams: true},
	)

	_, err := service.Run(context.Background())
	if !errors.Is(err, ErrNoEntities) {
		t.Fatalf("expected ErrNoEntities, got %v", err)
	}

	// The header-only snapshot is persisted before the run fails.
	if writer.snap == nil {
		t.Fatal("snapshot must be written even when every source fails")
	}
	snap := writer.snap
	if len(snap.Teams) != 0 || len(snap.Players) != 0 || len(snap.PlayerSeasonStats) != 0 {
		t.Fatalf("expected empty catalogs and facts, got %d teams, %d players, %d facts",
			len(snap.Teams), len(snap.Players), len(snap.PlayerSeasonStats))
	}
	if len(snap.Leagues) != 1 || len(snap.Seasons) != 1 || len(snap.SourceEntities) != 2 {
		t.Fatalf("config-derived tables must survive: %d leagues, %d seasons, %d mappings",
			len(snap.Leagues), len(snap.Seasons), len(snap.SourceEntities))
	}
	if len(snap.RawExtracts) != 4 {
		t.Fatalf("raw extracts = %d", len(snap.RawExtracts))
	}

	if loader.snap != nil {
		t.Fatal("warehouse load must not run on a failed run")
	}
}

func TestPipelineService_Run_WriterFailureIsFatal(t *testing.T) {
	t.Parallel()

	writer := &stubWriter{err: errors.New("disk full")}
	service := newTestPipeline(writer, nil, fbrefStub())

	if _, err := service.Run(context.Background()); err == nil {
		t.Fatal("writer failure must surface")
	}
}

func TestPipelineService_Run_LoaderReceivesSnapshot(t *testing.T) {
	t.Parallel()

	writer := &stubWriter{}
	loader := &stubLoader{}
	service := newTestPipeline(writer, loader, fbrefStub())

	snap, err := service.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if loader.snap != snap {
		t.Fatal("loader should receive the snapshot")
	}

	failingLoader := &stubLoader{err: errors.New("db down")}
	service = newTestPipeline(&stubWriter{}, failingLoader, fbrefStub())
	if _, err := service.Run(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
