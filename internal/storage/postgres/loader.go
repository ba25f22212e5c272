// Package postgres loads snapshots into the relational warehouse. Loads
// are idempotent upserts keyed on the same IDs the CSV files carry, so a
// re-run converges the warehouse instead of duplicating rows.
package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/panjf2000/ants/v2"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/tolgakurt/footlake/internal/domain/snapshot"
	"github.com/tolgakurt/footlake/internal/platform/logging"
)

const upsertChunkSize = 500

// Connect opens a traced connection pool and verifies it.
func Connect(ctx context.Context, dbURL string) (*sqlx.DB, error) {
	db, err := otelsqlx.ConnectContext(ctx, "postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect warehouse: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

type Loader struct {
	db      *sqlx.DB
	workers int
	logger  *logging.Logger
}

func NewLoader(db *sqlx.DB, workers int, logger *logging.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{db: db, workers: workers, logger: logger}
}

// LoadSnapshot upserts every snapshot table. Tables are independent (no
// enforced foreign keys, matching the flat-file output), so loads run on
// a bounded worker pool; the first error wins but every task finishes.
func (l *Loader) LoadSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	pool, err := ants.NewPool(l.workers)
	if err != nil {
		return fmt.Errorf("create load pool: %w", err)
	}
	defer pool.Release()

	tasks := []struct {
		name string
		run  func(context.Context) error
	}{
		{"leagues", func(ctx context.Context) error { return l.upsertLeagues(ctx, snap) }},
		{"seasons", func(ctx context.Context) error { return l.upsertSeasons(ctx, snap) }},
		{"teams", func(ctx context.Context) error { return l.upsertTeams(ctx, snap) }},
		{"players", func(ctx context.Context) error { return l.upsertPlayers(ctx, snap) }},
		{"team_season", func(ctx context.Context) error { return l.upsertTeamSeasons(ctx, snap) }},
		{"player_season_stats", func(ctx context.Context) error { return l.upsertPlayerSeasonStats(ctx, snap) }},
		{"source_entity_map", func(ctx context.Context) error { return l.upsertSourceEntities(ctx, snap) }},
		{"top_forwards", func(ctx context.Context) error { return l.replaceTopForwards(ctx, snap) }},
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	started := time.Now()
	for _, task := range tasks {
		task := task
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := task.run(ctx); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("load %s: %w", task.name, err)
				}
				mu.Unlock()
			}
		}); err != nil {
			wg.Done()
			return fmt.Errorf("submit load %s: %w", task.name, err)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	l.logger.InfoContext(ctx, "warehouse load complete",
		"run_id", snap.RunID,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

type leagueRow struct {
	LeagueID    string `db:"league_id"`
	Name        string `db:"name"`
	CountryCode string `db:"country_code"`
	Level       int    `db:"level"`
}

func (l *Loader) upsertLeagues(ctx context.Context, snap *snapshot.Snapshot) error {
	rows := make([]leagueRow, 0, len(snap.Leagues))
	for _, item := range snap.Leagues {
		rows = append(rows, leagueRow{
			LeagueID:    item.ID,
			Name:        item.Name,
			CountryCode: item.CountryCode,
			Level:       item.Level,
		})
	}
	return upsertChunked(ctx, l.db, rows, `
		INSERT INTO leagues (league_id, name, country_code, level)
		VALUES (:league_id, :name, :country_code, :level)
		ON CONFLICT (league_id) DO UPDATE SET
			name = EXCLUDED.name,
			country_code = EXCLUDED.country_code,
			level = EXCLUDED.level`)
}

type seasonRow struct {
	SeasonID  string `db:"season_id"`
	LeagueID  string `db:"league_id"`
	StartYear int    `db:"start_year"`
	Label     string `db:"label"`
}

func (l *Loader) upsertSeasons(ctx context.Context, snap *snapshot.Snapshot) error {
	rows := make([]seasonRow, 0, len(snap.Seasons))
	for _, item := range snap.Seasons {
		rows = append(rows, seasonRow{
			SeasonID:  item.ID,
			LeagueID:  item.LeagueID,
			StartYear: item.StartYear,
			Label:     item.Label,
		})
	}
	return upsertChunked(ctx, l.db, rows, `
		INSERT INTO seasons (season_id, league_id, start_year, label)
		VALUES (:season_id, :league_id, :start_year, :label)
		ON CONFLICT (season_id) DO UPDATE SET
			league_id = EXCLUDED.league_id,
			start_year = EXCLUDED.start_year,
			label = EXCLUDED.label`)
}

type teamRow struct {
	TeamID  string `db:"team_id"`
	Name    string `db:"name"`
	Country string `db:"country"`
}

func (l *Loader) upsertTeams(ctx context.Context, snap *snapshot.Snapshot) error {
	rows := make([]teamRow, 0, len(snap.Teams))
	for _, item := range snap.Teams {
		rows = append(rows, teamRow{TeamID: item.ID, Name: item.Name, Country: item.Country})
	}
	return upsertChunked(ctx, l.db, rows, `
		INSERT INTO teams (team_id, name, country)
		VALUES (:team_id, :name, :country)
		ON CONFLICT (team_id) DO UPDATE SET
			name = EXCLUDED.name,
			country = EXCLUDED.country`)
}

type playerRow struct {
	PlayerID    string `db:"player_id"`
	Name        string `db:"name"`
	BirthDate   string `db:"birth_date"`
	Nationality string `db:"nationality"`
	Position    string `db:"position"`
}

func (l *Loader) upsertPlayers(ctx context.Context, snap *snapshot.Snapshot) error {
	rows := make([]playerRow, 0, len(snap.Players))
	for _, item := range snap.Players {
		rows = append(rows, playerRow{
			PlayerID:    item.ID,
			Name:        item.Name,
			BirthDate:   item.BirthDate,
			Nationality: item.Nationality,
			Position:    item.Position,
		})
	}
	return upsertChunked(ctx, l.db, rows, `
		INSERT INTO players (player_id, name, birth_date, nationality, position)
		VALUES (:player_id, :name, :birth_date, :nationality, :position)
		ON CONFLICT (player_id) DO UPDATE SET
			name = EXCLUDED.name,
			birth_date = EXCLUDED.birth_date,
			nationality = EXCLUDED.nationality,
			position = EXCLUDED.position`)
}

type teamSeasonRow struct {
	TeamID   string `db:"team_id"`
	SeasonID string `db:"season_id"`
	Points   int    `db:"points"`
	Rank     int    `db:"rank"`
}

func (l *Loader) upsertTeamSeasons(ctx context.Context, snap *snapshot.Snapshot) error {
	rows := make([]teamSeasonRow, 0, len(snap.TeamSeasons))
	for _, item := range snap.TeamSeasons {
		rows = append(rows, teamSeasonRow{
			TeamID:   item.TeamID,
			SeasonID: item.SeasonID,
			Points:   item.Points,
			Rank:     item.Rank,
		})
	}
	return upsertChunked(ctx, l.db, rows, `
		INSERT INTO team_season (team_id, season_id, points, rank)
		VALUES (:team_id, :season_id, :points, :rank)
		ON CONFLICT (team_id, season_id) DO UPDATE SET
			points = EXCLUDED.points,
			rank = EXCLUDED.rank`)
}

type playerSeasonStatRow struct {
	PlayerID string  `db:"player_id"`
	TeamID   string  `db:"team_id"`
	SeasonID string  `db:"season_id"`
	Minutes  int     `db:"minutes"`
	Goals    int     `db:"goals"`
	Assists  int     `db:"assists"`
	XG       float64 `db:"xg"`
}

func (l *Loader) upsertPlayerSeasonStats(ctx context.Context, snap *snapshot.Snapshot) error {
	rows := make([]playerSeasonStatRow, 0, len(snap.PlayerSeasonStats))
	for _, item := range snap.PlayerSeasonStats {
		rows = append(rows, playerSeasonStatRow{
			PlayerID: item.PlayerID,
			TeamID:   item.TeamID,
			SeasonID: item.SeasonID,
			Minutes:  item.Minutes,
			Goals:    item.Goals,
			Assists:  item.Assists,
			XG:       item.XG,
		})
	}
	return upsertChunked(ctx, l.db, rows, `
		INSERT INTO player_season_stats (player_id, team_id, season_id, minutes, goals, assists, xg)
		VALUES (:player_id, :team_id, :season_id, :minutes, :goals, :assists, :xg)
		ON CONFLICT (player_id, team_id, season_id) DO UPDATE SET
			minutes = EXCLUDED.minutes,
			goals = EXCLUDED.goals,
			assists = EXCLUDED.assists,
			xg = EXCLUDED.xg`)
}

type sourceEntityRow struct {
	EntityType  string    `db:"entity_type"`
	Source      string    `db:"source"`
	SourceID    string    `db:"source_id"`
	CanonicalID string    `db:"canonical_id"`
	SourceName  string    `db:"source_name"`
	SeasonID    string    `db:"season_id"`
	Confidence  float64   `db:"confidence"`
	MatchMethod string    `db:"match_method"`
	FetchedAt   time.Time `db:"fetched_at"`
}

func (l *Loader) upsertSourceEntities(ctx context.Context, snap *snapshot.Snapshot) error {
	rows := make([]sourceEntityRow, 0, len(snap.SourceEntities))
	for _, item := range snap.SourceEntities {
		rows = append(rows, sourceEntityRow{
			EntityType:  item.EntityType,
			Source:      item.Source,
			SourceID:    item.SourceID,
			CanonicalID: item.CanonicalID,
			SourceName:  item.SourceName,
			SeasonID:    item.SeasonID,
			Confidence:  item.Confidence,
			MatchMethod: item.MatchMethod,
			FetchedAt:   item.FetchedAt,
		})
	}
	return upsertChunked(ctx, l.db, rows, `
		INSERT INTO source_entity_map (entity_type, source, source_id, canonical_id, source_name, season_id, confidence, match_method, fetched_at)
		VALUES (:entity_type, :source, :source_id, :canonical_id, :source_name, :season_id, :confidence, :match_method, :fetched_at)
		ON CONFLICT (entity_type, source, source_id) DO UPDATE SET
			canonical_id = EXCLUDED.canonical_id,
			source_name = EXCLUDED.source_name,
			season_id = EXCLUDED.season_id,
			confidence = EXCLUDED.confidence,
			match_method = EXCLUDED.match_method,
			fetched_at = EXCLUDED.fetched_at`)
}

type topForwardRow struct {
	PlayerID string  `db:"player_id"`
	Name     string  `db:"name"`
	SeasonID string  `db:"season_id"`
	Goals    int     `db:"goals"`
	Assists  int     `db:"assists"`
	XG       float64 `db:"xg"`
	Score    float64 `db:"score"`
}

// replaceTopForwards rewrites the report table whole: it is a derived
// ranking, and stale rows from a previous run must not linger below the
// new cutoff.
func (l *Loader) replaceTopForwards(ctx context.Context, snap *snapshot.Snapshot) error {
	if _, err := l.db.ExecContext(ctx, `TRUNCATE top_forwards`); err != nil {
		return fmt.Errorf("truncate top_forwards: %w", err)
	}

	rows := make([]topForwardRow, 0, len(snap.TopForwards))
	for _, item := range snap.TopForwards {
		rows = append(rows, topForwardRow{
			PlayerID: item.PlayerID,
			Name:     item.Name,
			SeasonID: item.SeasonID,
			Goals:    item.Goals,
			Assists:  item.Assists,
			XG:       item.XG,
			Score:    item.Score,
		})
	}
	return upsertChunked(ctx, l.db, rows, `
		INSERT INTO top_forwards (player_id, name, season_id, goals, assists, xg, score)
		VALUES (:player_id, :name, :season_id, :goals, :assists, :xg, :score)`)
}

func upsertChunked[T any](ctx context.Context, db *sqlx.DB, rows []T, query string) error {
	for start := 0; start < len(rows); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := db.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}
