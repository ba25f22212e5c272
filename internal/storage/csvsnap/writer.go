// Package csvsnap persists a snapshot as BOM-prefixed UTF-8 CSV flat
// files. The BOM is what makes Excel detect the encoding, and the files
// are the pipeline's primary interface, so every table is always written:
// an empty table still produces its header, and a failed write leaves a
// header-only placeholder rather than a missing file.
package csvsnap

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"

	"github.com/tolgakurt/footlake/internal/domain/snapshot"
	"github.com/tolgakurt/footlake/internal/platform/logging"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const maxConcurrentWrites = 4

type Writer struct {
	dir    string
	logger *logging.Logger
}

func NewWriter(dir string, logger *logging.Logger) *Writer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// file is one output CSV: a fixed header plus a row generator.
type file struct {
	name   string
	header []string
	rows   func() [][]string
}

// WriteSnapshot writes every table of the snapshot under the output
// directory. Files are independent of each other, so they are written
// concurrently; a failed file degrades to a header-only placeholder and
// only a placeholder that also fails aborts the run.
func (w *Writer) WriteSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", w.dir, err)
	}

	files := w.snapshotFiles(snap)

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(maxConcurrentWrites)
	for _, f := range files {
		f := f
		p.Go(func(ctx context.Context) error {
			return w.writeFile(ctx, f)
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "snapshot written",
		"run_id", snap.RunID,
		"dir", w.dir,
		"files", len(files),
	)
	return nil
}

func (w *Writer) writeFile(ctx context.Context, f file) error {
	path := filepath.Join(w.dir, f.name+".csv")

	if err := writeCSV(path, f.header, f.rows()); err != nil {
		w.logger.ErrorContext(ctx, "csv write failed, leaving placeholder",
			"file", path,
			"error", err,
		)
		if perr := writeCSV(path, f.header, nil); perr != nil {
			return fmt.Errorf("write placeholder %s: %w", path, perr)
		}
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.Write(utf8BOM)
	cw := csv.NewWriter(buf)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (w *Writer) snapshotFiles(snap *snapshot.Snapshot) []file {
	files := []file{
		{
			name:   "leagues",
			header: []string{"id", "name", "country", "level"},
			rows: func() [][]string {
				out := make([][]string, 0, len(snap.Leagues))
				for _, l := range snap.Leagues {
					out = append(out, []string{l.ID, l.Name, l.CountryCode, strconv.Itoa(l.Level)})
				}
				return out
			},
		},
		{
			name:   "seasons",
			header: []string{"id", "league_id", "season_start_year", "season_label"},
			rows: func() [][]string {
				out := make([][]string, 0, len(snap.Seasons))
				for _, s := range snap.Seasons {
					out = append(out, []string{s.ID, s.LeagueID, strconv.Itoa(s.StartYear), s.Label})
				}
				return out
			},
		},
		{
			name:   "teams",
			header: []string{"id", "name", "country"},
			rows: func() [][]string {
				out := make([][]string, 0, len(snap.Teams))
				for _, t := range snap.Teams {
					out = append(out, []string{t.ID, t.Name, t.Country})
				}
				return out
			},
		},
		{
			name:   "players",
			header: []string{"id", "name", "birth_date", "nationality", "position"},
			rows: func() [][]string {
				out := make([][]string, 0, len(snap.Players))
				for _, p := range snap.Players {
					out = append(out, []string{p.ID, p.Name, p.BirthDate, p.Nationality, p.Position})
				}
				return out
			},
		},
		{
			name:   "team_season",
			header: []string{"team_id", "season_id", "points", "rank"},
			rows: func() [][]string {
				out := make([][]string, 0, len(snap.TeamSeasons))
				for _, ts := range snap.TeamSeasons {
					out = append(out, []string{ts.TeamID, ts.SeasonID, strconv.Itoa(ts.Points), strconv.Itoa(ts.Rank)})
				}
				return out
			},
		},
		{
			name:   "player_season_stats",
			header: []string{"player_id", "team_id", "season_id", "minutes", "goals", "xg", "assists"},
			rows: func() [][]string {
				out := make([][]string, 0, len(snap.PlayerSeasonStats))
				for _, ps := range snap.PlayerSeasonStats {
					out = append(out, []string{
						ps.PlayerID, ps.TeamID, ps.SeasonID,
						strconv.Itoa(ps.Minutes), strconv.Itoa(ps.Goals),
						formatFloat(ps.XG), strconv.Itoa(ps.Assists),
					})
				}
				return out
			},
		},
		{
			name: "source_entity_map",
			header: []string{
				"entity_type", "source", "source_id", "canonical_id",
				"source_name", "season_id", "confidence", "match_method", "fetched_at",
			},
			rows: func() [][]string {
				out := make([][]string, 0, len(snap.SourceEntities))
				for _, e := range snap.SourceEntities {
					out = append(out, []string{
						e.EntityType, e.Source, e.SourceID, e.CanonicalID,
						e.SourceName, e.SeasonID, formatFloat(e.Confidence), e.MatchMethod,
						e.FetchedAt.UTC().Format("2006-01-02T15:04:05Z"),
					})
				}
				return out
			},
		},
		{
			name:   "top_forwards",
			header: []string{"player_id", "name", "season_id", "goals", "assists", "xg", "score"},
			rows: func() [][]string {
				out := make([][]string, 0, len(snap.TopForwards))
				for _, f := range snap.TopForwards {
					out = append(out, []string{
						f.PlayerID, f.Name, f.SeasonID,
						strconv.Itoa(f.Goals), strconv.Itoa(f.Assists),
						formatFloat(f.XG), formatFloat(f.Score),
					})
				}
				return out
			},
		},
	}

	for _, raw := range snap.RawExtracts {
		raw := raw
		// A source whose every fetch failed accumulates a zero-column
		// table; there is no header to write for it.
		if len(raw.Table.Columns()) == 0 {
			continue
		}
		files = append(files, file{
			name:   raw.Name,
			header: raw.Table.Columns(),
			rows:   raw.Table.Rows,
		})
	}
	return files
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
