package fbref

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tolgakurt/footlake/internal/platform/resilience"
)

// Player stats live inside an HTML comment, the way fbref actually ships
// them; the standings table sits in the live markup with a year-stamped id.
const statsPage = `<html><body>
<div class="table_container">
<!--
<table id="stats_standard_9">
<thead>
<tr><th></th><th></th><th colspan="3">Performance</th></tr>
<tr><th data-stat="player">Player</th><th data-stat="squad">Squad</th><th data-stat="minutes">Min</th><th data-stat="goals">Gls</th><th data-stat="xg">xG</th></tr>
</thead>
<tbody>
<tr><td data-stat="player">Ra&uacute;l Garc&iacute;a</td><td data-stat="squad">Athletic Club</td><td data-stat="minutes">1,980</td><td data-stat="goals">9</td><td data-stat="xg">7.1</td></tr>
<tr class="thead"><td data-stat="player">Player</td><td data-stat="squad">Squad</td><td data-stat="minutes">Min</td><td data-stat="goals">Gls</td><td data-stat="xg">xG</td></tr>
<tr><td data-stat="player"><a href="/p/1">Harry Kane</a></td><td data-stat="squad">Tottenham</td><td data-stat="minutes">2,653</td><td data-stat="goals">18</td><td data-stat="xg">16.9</td></tr>
</tbody>
</table>
-->
</div>
</body></html>`

const leaguePage = `<html><body>
<table id="results2019-202091_overall">
<thead>
<tr><th>Rk</th><th>Squad</th><th>Pts</th></tr>
</thead>
<tbody>
<tr><td data-stat="rank">1</td><td data-stat="squad">Liverpool</td><td data-stat="points">99</td></tr>
<tr><td data-stat="rank">2</td><td data-stat="squad">Manchester City</td><td data-stat="points">81</td></tr>
</tbody>
</table>
</body></html>`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		BaseURL:        server.URL,
		Timeout:        2 * time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1},
	})
}

func TestFetchPlayerSeasonStats(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/en/comps/9/2019-2020/stats/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(statsPage))
	}))

	tbl, err := client.FetchPlayerSeasonStats(context.Background(), "9", 2019)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, repeated header row should be dropped", tbl.Len())
	}
	if got := tbl.Cell(0, "player"); got != "Raúl García" {
		t.Fatalf("player = %q", got)
	}
	if got := tbl.Cell(0, "minutes"); got != "1,980" {
		t.Fatalf("minutes = %q", got)
	}
	if got := tbl.Cell(1, "player"); got != "Harry Kane" {
		t.Fatalf("link markup should be stripped, got %q", got)
	}
	if got := tbl.Cell(0, "season"); got != "1920" {
		t.Fatalf("season = %q, want fbref compact code", got)
	}
}

func TestFetchTeamSeasonStats(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/en/comps/9/2019-2020/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(leaguePage))
	}))

	tbl, err := client.FetchTeamSeasonStats(context.Background(), "9", 2019)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d", tbl.Len())
	}
	if got := tbl.Cell(0, "squad"); got != "Liverpool" {
		t.Fatalf("squad = %q", got)
	}
	if got := tbl.Cell(0, "points"); got != "99" {
		t.Fatalf("points = %q", got)
	}
	if got := tbl.Cell(1, "rank"); got != "2" {
		t.Fatalf("rank = %q", got)
	}
}

func TestFetchMissingTableIsError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
	}))

	if _, err := client.FetchPlayerSeasonStats(context.Background(), "9", 2019); err == nil {
		t.Fatal("expected error when the stats table is absent")
	}
}

func TestTransientClassification(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.FetchPlayerSeasonStats(context.Background(), "9", 2019)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsTransient(err) {
		t.Fatalf("429 should be transient, got %v", err)
	}

	client404 := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	_, err = client404.FetchPlayerSeasonStats(context.Background(), "9", 2019)
	if err == nil {
		t.Fatal("expected error")
	}
	if IsTransient(err) {
		t.Fatalf("404 should not be transient, got %v", err)
	}
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx := context.Background()
	_, _ = client.FetchPlayerSeasonStats(ctx, "9", 2019)
	_, _ = client.FetchPlayerSeasonStats(ctx, "9", 2020)

	_, err := client.FetchPlayerSeasonStats(ctx, "9", 2021)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected circuit open, got %v", err)
	}
}

func TestParseTableHeaderFallback(t *testing.T) {
	// Cells without data-stat attributes fall back to flattened thead
	// labels.
	page := []byte(`<table id="stats_misc">
<thead><tr><th>Player</th><th>Cards</th></tr></thead>
<tbody><tr><td>Sergio Ramos</td><td>11</td></tr></tbody>
</table>`)

	tbl, ok := parseTable(page, "stats_misc")
	if !ok {
		t.Fatal("table not found")
	}
	if got := tbl.Cell(0, "player"); got != "Sergio Ramos" {
		t.Fatalf("player = %q", got)
	}
	if got := tbl.Cell(0, "cards"); got != "11" {
		t.Fatalf("cards = %q", got)
	}
}
