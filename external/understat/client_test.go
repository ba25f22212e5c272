package understat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tolgakurt/footlake/internal/platform/resilience"
)

const leaguePage = `<html><body><script>
	var playersData = JSON.parse('[{"player_name":"Ra\x c3\x bal Garc\x c3\x ada","team_title":"Athletic Club","position":"F","time":"900","goals":"5","assists":"2","xG":"4.2"},{"player_name":"Roaming Winger","team_title":"Everton,Arsenal","position":"M","time":"400","goals":"1","assists":"0","xG":"0.8"}]');
	var teamsData = JSON.parse('{"83":{"title":"Athletic Club","history":[{"pts":3},{"pts":1}]}}');
</script></body></html>`

func testPage() string {
	// The raw fixture above spells \xHH with a space so the Go source
	// stays readable; collapse it to the wire form.
	out := make([]byte, 0, len(leaguePage))
	for i := 0; i < len(leaguePage); i++ {
		if leaguePage[i] == ' ' && i >= 2 && leaguePage[i-2] == '\\' && leaguePage[i-1] == 'x' {
			continue
		}
		out = append(out, leaguePage[i])
	}
	return string(out)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(ClientConfig{
		BaseURL:        server.URL,
		Timeout:        2 * time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1},
	})
	return client, server
}

func TestFetchPlayerSeasonStats(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/league/EPL/2019" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(testPage()))
	}))

	tbl, err := client.FetchPlayerSeasonStats(context.Background(), "EPL", 2019)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d", tbl.Len())
	}
	if got := tbl.Cell(0, "player"); got != "Raúl García" {
		t.Fatalf("player = %q", got)
	}
	if got := tbl.Cell(0, "xg"); got != "4.2" {
		t.Fatalf("xg = %q", got)
	}
	if got := tbl.Cell(0, "season"); got != "2019" {
		t.Fatalf("season = %q", got)
	}
	if got := tbl.Cell(1, "team"); got != "Everton" {
		t.Fatalf("multi-club entry should keep first club, got %q", got)
	}
}

func TestFetchTeamSeasonStats(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testPage()))
	}))

	tbl, err := client.FetchTeamSeasonStats(context.Background(), "EPL", 2019)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("rows = %d", tbl.Len())
	}
	if got := tbl.Cell(0, "team"); got != "Athletic Club" {
		t.Fatalf("team = %q", got)
	}
	if got := tbl.Cell(0, "points"); got != "4" {
		t.Fatalf("points = %q", got)
	}
}

func TestFetchMissingBlobIsError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>nothing here</html>"))
	}))

	if _, err := client.FetchPlayerSeasonStats(context.Background(), "EPL", 2019); err == nil {
		t.Fatal("expected error when playersData is absent")
	}
}

func TestTransientClassification(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.FetchPlayerSeasonStats(context.Background(), "EPL", 2019)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsTransient(err) {
		t.Fatalf("503 should be transient, got %v", err)
	}

	client404, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	_, err = client404.FetchPlayerSeasonStats(context.Background(), "EPL", 2019)
	if err == nil {
		t.Fatal("expected error")
	}
	if IsTransient(err) {
		t.Fatalf("404 should not be transient, got %v", err)
	}
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx := context.Background()
	_, _ = client.FetchPlayerSeasonStats(ctx, "EPL", 2019)
	_, _ = client.FetchPlayerSeasonStats(ctx, "EPL", 2020)

	_, err := client.FetchPlayerSeasonStats(ctx, "EPL", 2021)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected circuit open, got %v", err)
	}
}
