// Package understat scrapes understat.com league pages. The site embeds
// its data as JSON.parse('...') blobs inside script tags; the client pulls
// the blob out, unescapes it and decodes it into a raw extract table.
package understat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tolgakurt/footlake/internal/platform/logging"
	"github.com/tolgakurt/footlake/internal/platform/resilience"
	"github.com/tolgakurt/footlake/internal/platform/tabular"
)

const defaultBaseURL = "https://understat.com"

// SourceName is the provider key used in league registry ids, provenance
// columns and the source entity map.
const SourceName = "understat"

var errUnderstatTransient = crerr.New("understat transient failure")

var embeddedJSONRegex = regexp.MustCompile(`(\w+)\s*=\s*JSON\.parse\('((?:[^'\\]|\\.)*)'\)`)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string { return SourceName }

type playerEntry struct {
	PlayerName string `json:"player_name"`
	TeamTitle  string `json:"team_title"`
	Position   string `json:"position"`
	Time       string `json:"time"`
	Goals      string `json:"goals"`
	Assists    string `json:"assists"`
	XG         string `json:"xG"`
}

type teamEntry struct {
	Title   string `json:"title"`
	History []struct {
		Points int `json:"pts"`
	} `json:"history"`
}

// FetchPlayerSeasonStats returns the player table for one league season.
// The season column carries understat's native representation: the bare
// first calendar year.
func (c *Client) FetchPlayerSeasonStats(ctx context.Context, leagueID string, startYear int) (*tabular.Table, error) {
	body, err := c.getLeaguePage(ctx, leagueID, startYear)
	if err != nil {
		return nil, err
	}

	payload, ok := extractEmbeddedJSON(body, "playersData")
	if !ok {
		return nil, fmt.Errorf("understat league %s season %d: playersData blob not found", leagueID, startYear)
	}

	var entries []playerEntry
	if err := sonic.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("decode playersData league %s season %d: %w", leagueID, startYear, err)
	}

	tbl := tabular.New("player", "team", "position", "minutes", "goals", "assists", "xg", "season")
	for _, e := range entries {
		// A player traded mid-season carries a comma-joined team list;
		// keep the first club as the season's primary team.
		team := e.TeamTitle
		if idx := strings.IndexByte(team, ','); idx >= 0 {
			team = team[:idx]
		}
		tbl.AppendRow(e.PlayerName, team, e.Position, e.Time, e.Goals, e.Assists, e.XG, strconv.Itoa(startYear))
	}
	return tbl, nil
}

// FetchTeamSeasonStats returns the team table for one league season with
// points accumulated over the season history. understat carries no
// authoritative final rank, so the rank column is absent by design.
func (c *Client) FetchTeamSeasonStats(ctx context.Context, leagueID string, startYear int) (*tabular.Table, error) {
	body, err := c.getLeaguePage(ctx, leagueID, startYear)
	if err != nil {
		return nil, err
	}

	payload, ok := extractEmbeddedJSON(body, "teamsData")
	if !ok {
		return nil, fmt.Errorf("understat league %s season %d: teamsData blob not found", leagueID, startYear)
	}

	var entries map[string]teamEntry
	if err := sonic.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("decode teamsData league %s season %d: %w", leagueID, startYear, err)
	}

	tbl := tabular.New("team", "points", "season")
	for _, e := range entries {
		points := 0
		for _, match := range e.History {
			points += match.Points
		}
		tbl.AppendRow(e.Title, strconv.Itoa(points), strconv.Itoa(startYear))
	}
	return tbl, nil
}

func (c *Client) getLeaguePage(ctx context.Context, leagueID string, startYear int) ([]byte, error) {
	if strings.TrimSpace(leagueID) == "" {
		return nil, fmt.Errorf("understat league id is required")
	}

	url := fmt.Sprintf("%s/league/%s/%d", c.baseURL, leagueID, startYear)
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return nil, fmt.Errorf("understat %s: %w", url, err)
		}
	}

	started := time.Now()
	body, err := c.do(ctx, url)
	if c.circuitEnabled {
		if err != nil {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "understat page fetched",
		"league_id", leagueID,
		"season", startYear,
		"bytes", len(body),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return body, nil
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", url, err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("request %s: %w", url, err), errUnderstatTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, crerr.Mark(err, errUnderstatTransient)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("read body %s: %w", url, err), errUnderstatTransient)
	}
	return body, nil
}

// IsTransient reports whether an error came from a retry-worthy provider
// hiccup rather than a permanent condition. The pipeline does not retry,
// but callers use this to choose the log level.
func IsTransient(err error) bool {
	return crerr.Is(err, errUnderstatTransient)
}

// extractEmbeddedJSON finds `name = JSON.parse('...')` in the page and
// returns the decoded blob. understat escapes the blob with \xHH
// sequences plus backslash escapes.
func extractEmbeddedJSON(body []byte, name string) ([]byte, bool) {
	for _, match := range embeddedJSONRegex.FindAllSubmatch(body, -1) {
		if string(match[1]) != name {
			continue
		}
		return unescapeBlob(match[2]), true
	}
	return nil, false
}

func unescapeBlob(blob []byte) []byte {
	out := make([]byte, 0, len(blob))
	for i := 0; i < len(blob); i++ {
		if blob[i] != '\\' || i+1 >= len(blob) {
			out = append(out, blob[i])
			continue
		}
		switch blob[i+1] {
		case 'x':
			if i+3 < len(blob) {
				if v, err := strconv.ParseUint(string(blob[i+2:i+4]), 16, 8); err == nil {
					out = append(out, byte(v))
					i += 3
					continue
				}
			}
			out = append(out, blob[i])
		case '\\', '\'', '"':
			out = append(out, blob[i+1])
			i++
		default:
			out = append(out, blob[i])
		}
	}
	return out
}
