// Package fbref scrapes fbref.com season pages. Stats tables there are
// frequently shipped inside HTML comments to defeat naive parsers, and
// cells carry their field name in a data-stat attribute; the parser
// uncomments the markup, locates the wanted table and reads cells by
// data-stat, falling back to flattened header labels when the attribute
// is missing.
package fbref

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tolgakurt/footlake/internal/etl/season"
	"github.com/tolgakurt/footlake/internal/platform/logging"
	"github.com/tolgakurt/footlake/internal/platform/resilience"
	"github.com/tolgakurt/footlake/internal/platform/tabular"
)

const defaultBaseURL = "https://fbref.com"

// SourceName is the provider key used in league registry ids, provenance
// columns and the source entity map.
const SourceName = "fbref"

const (
	playerTableID    = "stats_standard"
	standingsTableID = "results"
)

var errFBrefTransient = crerr.New("fbref transient failure")

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
		httpClient.Timeout = 30 * time.Second
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

// FetchPlayerSeasonStats scrapes the standard player stats table for one
// league season. The season column carries fbref's native compact code
// ("1920" for 2019/20).
func (c *Client) FetchPlayerSeasonStats(ctx context.Context, leagueID string, startYear int) (*tabular.Table, error) {
	span := fmt.Sprintf("%d-%d", startYear, startYear+1)
	url := fmt.Sprintf("%s/en/comps/%s/%s/stats/", c.baseURL, leagueID, span)

	body, err := c.get(ctx, url, leagueID, startYear)
	if err != nil {
		return nil, err
	}

	tbl, ok := parseTable(body, playerTableID)
	if !ok {
		return nil, fmt.Errorf("fbref league %s season %d: player stats table not found", leagueID, startYear)
	}
	tbl.AddConst("season", season.CompactCode(startYear))
	return tbl, nil
}

// FetchTeamSeasonStats scrapes the league table (standings) for one
// league season.
func (c *Client) FetchTeamSeasonStats(ctx context.Context, leagueID string, startYear int) (*tabular.Table, error) {
	span := fmt.Sprintf("%d-%d", startYear, startYear+1)
	url := fmt.Sprintf("%s/en/comps/%s/%s/", c.baseURL, leagueID, span)

	body, err := c.get(ctx, url, leagueID, startYear)
	if err != nil {
		return nil, err
	}

	tbl, ok := parseTable(body, standingsTableID)
	if !ok {
		return nil, fmt.Errorf("fbref league %s season %d: standings table not found", leagueID, startYear)
	}
	tbl.AddConst("season", season.CompactCode(startYear))
	return tbl, nil
}

func (c *Client) get(ctx context.Context, url, leagueID string, startYear int) ([]byte, error) {
	if strings.TrimSpace(leagueID) == "" {
		return nil, fmt.Errorf("fbref league id is required")
	}
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return nil, fmt.Errorf("fbref %s: %w", url, err)
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

	c.logger.DebugContext(ctx, "fbref page fetched",
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
		return nil, crerr.Mark(fmt.Errorf("request %s: %w", url, err), errFBrefTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, crerr.Mark(err, errFBrefTransient)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("read body %s: %w", url, err), errFBrefTransient)
	}
	return body, nil
}

// IsTransient reports whether an error came from a retry-worthy provider
// hiccup rather than a permanent condition.
func IsTransient(err error) bool {
	return crerr.Is(err, errFBrefTransient)
}
