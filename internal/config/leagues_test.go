package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLeaguesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leagues.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLeagues(t *testing.T) {
	path := writeLeaguesFile(t, `
leagues:
  - country_code: ENG
    country_name: England
    league_name: Premier League
    ids:
      fbref: "9"
      understat: "EPL"
  - country_code: ENG
    level: 2
    league_name: Championship
    active: false
`)

	entries, err := LoadLeagues(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	epl := entries[0]
	require.Equal(t, 1, epl.Level, "level should default to 1")
	require.Equal(t, "YYYY-YYYY", epl.SeasonFormat, "season format should default")
	require.True(t, epl.IsActive(), "active should default to true")
	require.Equal(t, "9", epl.SourceID("fbref"))
	require.Equal(t, "EPL", epl.SourceID("understat"))
	require.Empty(t, epl.SourceID("missing"), "unknown source must map to empty id")

	require.False(t, entries[1].IsActive(), "explicit active: false must stick")
}

func TestLoadLeaguesRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "leagues: ["},
		{name: "missing name", content: "leagues:\n  - country_code: ENG\n"},
		{name: "bad country code", content: "leagues:\n  - country_code: England\n    league_name: Premier League\n"},
		{name: "no leagues", content: "leagues: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLeaguesFile(t, tt.content)
			_, err := LoadLeagues(path)
			require.Error(t, err)
		})
	}
}

func TestLoadLeaguesMissingFile(t *testing.T) {
	_, err := LoadLeagues(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestActiveTopLevel(t *testing.T) {
	inactive := false
	entries := []LeagueEntry{
		{CountryCode: "ENG", Level: 1, LeagueName: "Premier League"},
		{CountryCode: "ENG", Level: 2, LeagueName: "Championship"},
		{CountryCode: "ESP", Level: 1, LeagueName: "La Liga", Active: &inactive},
	}

	got := ActiveTopLevel(entries)
	require.Len(t, got, 1)
	require.Equal(t, "Premier League", got[0].LeagueName)
}
