package usecase

import (
	"context"
	"testing"

	"github.com/tolgakurt/footlake/internal/etl/schema"
	"github.com/tolgakurt/footlake/internal/platform/ident"
	"github.com/tolgakurt/footlake/internal/platform/logging"
)

func TestCatalogService_BuildTeams_FirstSpellingWins(t *testing.T) {
	t.Parallel()

	service := NewCatalogService(logging.NewNop())
	standings := []schema.TeamStandingRow{
		{TeamName: "Athletic Club"},
		{TeamName: "Liverpool"},
	}
	playerRows := []schema.PlayerStatRow{
		{TeamName: "ATHLETIC CLUB"},
		{TeamName: "Wolves"},
		{TeamName: ""},
	}

	teams := service.BuildTeams(context.Background(), standings, playerRows)

	if len(teams) != 3 {
		t.Fatalf("teams = %d, want 3", len(teams))
	}
	byName := make(map[string]bool, len(teams))
	for _, tm := range teams {
		byName[tm.Name] = true
	}
	if !byName["Athletic Club"] {
		t.Fatal("standings spelling should win over player-row spelling")
	}
	if byName["ATHLETIC CLUB"] {
		t.Fatal("duplicate casing should collapse into one team")
	}
	if !byName["Wolves"] {
		t.Fatal("player-row-only team should enter the catalog")
	}
}

func TestCatalogService_BuildPlayers_AccentedNamesMerge(t *testing.T) {
	t.Parallel()

	service := NewCatalogService(logging.NewNop())
	rows := []schema.PlayerStatRow{
		{PlayerName: "Raúl García", Position: "FW"},
		{PlayerName: "Raul Garcia", Nationality: "es ESP", BirthDate: "1986-07-11"},
	}

	players := service.BuildPlayers(context.Background(), rows)

	if len(players) != 1 {
		t.Fatalf("players = %d, want 1", len(players))
	}
	p := players[0]
	if p.Name != "Raúl García" {
		t.Fatalf("name = %q, first spelling should win", p.Name)
	}
	if p.ID != ident.StableID("player", "Raúl García") {
		t.Fatalf("id = %q", p.ID)
	}
	if p.Position != "FW" || p.Nationality != "es ESP" || p.BirthDate != "1986-07-11" {
		t.Fatalf("descriptive fields should fill from any row: %+v", p)
	}
}

func TestCatalogService_BuildPlayers_DeterministicOrder(t *testing.T) {
	t.Parallel()

	service := NewCatalogService(logging.NewNop())
	rows := []schema.PlayerStatRow{
		{PlayerName: "Zlatan Ibrahimović"},
		{PlayerName: "Andy Robertson"},
		{PlayerName: "Harry Kane"},
	}

	first := service.BuildPlayers(context.Background(), rows)
	second := service.BuildPlayers(context.Background(), rows)

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("order differs at %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ID >= first[i].ID {
			t.Fatalf("catalog not sorted by id at %d", i)
		}
	}
}
