package league

import "testing"

func TestMakeID(t *testing.T) {
	tests := []struct {
		name        string
		countryCode string
		level       int
		leagueName  string
		want        string
	}{
		{name: "premier league", countryCode: "ENG", level: 1, leagueName: "Premier League", want: "ENG_1_premier_league"},
		{name: "turkish super lig", countryCode: "TUR", level: 1, leagueName: "Süper Lig", want: "TUR_1_super_lig"},
		{name: "second tier", countryCode: "ENG", level: 2, leagueName: "Championship", want: "ENG_2_championship"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MakeID(tt.countryCode, tt.level, tt.leagueName); got != tt.want {
				t.Fatalf("MakeID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewSeason(t *testing.T) {
	s := NewSeason("ENG_1_premier_league", 2019)
	if s.ID != "ENG_1_premier_league__2019_2020" {
		t.Fatalf("season id = %q", s.ID)
	}
	if s.Label != "2019/2020" {
		t.Fatalf("season label = %q", s.Label)
	}
	if s.StartYear != 2019 || s.LeagueID != "ENG_1_premier_league" {
		t.Fatalf("unexpected season %+v", s)
	}
}
