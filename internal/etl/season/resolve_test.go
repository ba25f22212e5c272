package season

import "testing"

func TestResolveStartYear(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		kind   Kind
		want   int
		wantOK bool
	}{
		{name: "compact 1920", raw: "1920", kind: KindFBref, want: 2019, wantOK: true},
		{name: "compact 2223", raw: "2223", kind: KindFBref, want: 2022, wantOK: true},
		{name: "compact 9900", raw: "9900", kind: KindFBref, want: 1999, wantOK: true},
		{name: "span", raw: "2019-2020", kind: KindFBref, want: 2019, wantOK: true},
		{name: "span slash", raw: "2019/2020", kind: KindFBref, want: 2019, wantOK: true},
		{name: "bare year", raw: "2019", kind: KindUnderstat, want: 2019, wantOK: true},
		{name: "bare year fbref side", raw: "2019", kind: KindFBref, want: 2019, wantOK: true},
		{name: "year with noise", raw: "Season 2021", kind: KindUnderstat, want: 2021, wantOK: true},
		{name: "no digits", raw: "current", kind: KindFBref, wantOK: false},
		{name: "empty", raw: "", kind: KindUnderstat, wantOK: false},
		{name: "short digits", raw: "21", kind: KindFBref, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveStartYear(tt.raw, tt.kind)
			if ok != tt.wantOK {
				t.Fatalf("ResolveStartYear(%q) ok = %t, want %t", tt.raw, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("ResolveStartYear(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCompactCodeRoundTrip(t *testing.T) {
	// Above 2049 the century pivot reads the code back into the 1900s,
	// so the compact form only round-trips below the pivot.
	for year := 1990; year <= 2049; year++ {
		code := CompactCode(year)
		got, ok := ResolveStartYear(code, KindFBref)
		if !ok {
			t.Fatalf("CompactCode(%d) = %q did not resolve", year, code)
		}
		if year >= 2000 && got != year {
			t.Fatalf("round trip %d -> %q -> %d", year, code, got)
		}
		if year < 2000 && got != year {
			t.Fatalf("round trip %d -> %q -> %d", year, code, got)
		}
	}
}

func TestCompactCode(t *testing.T) {
	if got := CompactCode(2019); got != "1920" {
		t.Fatalf("CompactCode(2019) = %q", got)
	}
	if got := CompactCode(1999); got != "9900" {
		t.Fatalf("CompactCode(1999) = %q", got)
	}
	if got := CompactCode(2009); got != "0910" {
		t.Fatalf("CompactCode(2009) = %q", got)
	}
}
