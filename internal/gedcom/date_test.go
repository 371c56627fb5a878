package gedcom

import "testing"

func TestIsExact(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"15 JAN 1980", true},
		{"1 feb 1900", true},
		{"31 DEC 2000", true},
		{"ABT 1980", false},
		{"15 JAN", false},
		{"1980", false},
		{"", false},
		{"ABT 15 JAN 1980", false},
		{"BET 1 JAN 1900 AND 2 JAN 1900", false},
		{"32 JAN 1980", false},
		{"0 JAN 1980", false},
		{"15 JANUARY 1980", false},
		{"XX JAN 1980", false},
		{"15 JAN 19X0", false},
		{"FROM 1900", false},
	}

	for _, tt := range tests {
		if got := IsExact(tt.raw); got != tt.want {
			t.Errorf("IsExact(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseToISO(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"25 DEC 1990", "1990-12-25", true},
		{"1 MAR 852", "0852-03-01", true},
		{"19 mar 1952", "1952-03-19", true},
		{"ABT 1950", "", false},
		{"MAR 1952", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseToISO(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseToISO(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFormatFromISO(t *testing.T) {
	tests := []struct {
		iso  string
		want string
	}{
		{"1952-03-19", "19 MAR 1952"},
		{"1990-12-05", "05 DEC 1990"},
		{"0852-03-01", "01 MAR 852"},
		{"", ""},
		{"1990-13-01", ""},
		{"not-a-date", ""},
		{"1990-12", ""},
	}

	for _, tt := range tests {
		if got := FormatFromISO(tt.iso); got != tt.want {
			t.Errorf("FormatFromISO(%q) = %q, want %q", tt.iso, got, tt.want)
		}
	}
}

func TestResolvePrefersApprox(t *testing.T) {
	tests := []struct {
		exact, approx, want string
	}{
		{"", "", ""},
		{"1952-03-19", "", "19 MAR 1952"},
		{"", "ABT 1950", "ABT 1950"},
		{"1952-03-19", "ABT 1950", "ABT 1950"},
	}

	for _, tt := range tests {
		if got := Resolve(tt.exact, tt.approx); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.exact, tt.approx, got, tt.want)
		}
	}
}

func TestSplitDateIsMutuallyExclusive(t *testing.T) {
	for _, raw := range []string{"15 JAN 1980", "ABT 1980", "BEF 2 MAR 1700", "1850"} {
		exact, approx := SplitDate(raw)
		if (exact == "") == (approx == "") {
			t.Errorf("SplitDate(%q) = (%q, %q), want exactly one set", raw, exact, approx)
		}
	}
}

func TestExactDateRoundTrip(t *testing.T) {
	for _, raw := range []string{"01 JAN 1900", "29 FEB 2000", "31 DEC 1999"} {
		iso, ok := ParseToISO(raw)
		if !ok {
			t.Fatalf("ParseToISO(%q) not ok", raw)
		}
		if got := FormatFromISO(iso); got != raw {
			t.Errorf("round trip %q -> %q -> %q", raw, iso, got)
		}
	}
}
