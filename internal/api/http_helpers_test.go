package api

import "testing"

func TestParseAmountCents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "40.00", want: 4000},
		{in: "0.05", want: 5},
		{in: "7", want: 700},
		{in: "1.2", want: 120},
		{in: " 3.50 ", want: 350},
		{in: "+2.00", want: 200},
		{in: "92233720368547758.07", want: 9223372036854775807}, // max representable

		{in: "", wantErr: true},
		{in: "0", wantErr: true},
		{in: "0.00", wantErr: true},
		{in: "-5.00", wantErr: true},
		{in: "1.234", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "abc", wantErr: true},
		{in: ".", wantErr: true},
		// A signed fractional part must not parse as digits.
		{in: "1.-5", wantErr: true},
		{in: "1.+5", wantErr: true},
		// A second sign after the leading one must not slip through.
		{in: "--3.00", wantErr: true},
		// Values past int64 minor units must error, not wrap around.
		{in: "184467440737095517.00", wantErr: true},
		{in: "92233720368547758.08", wantErr: true},
		{in: "9223372036854775807.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmountCents(tt.in)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseAmountCents(%q): want error, got %d", tt.in, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("parseAmountCents(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("parseAmountCents(%q): want %d, got %d", tt.in, tt.want, got)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		minor int64
		want  string
	}{
		{minor: 0, want: "0.00"},
		{minor: 5, want: "0.05"},
		{minor: 120, want: "1.20"},
		{minor: 4000, want: "40.00"},
	}

	for _, tt := range tests {
		if got := formatAmount(tt.minor); got != tt.want {
			t.Fatalf("formatAmount(%d): want %s, got %s", tt.minor, tt.want, got)
		}
	}
}
