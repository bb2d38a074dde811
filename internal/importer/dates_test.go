package importer

import "testing"

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		format string
		want   string
	}{
		{name: "US slashed", raw: "12/31/2023", format: "MM/DD/YYYY", want: "2023-12-31"},
		{name: "EU slashed", raw: "31/12/2023", format: "DD/MM/YYYY", want: "2023-12-31"},
		{name: "EU two-digit year", raw: "31/12/23", format: "DD/MM/YY", want: "2023-12-31"},
		{name: "US two-digit year", raw: "1/5/24", format: "MM/DD/YY", want: "2024-01-05"},
		{name: "ISO passthrough", raw: "2023-12-31", format: "YYYY-MM-DD", want: "2023-12-31"},
		{name: "dashed US", raw: "03-15-2023", format: "MM-DD-YYYY", want: "2023-03-15"},
		{name: "dotted ISO", raw: "2023.03.05", format: "YYYY.MM.DD", want: "2023-03-05"},
		{name: "dots as slashes", raw: "31.12.2023", format: "DD/MM/YYYY", want: "2023-12-31"},
		{name: "pads single digits", raw: "1/2/2023", format: "DD/MM/YYYY", want: "2023-02-01"},
		{name: "serial date", raw: float64(45000), format: "MM/DD/YYYY", want: "2023-03-15"},
		{name: "serial one", raw: float64(1), format: "YYYY-MM-DD", want: "1900-01-01"},
		{name: "serial int", raw: 45000, format: "DD/MM/YYYY", want: "2023-03-15"},
		{name: "unparseable passes through", raw: "notadate", format: "MM/DD/YYYY", want: "notadate"},
		{name: "wrong part count passes through", raw: "12/2023", format: "MM/DD/YYYY", want: "12/2023"},
		{name: "non-digit parts pass through", raw: "ab/cd/efgh", format: "MM/DD/YYYY", want: "ab/cd/efgh"},
		{name: "unknown format passes through", raw: "12/31/2023", format: "weird", want: "12/31/2023"},
		{name: "empty", raw: "", format: "MM/DD/YYYY", want: ""},
		{name: "nil", raw: nil, format: "MM/DD/YYYY", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDate(tt.raw, tt.format); got != tt.want {
				t.Errorf("FormatDate(%v, %q) = %q, want %q", tt.raw, tt.format, got, tt.want)
			}
		})
	}
}
