package dateparse

import (
	"testing"
	"time"
)

// reference instant: 10 March 2024, midnight UTC
var ref = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

func TestParse_Relative(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"today with time", "vandaag 14:30", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"today mixed case", "Vandaag 09:05", time.Date(2024, 3, 10, 9, 5, 0, 0, time.UTC)},
		{"today single digit hour", "vandaag 7:45", time.Date(2024, 3, 10, 7, 45, 0, 0, time.UTC)},
		{"yesterday with time", "gisteren 23:59", time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)},
		{"day month in past keeps year", "5 jan", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"day month same day keeps year", "10 mrt", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"day month in future rolls back", "5 jun", time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC)},
		{"next day rolls back", "11 mrt", time.Date(2023, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"alternate march abbreviation", "1 maa", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"december from last year", "20 dec", time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in, ref)
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_UnparseableFallsBackToNow(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"gibberish",
		"12 foo",
		"eergisteren 10:00",
		"31 feb",
		"99 jan",
	}

	for _, in := range inputs {
		got := Parse(in, ref)
		if !got.Equal(ref.UTC()) {
			t.Errorf("Parse(%q) = %v, want reference now %v", in, got, ref.UTC())
		}
	}
}

func TestParse_TodayWithoutTimeReturnsNow(t *testing.T) {
	if got := Parse("vandaag", ref); !got.Equal(ref) {
		t.Errorf("Parse(\"vandaag\") = %v, want %v", got, ref)
	}
	if got := Parse("vandaag ??:??", ref); !got.Equal(ref) {
		t.Errorf("Parse(\"vandaag ??:??\") = %v, want %v", got, ref)
	}
}

func TestParse_YesterdayWithoutTimeReturnsYesterday(t *testing.T) {
	want := ref.AddDate(0, 0, -1)
	if got := Parse("gisteren", ref); !got.Equal(want) {
		t.Errorf("Parse(\"gisteren\") = %v, want %v", got, want)
	}
}
