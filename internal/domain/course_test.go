package domain

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		ok    bool
		year  int
		month time.Month
		day   int
	}{
		{"rfc3339", "2024-02-15T10:30:00Z", true, 2024, time.February, 15},
		{"datetime no zone", "2024-02-15T10:30:00", true, 2024, time.February, 15},
		{"date only", "2024-02-15", true, 2024, time.February, 15},
		{"empty", "", false, 0, 0, 0},
		{"garbage", "not-a-date", false, 0, 0, 0},
		{"epoch int", "1718000000", false, 0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDate(tc.in)
			if ok != tc.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if !tc.ok {
				return
			}
			if got.Year() != tc.year || got.Month() != tc.month || got.Day() != tc.day {
				t.Errorf("ParseDate(%q) = %v, want %d-%d-%d", tc.in, got, tc.year, tc.month, tc.day)
			}
		})
	}
}

func TestCourseDateFlags(t *testing.T) {
	c := Course{StartDate: "2024-01-10", EndDate: ""}

	if !c.HasStartDate() {
		t.Error("expected HasStartDate to be true")
	}
	if c.HasEndDate() {
		t.Error("expected HasEndDate to be false for empty end date")
	}

	c.EndDate = "invalid"
	if c.HasEndDate() {
		t.Error("expected HasEndDate to be false for malformed end date")
	}
}
