package timezone

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeOffsets(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+1", "UTC+1"},
		{"-1", "UTC-1"},
		{"+0", "UTC+0"},
		{"-0", "UTC-0"},
		{"+14", "UTC+14"},
		{"-14", "UTC-14"},
		{"  +3  ", "UTC+3"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if err != nil {
			t.Errorf("Normalize(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIANANames(t *testing.T) {
	for _, name := range []string{"Europe/Warsaw", "America/New_York", "UTC"} {
		got, err := Normalize(name)
		if err != nil {
			t.Errorf("Normalize(%q) error: %v", name, err)
			continue
		}
		if got != name {
			t.Errorf("Normalize(%q) = %q, want it kept verbatim", name, got)
		}
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "+15", "-15", "+100", "5", "Mars/Olympus", "UTC+1+1"} {
		if _, err := Normalize(in); !errors.Is(err, ErrInvalidTimezone) {
			t.Errorf("Normalize(%q) = %v, want ErrInvalidTimezone", in, err)
		}
	}
}

func TestLocationFixedOffset(t *testing.T) {
	loc, err := Location("UTC+3")
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	_, offset := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC).In(loc).Zone()
	if offset != 3*3600 {
		t.Fatalf("offset = %d, want %d", offset, 3*3600)
	}

	loc, err = Location("UTC-5")
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	_, offset = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC).In(loc).Zone()
	if offset != -5*3600 {
		t.Fatalf("offset = %d, want %d", offset, -5*3600)
	}
}

func TestLocationIANAName(t *testing.T) {
	loc, err := Location("Europe/Warsaw")
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Europe/Warsaw" {
		t.Fatalf("loc = %s, want Europe/Warsaw", loc)
	}
}

func TestLocationRejectsGarbage(t *testing.T) {
	if _, err := Location("Nowhere/Nothing"); !errors.Is(err, ErrInvalidTimezone) {
		t.Fatalf("Location(garbage) = %v, want ErrInvalidTimezone", err)
	}
}

func TestLocalDateCrossesMidnight(t *testing.T) {
	// 23:30 UTC is already the next calendar day for UTC+3.
	nowUTC := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)

	got, err := LocalDate("UTC+3", nowUTC)
	if err != nil {
		t.Fatalf("LocalDate: %v", err)
	}
	want := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("LocalDate(UTC+3) = %v, want %v", got, want)
	}

	// 00:30 UTC is still the previous day for UTC-5.
	nowUTC = time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)
	got, err = LocalDate("UTC-5", nowUTC)
	if err != nil {
		t.Fatalf("LocalDate: %v", err)
	}
	want = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("LocalDate(UTC-5) = %v, want %v", got, want)
	}
}
