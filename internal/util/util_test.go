package util

import (
	"sort"
	"testing"
	"time"
)

func TestNewIDIsTimeOrdered(t *testing.T) {
	gen := NewIDGenerator()
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = gen.NewID()
	}

	if !sort.StringsAreSorted(ids) {
		t.Error("UUIDv7 identifiers should sort in creation order")
	}
	for _, id := range ids {
		if !IsValidID(id) {
			t.Fatalf("invalid id %q", id)
		}
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("0190C6A2-0000-7000-8000-000000000001")
	if err != nil {
		t.Fatalf("ParseID() = %v", err)
	}
	if id != "0190c6a2-0000-7000-8000-000000000001" {
		t.Errorf("ParseID() = %q, want lowercase form", id)
	}

	if _, err := ParseID("not-an-id"); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestDeterministicID(t *testing.T) {
	if DeterministicID(1) != DeterministicID(1) {
		t.Error("DeterministicID should be stable")
	}
	if DeterministicID(1) == DeterministicID(2) {
		t.Error("DeterministicID should differ per seed")
	}
}

func TestStorageTimeSortsLexically(t *testing.T) {
	base := time.Date(2026, 1, 25, 10, 0, 0, 0, time.UTC)
	earlier := FormatStorageTime(base)
	later := FormatStorageTime(base.Add(time.Millisecond))

	if !(earlier < later) {
		t.Errorf("%q should sort before %q", earlier, later)
	}

	parsed, err := ParseStorageTime(later)
	if err != nil {
		t.Fatalf("ParseStorageTime() = %v", err)
	}
	if !parsed.Equal(base.Add(time.Millisecond)) {
		t.Errorf("round trip = %v", parsed)
	}

	if _, err := ParseStorageTime("2026-01-25T10:00:00+02:00"); err != nil {
		t.Errorf("RFC3339 input should parse: %v", err)
	}
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)

	if !c.Now().Equal(start) {
		t.Errorf("Now() = %v", c.Now())
	}
	c.Advance(time.Hour)
	if !c.Now().Equal(start.Add(time.Hour)) {
		t.Errorf("after Advance Now() = %v", c.Now())
	}
}

func TestRelativeTimeString(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{30 * time.Hour, "yesterday"},
		{5 * 24 * time.Hour, "5 days ago"},
	}
	for _, tt := range tests {
		if got := RelativeTimeString(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("RelativeTimeString(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}
