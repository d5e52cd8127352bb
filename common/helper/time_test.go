package helper

import (
	"testing"
	"time"
)

func TestStrToTime(t *testing.T) {
	cases := []string{
		"2026-01-02 15:04:05",
		"2026-01-02 15:04",
		"2026/01/02 15:04:05",
		"2026-01-02",
		"2026/01/02",
		"2026-01-02T15:04:05+08:00",
	}
	for _, c := range cases {
		got := StrToTime(c)
		if got.IsZero() {
			t.Fatalf("parse failed: %s", c)
		}
		if got.Year() != 2026 || got.Month() != time.January || got.Day() != 2 {
			t.Fatalf("wrong date for %s: %v", c, got)
		}
	}

	for _, bad := range []string{"", "not-a-time", "02/01/2026 99:99"} {
		if got := StrToTime(bad); !got.IsZero() {
			t.Fatalf("expected zero time for %q, got %v", bad, got)
		}
	}
}
