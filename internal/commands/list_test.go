package commands

import (
	"testing"
	"unicode/utf8"
)

func TestFormatStudyTime(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{60, "1m00s"},
		{125, "2m05s"},
		{3600, "1h00m"},
		{3725, "1h02m"},
	}
	for _, tc := range cases {
		if got := formatStudyTime(tc.seconds); got != tc.want {
			t.Errorf("formatStudyTime(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestTruncateShortStringUnchanged(t *testing.T) {
	if got := truncate("calculus", 20); got != "calculus" {
		t.Fatalf("unexpected truncation %q", got)
	}
}

func TestTruncateCountsRunesNotBytes(t *testing.T) {
	got := truncate("数学のノートを整理する勉強セッション", 10)
	if got != "数学のノートを整理…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
}
