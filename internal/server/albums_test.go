package server

import (
	"testing"
	"time"
)

func TestAlbumExpiresAt(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := Album{CreatedAt: created, ExpiresInDays: 15}

	want := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	if got := a.ExpiresAt(); !got.Equal(want) {
		t.Errorf("ExpiresAt() = %v, want %v", got, want)
	}
}

func TestClampExpiryDays(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 15},
		{-3, 15},
		{1, 1},
		{30, 30},
		{365, 365},
		{400, 365},
	}
	for _, tt := range tests {
		if got := clampExpiryDays(tt.in); got != tt.want {
			t.Errorf("clampExpiryDays(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampListLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 60},
		{-1, 60},
		{10, 10},
		{200, 200},
		{500, 200},
	}
	for _, tt := range tests {
		if got := clampListLimit(tt.in); got != tt.want {
			t.Errorf("clampListLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSecondsLeft(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := secondsLeft(now.Add(90*time.Second), now); got != 90 {
		t.Errorf("secondsLeft future = %d, want 90", got)
	}
	if got := secondsLeft(now.Add(-time.Hour), now); got != 0 {
		t.Errorf("secondsLeft past = %d, want 0", got)
	}
	if got := secondsLeft(now, now); got != 0 {
		t.Errorf("secondsLeft now = %d, want 0", got)
	}
}
