package server

import "testing"

func TestClampShareHours(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 48},
		{-5, 48},
		{1, 1},
		{48, 48},
		{720, 720},
		{1000, 720},
	}
	for _, tt := range tests {
		if got := clampShareHours(tt.in); got != tt.want {
			t.Errorf("clampShareHours(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
