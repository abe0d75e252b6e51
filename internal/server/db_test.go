package server

import "testing"

func TestOpenDBEmptyURL(t *testing.T) {
	if _, err := OpenDB(""); err == nil {
		t.Error("expected error for empty database URL")
	}
}
