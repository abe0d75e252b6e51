package server

import "testing"

func TestNormaliseEndpoint(t *testing.T) {
	tests := []struct {
		in         string
		want       string
		wantSecure bool
		wantErr    bool
	}{
		{"http://localhost:9000", "localhost:9000", false, false},
		{"https://s3.example.com", "s3.example.com", true, false},
		{"localhost:9000", "localhost:9000", false, false},
		{"minio:9000", "minio:9000", false, false},
		{"", "", false, true},
	}
	for _, tt := range tests {
		got, secure, err := normaliseEndpoint(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("normaliseEndpoint(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if got != tt.want || secure != tt.wantSecure {
			t.Errorf("normaliseEndpoint(%q) = (%q, %v), want (%q, %v)",
				tt.in, got, secure, tt.want, tt.wantSecure)
		}
	}
}
