package main

import (
	"testing"

	"refillmap/internal/geo"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    geo.Size
		wantErr bool
	}{
		{"1280x800", geo.Size{W: 1280, H: 800}, false},
		{"640X480", geo.Size{W: 640, H: 480}, false},
		{"1280", geo.Size{}, true},
		{"0x10", geo.Size{}, true},
		{"10x-1", geo.Size{}, true},
		{"axb", geo.Size{}, true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSize(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
