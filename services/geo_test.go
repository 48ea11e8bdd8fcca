package services

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 40.7484, lng1: -73.9857,
			lat2: 40.7484, lng2: -73.9857,
			want: 0, tolerance: 0.001,
		},
		{
			name: "one degree of latitude",
			lat1: 40.0, lng1: -73.0,
			lat2: 41.0, lng2: -73.0,
			want: 111195, tolerance: 100,
		},
		{
			name: "empire state to bryant park",
			lat1: 40.7484, lng1: -73.9857,
			lat2: 40.7536, lng2: -73.9832,
			want: 615, tolerance: 25,
		},
		{
			name: "across the equator",
			lat1: -0.5, lng1: 10.0,
			lat2: 0.5, lng2: 10.0,
			want: 111195, tolerance: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine() = %.1fm, want %.1fm ±%.1f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	ab := Haversine(40.7484, -73.9857, 40.7536, -73.9832)
	ba := Haversine(40.7536, -73.9832, 40.7484, -73.9857)
	if math.Abs(ab-ba) > 1e-6 {
		t.Errorf("distance not symmetric: %f vs %f", ab, ba)
	}
}
