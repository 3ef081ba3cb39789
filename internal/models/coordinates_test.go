package models

import (
	"math"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	cases := []struct {
		name string
		a, b Coordinates
		want float64
		tol  float64
	}{
		{"same point", Coordinates{47.2169, 39.6289}, Coordinates{47.2169, 39.6289}, 0, 1e-9},
		{"one degree of latitude", Coordinates{0, 0}, Coordinates{1, 0}, 111195, 1},
		{"symmetric", Coordinates{1, 0}, Coordinates{0, 0}, 111195, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.DistanceMeters(tc.b); math.Abs(got-tc.want) > tc.tol {
				t.Fatalf("DistanceMeters = %f; want %f", got, tc.want)
			}
		})
	}
}
