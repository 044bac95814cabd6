package enrich

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm                 float64
		tolKm                  float64
	}{
		{"same point", 18.5308, 73.8470, 18.5308, 73.8470, 0, 0.001},
		{"Pune station to Shivajinagar", 18.5289, 73.8744, 18.5308, 73.8470, 2.9, 0.3},
		{"Mumbai to Pune", 19.0760, 72.8777, 18.5204, 73.8567, 119, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolKm {
				t.Errorf("haversineKm = %v, want %v ± %v", got, tt.wantKm, tt.tolKm)
			}
		})
	}
}

func TestHaversineKm_Symmetric(t *testing.T) {
	a := haversineKm(18.53, 73.84, 19.07, 72.87)
	b := haversineKm(19.07, 72.87, 18.53, 73.84)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance should be symmetric: %v vs %v", a, b)
	}
}
