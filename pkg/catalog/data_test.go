package catalog

import (
	"strings"
	"testing"
)

func TestGeocodeKnownCities(t *testing.T) {
	tests := []struct {
		location string
		wantLat  float64
		wantLng  float64
	}{
		{"San Francisco", 37.7749, -122.4194},
		{"downtown tokyo", 35.6762, 139.6503},
		{"Paris, France", 48.8566, 2.3522},
		{"NEW YORK CITY", 40.7128, -74.0060},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			coords, known := Geocode(tt.location)
			if !known {
				t.Fatalf("Geocode(%q) not known", tt.location)
			}
			if coords[0] != tt.wantLat || coords[1] != tt.wantLng {
				t.Errorf("Geocode(%q) = %v, want [%v %v]", tt.location, coords, tt.wantLat, tt.wantLng)
			}
		})
	}
}

func TestGeocodeUnknownFallsBack(t *testing.T) {
	coords, known := Geocode("Atlantis")
	if known {
		t.Error("expected unknown location")
	}
	sf := cityCoords["san francisco"]
	if coords != sf {
		t.Errorf("fallback = %v, want %v", coords, sf)
	}
}

func TestEstimateCostDeterministic(t *testing.T) {
	a := EstimateCost("$$", "restaurant", "Denver", "Cafe Uno")
	b := EstimateCost("$$", "restaurant", "Denver", "Cafe Uno")
	if a != b {
		t.Errorf("same inputs gave %d and %d", a, b)
	}
}

func TestEstimateCostWithinTierRange(t *testing.T) {
	tests := []struct {
		tier string
		kind string
		min  int
		max  int
	}{
		{"$", "restaurant", 8, 15},
		{"$$$$", "restaurant", 61, 150},
		{"$$", "hotel", 121, 250},
		{"Free", "activity", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.tier, func(t *testing.T) {
			// Denver applies a 0.90 multiplier; widen the bounds accordingly.
			got := EstimateCost(tt.tier, tt.kind, "Denver", "Some Place")
			lo := int(float64(tt.min) * 0.90)
			if got < lo || got > tt.max {
				t.Errorf("cost %d outside [%d, %d]", got, lo, tt.max)
			}
		})
	}
}

func TestEstimateCostCityMultiplier(t *testing.T) {
	expensive := EstimateCost("$$", "hotel", "San Francisco", "Grand Hotel")
	budget := EstimateCost("$$", "hotel", "Austin", "Grand Hotel")
	if expensive <= budget {
		t.Errorf("expensive city cost %d not above budget city cost %d", expensive, budget)
	}
}

func TestMockHotelsBudgetFilter(t *testing.T) {
	all := mockHotels("Chicago", 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 hotels unfiltered, got %d", len(all))
	}

	cheap := mockHotels("Chicago", 150)
	if len(cheap) >= len(all) {
		t.Errorf("budget filter removed nothing: %d hotels", len(cheap))
	}
	for _, h := range cheap {
		if float64(h.EstimatedCost) > 150 {
			t.Errorf("hotel %q costs $%d, over budget", h.Name, h.EstimatedCost)
		}
	}
}

func TestMockRestaurantsFoodTypeLabel(t *testing.T) {
	places := mockRestaurants("Seattle", "Thai")
	if len(places) == 0 {
		t.Fatal("no restaurants returned")
	}
	for _, p := range places {
		if !strings.Contains(p.Name, "Thai") {
			t.Errorf("restaurant name %q missing cuisine label", p.Name)
		}
		if p.CostLabel == "" {
			t.Errorf("restaurant %q missing cost label", p.Name)
		}
	}
}

func TestComputeBounds(t *testing.T) {
	path := [][2]float64{
		{37.7749, -122.4194},
		{40.7128, -74.0060},
		{34.0522, -118.2437},
	}
	b := computeBounds(path)
	if b == nil {
		t.Fatal("nil bounds")
	}
	if b.North != 40.7128 || b.South != 34.0522 {
		t.Errorf("lat bounds = [%v, %v]", b.South, b.North)
	}
	if b.East != -74.0060 || b.West != -122.4194 {
		t.Errorf("lng bounds = [%v, %v]", b.West, b.East)
	}
}

func TestComputeBoundsEmpty(t *testing.T) {
	if b := computeBounds(nil); b != nil {
		t.Errorf("expected nil bounds for empty path, got %+v", b)
	}
}
