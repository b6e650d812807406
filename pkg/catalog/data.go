package catalog

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// cityCoords maps known cities to [lat, lng]. Unknown locations fall back
// to San Francisco, matching the stub geocoder the service replaces.
var cityCoords = map[string][2]float64{
	"san francisco": {37.7749, -122.4194},
	"oakland":       {37.8044, -122.2712},
	"berkeley":      {37.8715, -122.2730},
	"new york":      {40.7128, -74.0060},
	"los angeles":   {34.0522, -118.2437},
	"chicago":       {41.8781, -87.6298},
	"seattle":       {47.6062, -122.3321},
	"miami":         {25.7617, -80.1918},
	"austin":        {30.2672, -97.7431},
	"denver":        {39.7392, -104.9903},
	"paris":         {48.8566, 2.3522},
	"london":        {51.5074, -0.1278},
	"tokyo":         {35.6762, 139.6503},
}

// Geocode resolves a location name to map coordinates.
// The second return reports whether the city was actually known.
func Geocode(location string) ([2]float64, bool) {
	lower := strings.ToLower(location)
	for city, coords := range cityCoords {
		if strings.Contains(lower, city) {
			return coords, true
		}
	}
	return cityCoords["san francisco"], false
}

// Cities with adjusted cost multipliers.
var (
	expensiveCities = []string{
		"san francisco", "new york", "los angeles", "seattle",
		"boston", "miami", "chicago", "washington dc", "hawaii",
	}
	budgetCities = []string{
		"austin", "denver", "portland", "phoenix", "dallas", "atlanta",
	}
)

// priceRanges maps item kind and price tier to a [min, max] USD range.
// Restaurants and activities are per person, hotels per night.
var priceRanges = map[string]map[string][2]int{
	"restaurant": {
		"$":    {8, 15},
		"$$":   {16, 30},
		"$$$":  {31, 60},
		"$$$$": {61, 150},
	},
	"hotel": {
		"$":    {60, 120},
		"$$":   {121, 250},
		"$$$":  {251, 450},
		"$$$$": {451, 800},
	},
	"activity": {
		"Free": {0, 0},
		"$":    {10, 25},
		"$$":   {26, 75},
		"$$$":  {76, 200},
		"$$$$": {150, 350},
	},
}

// EstimateCost derives a USD cost estimate from a price tier.
// The estimate is deterministic per item name so the same place always
// quotes the same price within a session, with a city cost multiplier.
func EstimateCost(priceTier, kind, location, itemName string) int {
	ranges, ok := priceRanges[kind]
	if !ok {
		ranges = priceRanges["restaurant"]
	}
	tier := priceTier
	if _, ok := ranges[tier]; !ok {
		tier = "$$"
	}
	bounds := ranges[tier]

	base := bounds[0]
	if spread := bounds[1] - bounds[0]; spread > 0 {
		h := fnv.New32a()
		h.Write([]byte(itemName))
		base += int(h.Sum32() % uint32(spread+1))
	}

	multiplier := 1.0
	lower := strings.ToLower(location)
	for _, city := range expensiveCities {
		if strings.Contains(lower, city) {
			multiplier = 1.15
			break
		}
	}
	if multiplier == 1.0 {
		for _, city := range budgetCities {
			if strings.Contains(lower, city) {
				multiplier = 0.90
				break
			}
		}
	}

	return int(float64(base) * multiplier)
}

// slugify builds a URL-ish slug from a location name.
func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

// mockRestaurants builds the restaurant result set for a location.
func mockRestaurants(location, foodType string) []Place {
	label := foodType
	if label == "" {
		label = "Restaurant"
	}
	center, _ := Geocode(location)

	places := []Place{
		{
			Name:        fmt.Sprintf("Amazing %s 1", label),
			Rating:      4.5,
			PriceTier:   "$$",
			Address:     fmt.Sprintf("123 Main St, %s", location),
			Coordinates: [2]float64{center[0] + 0.01, center[1] + 0.01},
			URL:         fmt.Sprintf("https://yelp.com/biz/restaurant-1-%s", slugify(location)),
		},
		{
			Name:        fmt.Sprintf("Delicious %s 2", label),
			Rating:      4.7,
			PriceTier:   "$$$",
			Address:     fmt.Sprintf("456 Oak Ave, %s", location),
			Coordinates: [2]float64{center[0] + 0.02, center[1] - 0.01},
			URL:         fmt.Sprintf("https://yelp.com/biz/restaurant-2-%s", slugify(location)),
		},
		{
			Name:        fmt.Sprintf("Top Rated %s 3", label),
			Rating:      4.8,
			PriceTier:   "$",
			Address:     fmt.Sprintf("789 Pine St, %s", location),
			Coordinates: [2]float64{center[0] - 0.01, center[1] + 0.02},
			URL:         fmt.Sprintf("https://yelp.com/biz/restaurant-3-%s", slugify(location)),
		},
	}

	for i := range places {
		cost := EstimateCost(places[i].PriceTier, "restaurant", location, places[i].Name)
		places[i].EstimatedCost = cost
		places[i].EstimatedTotal = cost
		places[i].CostLabel = fmt.Sprintf("$%d/person", cost)
	}
	return places
}

// mockActivities builds the activity result set for a location.
func mockActivities(location string) []Place {
	center, _ := Geocode(location)

	places := []Place{
		{
			Name:        fmt.Sprintf("Historic Landmark in %s", location),
			Rating:      4.6,
			Kind:        "Attraction",
			PriceTier:   "$",
			Address:     fmt.Sprintf("100 Heritage Blvd, %s", location),
			Coordinates: [2]float64{center[0] + 0.015, center[1] + 0.015},
			URL:         fmt.Sprintf("https://tripadvisor.com/attraction-1-%s", slugify(location)),
		},
		{
			Name:        fmt.Sprintf("Scenic Viewpoint in %s", location),
			Rating:      4.8,
			Kind:        "Viewpoint",
			PriceTier:   "Free",
			Address:     fmt.Sprintf("200 Mountain Rd, %s", location),
			Coordinates: [2]float64{center[0] - 0.015, center[1] + 0.02},
			URL:         fmt.Sprintf("https://tripadvisor.com/attraction-2-%s", slugify(location)),
		},
		{
			Name:        fmt.Sprintf("Cultural Museum in %s", location),
			Rating:      4.7,
			Kind:        "Museum",
			PriceTier:   "$$",
			Address:     fmt.Sprintf("300 Culture Ave, %s", location),
			Coordinates: [2]float64{center[0] + 0.02, center[1] - 0.015},
			URL:         fmt.Sprintf("https://tripadvisor.com/attraction-3-%s", slugify(location)),
		},
	}

	for i := range places {
		cost := EstimateCost(places[i].PriceTier, "activity", location, places[i].Name)
		places[i].EstimatedCost = cost
		places[i].EstimatedTotal = cost
		if cost > 0 {
			places[i].CostLabel = fmt.Sprintf("$%d/person", cost)
		} else {
			places[i].CostLabel = "Free"
		}
	}
	return places
}

// mockHotels builds the hotel result set for a location, filtered by an
// optional nightly budget in USD (0 means no filter).
func mockHotels(location string, budgetUSD float64) []Place {
	center, _ := Geocode(location)

	all := []Place{
		{
			Name:        fmt.Sprintf("Luxury Hotel %s", location),
			Rating:      4.5,
			PriceTier:   "$$$",
			Address:     fmt.Sprintf("500 Luxury Ln, %s", location),
			Coordinates: [2]float64{center[0] + 0.01, center[1] + 0.01},
			Amenities:   []string{"Pool", "Spa", "Gym", "WiFi"},
		},
		{
			Name:        fmt.Sprintf("Budget Inn %s", location),
			Rating:      4.0,
			PriceTier:   "$",
			Address:     fmt.Sprintf("600 Budget St, %s", location),
			Coordinates: [2]float64{center[0] - 0.01, center[1] + 0.01},
			Amenities:   []string{"WiFi", "Parking"},
		},
		{
			Name:        fmt.Sprintf("Boutique Hotel %s", location),
			Rating:      4.7,
			PriceTier:   "$$",
			Address:     fmt.Sprintf("700 Boutique Ave, %s", location),
			Coordinates: [2]float64{center[0] + 0.01, center[1] - 0.01},
			Amenities:   []string{"WiFi", "Breakfast", "Pet Friendly"},
		},
	}

	var places []Place
	for _, p := range all {
		cost := EstimateCost(p.PriceTier, "hotel", location, p.Name)
		if budgetUSD > 0 && float64(cost) > budgetUSD {
			continue
		}
		p.EstimatedCost = cost
		p.EstimatedTotal = cost
		p.CostLabel = fmt.Sprintf("$%d/night", cost)
		places = append(places, p)
	}
	return places
}

// computeBounds returns the bounding box of a coordinate path.
func computeBounds(path [][2]float64) *RouteBounds {
	if len(path) == 0 {
		return nil
	}
	b := &RouteBounds{
		North: path[0][0], South: path[0][0],
		East: path[0][1], West: path[0][1],
	}
	for _, p := range path[1:] {
		if p[0] > b.North {
			b.North = p[0]
		}
		if p[0] < b.South {
			b.South = p[0]
		}
		if p[1] > b.East {
			b.East = p[1]
		}
		if p[1] < b.West {
			b.West = p[1]
		}
	}
	return b
}
