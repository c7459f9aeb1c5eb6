package itinerary

// DefaultBudgetFloor keeps the budget sent to the provider positive when flights take
// the whole trip budget.
const DefaultBudgetFloor = 100.0

// ProviderPlace is a place record embedded in a recommendation request so the provider
// needs no second lookup.
type ProviderPlace struct {
	PlaceID  string  `json:"place_id,omitempty"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
	Reviews  int     `json:"user_ratings_total"`
	Price    string  `json:"price"`
	Info     string  `json:"info,omitempty"`
}

type RecommendationRequest struct {
	DestinationCityID string  `json:"destination_city_id"`
	GuestCount        int     `json:"guest_count"`
	DurationDays      int     `json:"duration_days"`
	TargetBudget      float64 `json:"target_budget"`
	CurrentDay        int     `json:"current_day"`
	DepartureDate     string  `json:"departure_date"`

	Activities  []ProviderPlace `json:"activities"`
	Restaurants []ProviderPlace `json:"restaurants"`
	Hotels      []ProviderPlace `json:"hotels"`
	Transport   []ProviderPlace `json:"transport"`

	LikedActivities     []string `json:"liked_activities"`
	LikedRestaurants    []string `json:"liked_restaurants"`
	LikedHotels         []string `json:"liked_hotels"`
	LikedTransport      []string `json:"liked_transport"`
	DislikedActivities  []string `json:"disliked_activities"`
	DislikedRestaurants []string `json:"disliked_restaurants"`
	DislikedHotels      []string `json:"disliked_hotels"`
	DislikedTransport   []string `json:"disliked_transport"`
}

// BuildRecommendationRequest asks the provider for exactly one day. Every place
// referenced by a like or dislike is embedded from known when known has it;
// references without a record are sent bare.
func BuildRecommendationRequest(trip Trip, day int, prefs *DayPreferences, known []TaggedCandidate, budgetFloor float64) RecommendationRequest {
	req := RecommendationRequest{
		DestinationCityID: trip.CityID,
		GuestCount:        trip.PartySize(),
		DurationDays:      1,
		TargetBudget:      trip.AvailableBudget(budgetFloor),
		CurrentDay:        day,
		DepartureDate:     trip.DepartureDate.Format(DateLayout),
	}
	if req.DestinationCityID == "" {
		req.DestinationCityID = trip.DestinationCity
	}

	if prefs == nil {
		prefs = &DayPreferences{Day: day}
	}
	liked := refsByCategory(prefs.Liked())
	disliked := refsByCategory(prefs.Disliked())

	req.LikedActivities = liked[CategoryActivities]
	req.LikedRestaurants = liked[CategoryRestaurants]
	req.LikedHotels = liked[CategoryHotels]
	req.LikedTransport = liked[CategoryTransport]
	req.DislikedActivities = disliked[CategoryActivities]
	req.DislikedRestaurants = disliked[CategoryRestaurants]
	req.DislikedHotels = disliked[CategoryHotels]
	req.DislikedTransport = disliked[CategoryTransport]

	index := make(map[Category]map[string]PlaceCandidate, len(Categories))
	for _, k := range known {
		if index[k.Category] == nil {
			index[k.Category] = make(map[string]PlaceCandidate)
		}
		index[k.Category][k.Reference(k.Category)] = k.PlaceCandidate
	}

	embed := func(c Category) []ProviderPlace {
		out := []ProviderPlace{}
		seen := map[string]bool{}
		for _, ref := range append(append([]string{}, liked[c]...), disliked[c]...) {
			p, ok := index[c][ref]
			if !ok || seen[ref] {
				continue
			}
			seen[ref] = true
			out = append(out, ProviderPlace{
				PlaceID:  p.ExternalPlaceID,
				Name:     p.Name,
				Category: p.CategoryLabel,
				Rating:   p.Rating,
				Reviews:  p.ReviewCount,
				Price:    p.PriceLabel,
				Info:     p.Info,
			})
		}
		return out
	}
	req.Activities = embed(CategoryActivities)
	req.Restaurants = embed(CategoryRestaurants)
	req.Hotels = embed(CategoryHotels)
	req.Transport = embed(CategoryTransport)

	return req
}

func refsByCategory(items []TaggedCandidate) map[Category][]string {
	out := make(map[Category][]string, len(Categories))
	for _, c := range Categories {
		out[c] = []string{}
	}
	for _, it := range items {
		out[it.Category] = append(out[it.Category], it.Reference(it.Category))
	}
	return out
}
