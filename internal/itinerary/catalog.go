package itinerary

import (
	"math"
	"strconv"
	"strings"
)

// CatalogPlace is one place record as the catalog provider returns it.
type CatalogPlace struct {
	ID               FlexString `json:"id"`
	PlaceID          FlexString `json:"place_id"`
	Name             string     `json:"name"`
	TypeDisplay      string     `json:"type_display"`
	Types            []string   `json:"types"`
	Rating           FlexFloat  `json:"rating"`
	UserRatingsTotal FlexFloat  `json:"user_ratings_total"`
	AvgPrice         FlexFloat  `json:"avg_price"`
	PriceLevel       FlexString `json:"price_level"`
	Info             string     `json:"info"`
}

type CatalogData struct {
	Restaurants        []CatalogPlace `json:"restaurants"`
	Hotels             []CatalogPlace `json:"hotels"`
	TouristAttractions []CatalogPlace `json:"tourist_attractions"`
	Transport          []CatalogPlace `json:"transport"`
}

type CatalogResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    CatalogData `json:"data"`
}

// CatalogCandidates is the normalized catalog for one destination.
type CatalogCandidates struct {
	Restaurants []PlaceCandidate `json:"restaurants"`
	Hotels      []PlaceCandidate `json:"hotels"`
	Attractions []PlaceCandidate `json:"tourist_attractions"`
	Transport   []PlaceCandidate `json:"transport"`
}

type sectionDefaults struct {
	category string
	price    string
}

var catalogDefaults = map[Category]sectionDefaults{
	CategoryRestaurants: {category: "restaurant", price: "$$"},
	CategoryHotels:      {category: "hotel", price: "$$$"},
	CategoryActivities:  {category: "attraction", price: "Free"},
	CategoryTransport:   {category: "transport", price: "$"},
}

// NormalizeCatalog maps provider records into candidates. Transport falls back to the
// static options when the provider has none for the destination.
func NormalizeCatalog(data CatalogData) CatalogCandidates {
	out := CatalogCandidates{
		Restaurants: normalizeSection(CategoryRestaurants, data.Restaurants),
		Hotels:      normalizeSection(CategoryHotels, data.Hotels),
		Attractions: normalizeSection(CategoryActivities, data.TouristAttractions),
		Transport:   normalizeSection(CategoryTransport, data.Transport),
	}
	if len(out.Transport) == 0 {
		out.Transport = StaticTransportOptions()
	}
	return out
}

func normalizeSection(c Category, places []CatalogPlace) []PlaceCandidate {
	out := make([]PlaceCandidate, 0, len(places))
	for i, p := range places {
		out = append(out, normalizePlace(c, i, p))
	}
	return out
}

func normalizePlace(c Category, idx int, p CatalogPlace) PlaceCandidate {
	defaults := catalogDefaults[c]

	id := p.ID.String()
	if id == "" {
		id = p.PlaceID.String()
	}
	if id == "" {
		id = string(c) + "-" + strconv.Itoa(idx+1)
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Unnamed " + defaults.category
	}

	return PlaceCandidate{
		ID:              id,
		ExternalPlaceID: p.PlaceID.String(),
		Name:            name,
		CategoryLabel:   categoryLabel(p, defaults.category),
		Rating:          math.Min(math.Max(p.Rating.Or(0), 0), 5),
		ReviewCount:     int(math.Max(p.UserRatingsTotal.Or(0), 0)),
		PriceLabel:      priceLabel(p, defaults.price),
		Info:            strings.TrimSpace(p.Info),
	}
}

func categoryLabel(p CatalogPlace, def string) string {
	for _, t := range p.Types {
		if t = strings.TrimSpace(t); t != "" {
			return strings.ReplaceAll(t, "_", " ")
		}
	}
	if p.TypeDisplay != "" {
		return p.TypeDisplay
	}
	return def
}

func priceLabel(p CatalogPlace, def string) string {
	if p.AvgPrice.Valid && p.AvgPrice.Value > 0 {
		return formatNumber(p.AvgPrice.Value) + "$"
	}
	if p.PriceLevel != "" {
		return p.PriceLevel.String()
	}
	return def
}

func StaticTransportOptions() []PlaceCandidate {
	return []PlaceCandidate{
		{ID: "1", Name: "Metro", CategoryLabel: "Public Transit", Rating: 4.5, ReviewCount: 1000, PriceLabel: "$0.50 - $2.00", Info: "06:00-23:00"},
		{ID: "2", Name: "Bus", CategoryLabel: "Public Transit", Rating: 4.4, ReviewCount: 850, PriceLabel: "$0.30 - $1.50", Info: "05:00-22:00"},
		{ID: "3", Name: "Taxi", CategoryLabel: "Private Transport", Rating: 4.3, ReviewCount: 500, PriceLabel: "$2.00 - $10.00", Info: "24/7"},
		{ID: "4", Name: "Rental Car", CategoryLabel: "Private Transport", Rating: 4.2, ReviewCount: 300, PriceLabel: "$30.00 - $100.00/day", Info: "24/7"},
	}
}

// SavedPreferences are the liked and disliked references a user stored for a city.
type SavedPreferences struct {
	Liked    map[Category][]string
	Disliked map[Category][]string
}

// ApplySaved pre-marks fresh candidates with a user's stored preferences. Places are
// matched by external id, transport by name.
func (c *CatalogCandidates) ApplySaved(saved SavedPreferences) {
	mark := func(cat Category, items []PlaceCandidate) {
		liked := toSet(saved.Liked[cat])
		disliked := toSet(saved.Disliked[cat])
		for i := range items {
			ref := items[i].Reference(cat)
			if _, ok := liked[ref]; ok {
				items[i].Liked, items[i].Disliked = true, false
			} else if _, ok := disliked[ref]; ok {
				items[i].Liked, items[i].Disliked = false, true
			}
		}
	}
	mark(CategoryRestaurants, c.Restaurants)
	mark(CategoryHotels, c.Hotels)
	mark(CategoryActivities, c.Attractions)
	mark(CategoryTransport, c.Transport)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// CatalogLimits returns how many places and hotels to ask the catalog for.
func CatalogLimits(days int) (places, hotels int) {
	if days < 1 {
		days = 1
	}
	places = 10 * days
	if places > 50 {
		places = 50
	}
	hotels = int(math.Ceil(float64(days) * 1.5))
	return places, hotels
}
