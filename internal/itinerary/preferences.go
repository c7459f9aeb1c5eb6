package itinerary

import (
	"fmt"
	"strings"
	"time"

	"tourplanner/pkg/utils"
)

type Category string

const (
	CategoryRestaurants Category = "restaurants"
	CategoryHotels      Category = "hotels"
	CategoryActivities  Category = "activities"
	CategoryTransport   Category = "transport"
)

// Categories is the display and request order of candidate sections.
var Categories = []Category{CategoryRestaurants, CategoryHotels, CategoryActivities, CategoryTransport}

var categoryAliases = map[string]Category{
	"restaurants":         CategoryRestaurants,
	"hotels":              CategoryHotels,
	"activities":          CategoryActivities,
	"attractions":         CategoryActivities,
	"tourist_attractions": CategoryActivities,
	"recreation_places":   CategoryActivities,
	"transport":           CategoryTransport,
	"local_transport":     CategoryTransport,
}

func ParseCategory(value string) (Category, error) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q", utils.ErrInvalidInput, value)
	}
	return c, nil
}

type PreferenceKind string

const (
	Like    PreferenceKind = "like"
	Dislike PreferenceKind = "dislike"
)

func ParsePreferenceKind(value string) (PreferenceKind, error) {
	switch PreferenceKind(strings.ToLower(strings.TrimSpace(value))) {
	case Like:
		return Like, nil
	case Dislike:
		return Dislike, nil
	}
	return "", fmt.Errorf("%w: preference type must be like or dislike", utils.ErrInvalidInput)
}

type PlaceCandidate struct {
	ID              string  `json:"id"`
	ExternalPlaceID string  `json:"placeId,omitempty"`
	Name            string  `json:"name"`
	CategoryLabel   string  `json:"category"`
	Rating          float64 `json:"rating"`
	ReviewCount     int     `json:"reviews"`
	PriceLabel      string  `json:"price"`
	Info            string  `json:"info,omitempty"`
	Liked           bool    `json:"liked"`
	Disliked        bool    `json:"disliked"`
}

// Toggle flips one flag. Turning a flag on clears the opposite one.
func (p *PlaceCandidate) Toggle(kind PreferenceKind) {
	switch kind {
	case Like:
		p.Liked = !p.Liked
		if p.Liked {
			p.Disliked = false
		}
	case Dislike:
		p.Disliked = !p.Disliked
		if p.Disliked {
			p.Liked = false
		}
	}
}

// Reference is the identifier sent to the recommendation provider. Transport options
// have no external id and are referenced by name.
func (p PlaceCandidate) Reference(c Category) string {
	if c == CategoryTransport || p.ExternalPlaceID == "" {
		return p.Name
	}
	return p.ExternalPlaceID
}

type TaggedCandidate struct {
	Category Category `json:"type"`
	PlaceCandidate
}

type DayPreferences struct {
	Day        int                           `json:"day"`
	Candidates map[Category][]PlaceCandidate `json:"categorizedCandidates"`
	CacheKey   string                        `json:"cacheKey"`
	UpdatedAt  time.Time                     `json:"updatedAt"`
}

func NewDayPreferences(day int, candidates CatalogCandidates, cacheKey string) *DayPreferences {
	return &DayPreferences{
		Day: day,
		Candidates: map[Category][]PlaceCandidate{
			CategoryRestaurants: candidates.Restaurants,
			CategoryHotels:      candidates.Hotels,
			CategoryActivities:  candidates.Attractions,
			CategoryTransport:   candidates.Transport,
		},
		CacheKey: cacheKey,
	}
}

// Toggle applies a like or dislike toggle to one candidate and returns its new state.
func (d *DayPreferences) Toggle(category Category, itemID string, kind PreferenceKind) (PlaceCandidate, error) {
	items := d.Candidates[category]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Toggle(kind)
			return items[i], nil
		}
	}
	return PlaceCandidate{}, fmt.Errorf("%w: %s/%s", utils.ErrPlaceNotFound, category, itemID)
}

func (d *DayPreferences) Liked() []TaggedCandidate {
	return d.collect(func(p PlaceCandidate) bool { return p.Liked })
}

func (d *DayPreferences) Disliked() []TaggedCandidate {
	return d.collect(func(p PlaceCandidate) bool { return p.Disliked })
}

func (d *DayPreferences) collect(keep func(PlaceCandidate) bool) []TaggedCandidate {
	var out []TaggedCandidate
	for _, c := range Categories {
		for _, p := range d.Candidates[c] {
			if keep(p) {
				out = append(out, TaggedCandidate{Category: c, PlaceCandidate: p})
			}
		}
	}
	return out
}

// Clone returns a deep copy, used to freeze the snapshot an in-flight request reads.
func (d *DayPreferences) Clone() *DayPreferences {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Candidates = make(map[Category][]PlaceCandidate, len(d.Candidates))
	for c, items := range d.Candidates {
		cp.Candidates[c] = append([]PlaceCandidate(nil), items...)
	}
	return &cp
}
