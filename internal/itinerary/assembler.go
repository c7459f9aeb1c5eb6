package itinerary

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tourplanner/pkg/utils"
)

// ProviderActivity is one activity as the recommendation provider returns it. All
// fields are optional.
type ProviderActivity struct {
	Type          string     `json:"type"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	PlaceName     string     `json:"place_name"`
	Description   string     `json:"description"`
	Cost          FlexFloat  `json:"cost"`
	EstimatedCost FlexFloat  `json:"estimated_cost"`
	PlaceID       FlexString `json:"place_id"`
	TransportMode string     `json:"transport_mode"`
	DistanceKm    FlexFloat  `json:"distance_km"`
	TravelTimeMin FlexFloat  `json:"travel_time_min"`
}

type ProviderDay struct {
	Day        FlexFloat          `json:"day"`
	Activities []ProviderActivity `json:"activities"`
}

type RecommendationResponse struct {
	Success   *bool          `json:"success,omitempty"`
	Error     string         `json:"error,omitempty"`
	Itinerary []ProviderDay  `json:"itinerary"`
	TourInfo  map[string]any `json:"tour_info,omitempty"`
}

// Failed reports an explicit {success: false} payload.
func (r *RecommendationResponse) Failed() bool {
	return r.Success != nil && !*r.Success
}

const (
	defaultStartTime     = "09:00"
	defaultEndTime       = "10:00"
	defaultTitle         = "Activity"
	defaultTransportMode = "taxi"
)

// Assemble turns a provider response into the schedule of one day. A response that
// covers several days is narrowed to the requested one. Missing activity fields get
// defaults. The result depends only on its inputs.
func Assemble(resp *RecommendationResponse, trip Trip, day int) (DaySchedule, error) {
	if resp == nil || len(resp.Itinerary) == 0 {
		return DaySchedule{}, fmt.Errorf("%w: empty itinerary", utils.ErrMalformedProviderResponse)
	}

	entry, ok := selectDay(resp.Itinerary, day)
	if !ok {
		return DaySchedule{}, fmt.Errorf("%w: no itinerary entry for day %d", utils.ErrMalformedProviderResponse, day)
	}
	if len(entry.Activities) == 0 {
		return DaySchedule{}, fmt.Errorf("%w: day %d has no activities", utils.ErrMalformedProviderResponse, day)
	}

	items := make([]ScheduleItem, 0, len(entry.Activities))
	for i, a := range entry.Activities {
		items = append(items, NormalizeActivity(i, a))
	}

	date := trip.DateForDay(day)
	s := DaySchedule{
		Day:       day,
		Date:      date,
		DateLabel: date.Format(DisplayDateLayout),
		Completed: true,
		Items:     items,
		Source:    SourceProvider,
	}
	s.Recalculate()
	return s, nil
}

func selectDay(days []ProviderDay, day int) (ProviderDay, bool) {
	if len(days) == 1 {
		return days[0], true
	}
	for _, d := range days {
		if d.Day.Valid && int(d.Day.Value) == day {
			return d, true
		}
	}
	if day >= 1 && day <= len(days) {
		return days[day-1], true
	}
	return ProviderDay{}, false
}

// NormalizeActivity maps one provider activity at position idx. Cost prefers the
// explicit cost, then the estimate, then zero.
func NormalizeActivity(idx int, a ProviderActivity) ScheduleItem {
	cost := a.Cost.Or(a.EstimatedCost.Or(0))
	if cost < 0 || math.IsNaN(cost) {
		cost = 0
	}

	itemType := ItemType(strings.ToLower(strings.TrimSpace(a.Type)))
	if itemType == "" {
		itemType = ItemActivity
	}

	item := ScheduleItem{
		ID:              strconv.Itoa(idx + 1),
		Type:            itemType,
		StartTime:       orDefault(a.StartTime, defaultStartTime),
		EndTime:         orDefault(a.EndTime, defaultEndTime),
		Title:           orDefault(a.PlaceName, defaultTitle),
		Description:     strings.TrimSpace(a.Description),
		Cost:            cost,
		ExternalPlaceID: a.PlaceID.String(),
	}

	if itemType == ItemTransfer {
		item.TransportMode = orDefault(a.TransportMode, defaultTransportMode)
		if a.DistanceKm.Valid {
			item.DistanceLabel = formatNumber(math.Round(a.DistanceKm.Value*10)/10) + "km"
		}
		if a.TravelTimeMin.Valid {
			item.TravelTimeLabel = formatNumber(a.TravelTimeMin.Value) + " min"
		}
	}
	return item
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
