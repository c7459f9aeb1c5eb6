package itinerary

import (
	"fmt"
	"strconv"
	"time"

	"tourplanner/pkg/utils"
)

type ItemType string

const (
	ItemMeal     ItemType = "meal"
	ItemTransfer ItemType = "transfer"
	ItemActivity ItemType = "activity"
	ItemHotel    ItemType = "hotel"
)

type ScheduleSource string

const (
	SourceProvider ScheduleSource = "provider"
	SourceFallback ScheduleSource = "fallback"
)

type ScheduleItem struct {
	ID              string   `json:"id"`
	Type            ItemType `json:"type"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Cost            float64  `json:"cost"`
	TransportMode   string   `json:"transportMode,omitempty"`
	DistanceLabel   string   `json:"distance,omitempty"`
	TravelTimeLabel string   `json:"travelTime,omitempty"`
	ExternalPlaceID string   `json:"placeId,omitempty"`
}

type DaySchedule struct {
	Day            int            `json:"day"`
	Date           time.Time      `json:"date"`
	DateLabel      string         `json:"dateLabel"`
	Completed      bool           `json:"completed"`
	Items          []ScheduleItem `json:"items"`
	TotalCost      float64        `json:"totalCost"`
	Source         ScheduleSource `json:"source"`
	FallbackReason string         `json:"fallbackReason,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// Recalculate derives TotalCost and Warnings from the items. Call it after every change
// to Items.
func (s *DaySchedule) Recalculate() {
	total := 0.0
	for _, it := range s.Items {
		total += it.Cost
	}
	s.TotalCost = total
	s.Warnings = TimeWarnings(s.Items)
}

func (s *DaySchedule) indexOf(itemID string) int {
	for i, it := range s.Items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

func (s *DaySchedule) DeleteItem(itemID string) error {
	idx := s.indexOf(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", utils.ErrItemNotFound, itemID)
	}
	s.Items = append(s.Items[:idx:idx], s.Items[idx+1:]...)
	s.Recalculate()
	return nil
}

// Replacement is the place a user picked to swap into an existing slot.
type Replacement struct {
	PlaceID string
	Name    string
	Price   FlexFloat
}

// ReplaceItem swaps the place of one slot, keeping its time and type. The slot gets a
// new id so a replaced item is never confused with the original.
func (s *DaySchedule) ReplaceItem(itemID string, r Replacement, now time.Time) (ScheduleItem, error) {
	idx := s.indexOf(itemID)
	if idx < 0 {
		return ScheduleItem{}, fmt.Errorf("%w: %s", utils.ErrItemNotFound, itemID)
	}
	if r.Name == "" {
		return ScheduleItem{}, fmt.Errorf("%w: replacement name is required", utils.ErrInvalidInput)
	}

	item := s.Items[idx]
	ref := r.PlaceID
	if ref == "" {
		ref = r.Name
	}
	item.ID = ref + "-" + strconv.FormatInt(now.UnixNano(), 10)
	item.Title = r.Name
	item.ExternalPlaceID = r.PlaceID
	if r.Price.Valid && r.Price.Value >= 0 {
		item.Cost = r.Price.Value
	}

	s.Items[idx] = item
	s.Recalculate()
	return item, nil
}

// TimeWarnings reports items whose times are unparsable, inverted, out of order or
// overlapping the previous item. Schedules are kept as given.
func TimeWarnings(items []ScheduleItem) []string {
	var warnings []string
	prevStart, prevEnd := -1, -1
	for _, it := range items {
		start, okS := clockMinutes(it.StartTime)
		end, okE := clockMinutes(it.EndTime)
		if !okS || !okE {
			warnings = append(warnings, fmt.Sprintf("item %s has an invalid time range %q-%q", it.ID, it.StartTime, it.EndTime))
			continue
		}
		if end < start {
			warnings = append(warnings, fmt.Sprintf("item %s ends before it starts", it.ID))
		}
		if prevStart >= 0 {
			switch {
			case start < prevStart:
				warnings = append(warnings, fmt.Sprintf("item %s starts before the previous item", it.ID))
			case start < prevEnd:
				warnings = append(warnings, fmt.Sprintf("item %s overlaps the previous item", it.ID))
			}
		}
		prevStart, prevEnd = start, end
	}
	return warnings
}

func clockMinutes(v string) (int, bool) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
