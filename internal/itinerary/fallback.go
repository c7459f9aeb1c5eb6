package itinerary

import "fmt"

type FallbackPrices struct {
	Breakfast float64 `mapstructure:"breakfast" json:"breakfast"`
	Transfer  float64 `mapstructure:"transfer" json:"transfer"`
	Activity  float64 `mapstructure:"activity" json:"activity"`
}

func DefaultFallbackPrices() FallbackPrices {
	return FallbackPrices{Breakfast: 15, Transfer: 8, Activity: 10}
}

// normalized replaces non-positive prices with the defaults so a fallback day always
// costs something.
func (p FallbackPrices) normalized() FallbackPrices {
	def := DefaultFallbackPrices()
	if p.Breakfast <= 0 {
		p.Breakfast = def.Breakfast
	}
	if p.Transfer <= 0 {
		p.Transfer = def.Transfer
	}
	if p.Activity <= 0 {
		p.Activity = def.Activity
	}
	return p
}

const maxFallbackVisits = 3

// Fallback builds the placeholder day used when the provider cannot be reached:
// breakfast, a transfer, then up to three liked places each reached by taxi.
func Fallback(trip Trip, day int, liked []TaggedCandidate, prices FallbackPrices, reason string) DaySchedule {
	prices = prices.normalized()

	items := []ScheduleItem{
		{ID: "1", Type: ItemMeal, StartTime: "07:00", EndTime: "08:30", Title: "Breakfast", Cost: prices.Breakfast},
		fallbackTransfer("2", "08:30", "09:00", prices.Transfer),
	}

	hour, visits := 9, 0
	for _, c := range liked {
		if visits == maxFallbackVisits {
			break
		}
		if c.Category == CategoryTransport {
			continue
		}
		items = append(items, fallbackTransfer(
			fmt.Sprint(len(items)+1), clock(hour, 0), clock(hour, 30), prices.Transfer))
		hour++

		title := c.Name
		if title == "" {
			title = "Visit Attraction"
		}
		items = append(items, ScheduleItem{
			ID:              fmt.Sprint(len(items) + 1),
			Type:            ItemActivity,
			StartTime:       clock(hour, 0),
			EndTime:         clock(hour+2, 0),
			Title:           title,
			Cost:            prices.Activity,
			ExternalPlaceID: c.ExternalPlaceID,
		})
		hour += 3
		visits++
	}

	date := trip.DateForDay(day)
	s := DaySchedule{
		Day:            day,
		Date:           date,
		DateLabel:      date.Format(DisplayDateLayout),
		Completed:      true,
		Items:          items,
		Source:         SourceFallback,
		FallbackReason: reason,
	}
	s.Recalculate()
	return s
}

func fallbackTransfer(id, start, end string, cost float64) ScheduleItem {
	return ScheduleItem{
		ID:            id,
		Type:          ItemTransfer,
		StartTime:     start,
		EndTime:       end,
		Title:         "Transfer by Taxi",
		Cost:          cost,
		TransportMode: defaultTransportMode,
		DistanceLabel: "5km",
	}
}

func clock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
