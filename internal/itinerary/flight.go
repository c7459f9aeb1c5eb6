package itinerary

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Flight struct {
	ID         string    `json:"id"`
	FlightCode string    `json:"flightCode"`
	Airline    string    `json:"airline"`
	DepTime    time.Time `json:"depTime"`
	ArrTime    time.Time `json:"arrTime"`
	DepIATA    string    `json:"depIata"`
	ArrIATA    string    `json:"arrIata"`
	Duration   string    `json:"duration"`
	StopCount  int       `json:"stopCount"`
	Stops      string    `json:"stops"`
	Price      float64   `json:"price"`
}

type FlightSelection struct {
	Departure *Flight `json:"departure,omitempty"`
	Return    *Flight `json:"return,omitempty"`
}

// TotalPrice treats a missing flight as free.
func (s FlightSelection) TotalPrice() float64 {
	total := 0.0
	if s.Departure != nil {
		total += s.Departure.Price
	}
	if s.Return != nil {
		total += s.Return.Price
	}
	return total
}

// ProviderFlight is a flight as the flight search provider returns it.
type ProviderFlight struct {
	FlightCode string            `json:"flight_code"`
	Airline    string            `json:"airline"`
	DepTime    string            `json:"dep_time"`
	ArrTime    string            `json:"arr_time"`
	DepIATA    string            `json:"dep_iata"`
	ArrIATA    string            `json:"arr_iata"`
	Stops      []json.RawMessage `json:"stops"`
	Price      FlexFloat         `json:"price"`
}

// FlattenFlights turns the airline-grouped provider result into one list. Airlines are
// visited in name order so ids are stable.
func FlattenFlights(groups map[string][]ProviderFlight) []Flight {
	airlines := make([]string, 0, len(groups))
	for a := range groups {
		airlines = append(airlines, a)
	}
	sort.Strings(airlines)

	var out []Flight
	for _, airline := range airlines {
		for _, pf := range groups[airline] {
			f := toFlight(pf, len(out))
			if f.Airline == "" {
				f.Airline = airline
			}
			out = append(out, f)
		}
	}
	return out
}

func toFlight(pf ProviderFlight, idx int) Flight {
	dep, depOK := parseProviderTime(pf.DepTime)
	arr, arrOK := parseProviderTime(pf.ArrTime)

	f := Flight{
		ID:         fmt.Sprintf("%s_%d", pf.FlightCode, idx),
		FlightCode: pf.FlightCode,
		Airline:    strings.TrimSpace(pf.Airline),
		DepTime:    dep,
		ArrTime:    arr,
		DepIATA:    pf.DepIATA,
		ArrIATA:    pf.ArrIATA,
		StopCount:  len(pf.Stops),
		Stops:      StopsLabel(len(pf.Stops)),
		Price:      pf.Price.Or(0),
	}
	if depOK && arrOK {
		f.Duration = DurationLabel(arr.Sub(dep))
	}
	return f
}

func parseProviderTime(v string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DurationLabel renders a flight duration as "XhMMm".
func DurationLabel(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	mins := int(d.Round(time.Minute).Minutes())
	return fmt.Sprintf("%dh%02dm", mins/60, mins%60)
}

func StopsLabel(n int) string {
	switch n {
	case 0:
		return "Direct"
	case 1:
		return "1 stop"
	}
	return fmt.Sprintf("%d stops", n)
}
