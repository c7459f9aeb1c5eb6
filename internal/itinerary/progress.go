package itinerary

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/crypto/blake2b"

	"tourplanner/pkg/utils"
)

type Step string

const (
	StepFlight      Step = "flight"
	StepPreferences Step = "preferences"
	StepSchedule    Step = "schedule"
	StepFinal       Step = "final"
)

// TripProgress holds the per-day preferences and schedules of one trip session.
type TripProgress struct {
	Preferences map[int]*DayPreferences `json:"dayPreferences"`
	Schedules   map[int]*DaySchedule    `json:"daySchedules"`
	CurrentDay  int                     `json:"currentDay"`
	CurrentStep Step                    `json:"currentStep"`
}

func NewTripProgress() TripProgress {
	return TripProgress{
		Preferences: map[int]*DayPreferences{},
		Schedules:   map[int]*DaySchedule{},
		CurrentDay:  1,
		CurrentStep: StepFlight,
	}
}

func (p *TripProgress) ensure() {
	if p.Preferences == nil {
		p.Preferences = map[int]*DayPreferences{}
	}
	if p.Schedules == nil {
		p.Schedules = map[int]*DaySchedule{}
	}
}

func (p *TripProgress) SavePreferences(prefs *DayPreferences, totalDays int) error {
	if prefs == nil || prefs.Day < 1 || prefs.Day > totalDays {
		return dayRangeErr(prefs.dayOrZero(), totalDays)
	}
	p.ensure()
	p.Preferences[prefs.Day] = prefs
	return nil
}

func (d *DayPreferences) dayOrZero() int {
	if d == nil {
		return 0
	}
	return d.Day
}

// RecordSchedule stores the schedule of its day, replacing any previous one, and moves
// the current day to the first day still missing a schedule.
func (p *TripProgress) RecordSchedule(s DaySchedule, totalDays int) error {
	if s.Day < 1 || s.Day > totalDays {
		return dayRangeErr(s.Day, totalDays)
	}
	p.ensure()
	p.Schedules[s.Day] = &s
	p.CurrentDay = FirstIncompleteDay(p.Schedules, totalDays)
	if p.AllComplete(totalDays) {
		p.CurrentStep = StepFinal
	} else {
		p.CurrentStep = StepPreferences
	}
	return nil
}

func (p *TripProgress) IsDayComplete(day int) bool {
	return p.Schedules[day] != nil
}

// AllComplete requires a schedule for every day in 1..totalDays.
func (p *TripProgress) AllComplete(totalDays int) bool {
	if totalDays < 1 {
		return false
	}
	for day := 1; day <= totalDays; day++ {
		if !p.IsDayComplete(day) {
			return false
		}
	}
	return true
}

// ClearAll drops every day's preferences and schedule and returns to day 1.
func (p *TripProgress) ClearAll() {
	p.Preferences = map[int]*DayPreferences{}
	p.Schedules = map[int]*DaySchedule{}
	p.CurrentDay = 1
	if p.CurrentStep != StepFlight {
		p.CurrentStep = StepPreferences
	}
}

// HighestStartedDay is the largest day with saved preferences or a schedule, 0 if none.
func (p *TripProgress) HighestStartedDay() int {
	highest := 0
	for day := range p.Preferences {
		if day > highest {
			highest = day
		}
	}
	for day := range p.Schedules {
		if day > highest {
			highest = day
		}
	}
	return highest
}

// CanNavigate allows any started day and exactly one day past the highest started one.
func (p *TripProgress) CanNavigate(day, totalDays int) bool {
	if day < 1 || day > totalDays {
		return false
	}
	return day <= p.HighestStartedDay()+1
}

func (p *TripProgress) Navigate(day, totalDays int) error {
	if day < 1 || day > totalDays {
		return dayRangeErr(day, totalDays)
	}
	if !p.CanNavigate(day, totalDays) {
		return fmt.Errorf("%w: day %d, next open day is %d", utils.ErrNavigationBlocked, day, p.HighestStartedDay()+1)
	}
	p.CurrentDay = day
	return nil
}

// CompletedDays lists days with a schedule in ascending order.
func (p *TripProgress) CompletedDays() []int {
	days := make([]int, 0, len(p.Schedules))
	for day, s := range p.Schedules {
		if s != nil {
			days = append(days, day)
		}
	}
	sort.Ints(days)
	return days
}

// FirstIncompleteDay is the lowest day without a schedule. When every day is done it
// returns totalDays.
func FirstIncompleteDay(schedules map[int]*DaySchedule, totalDays int) int {
	for day := 1; day <= totalDays; day++ {
		if schedules[day] == nil {
			return day
		}
	}
	if totalDays < 1 {
		return 1
	}
	return totalDays
}

// CacheKey identifies the catalog context of a day. Candidates saved under a different
// key are stale and get fetched again.
func CacheKey(destinationCityID string, day int) string {
	sum := blake2b.Sum256([]byte(destinationCityID + "\x00" + strconv.Itoa(day)))
	return hex.EncodeToString(sum[:16])
}

func dayRangeErr(day, totalDays int) error {
	return fmt.Errorf("%w: day %d not in 1..%d", utils.ErrDayOutOfRange, day, totalDays)
}
