package utils

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrDatabaseError  = errors.New("database error")
	ErrTripNotFound   = errors.New("trip not found")
	ErrTourNotFound   = errors.New("tour not found")
	ErrDayOutOfRange  = errors.New("day out of range")
	ErrItemNotFound   = errors.New("schedule item not found")
	ErrPlaceNotFound  = errors.New("place candidate not found")
	ErrNoPreferences  = errors.New("day has no saved preferences")
	ErrNoSchedule     = errors.New("no day schedules to build a tour from")
	ErrIncompleteTrip = errors.New("trip has days without a schedule")

	ErrNavigationBlocked    = errors.New("day cannot be opened before the previous days")
	ErrGenerationInProgress = errors.New("schedule generation already running for this day")
	ErrFinalizeInProgress   = errors.New("tour finalization already running for this trip")
	ErrStaleGeneration      = errors.New("trip changed while the schedule was being generated")

	ErrProviderUnavailable       = errors.New("provider unavailable")
	ErrMalformedProviderResponse = errors.New("malformed provider response")

	ErrUnauthorized = errors.New("unauthorized")
)
