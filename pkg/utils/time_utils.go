package utils

import "time"

// Vietnam time location (ICT, +07:00)
var vnLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Ho_Chi_Minh"); err == nil {
		return loc
	}
	return time.FixedZone("ICT", 7*3600)
}()

// LocalTime moves t into the service zone so "today" matches the travellers' calendar.
func LocalTime(t time.Time) time.Time {
	return t.In(vnLoc)
}

// FromUnixSecondsVN returns zero time if t<=0 to let callers decide how to render.
func FromUnixSecondsVN(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).In(vnLoc)
}

func FormatDisplayVN(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(vnLoc).Format("2006-01-02 15:04 MST")
}
