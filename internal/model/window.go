package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidWindow is returned when a window or range ends before it starts.
var ErrInvalidWindow = errors.New("window start after end")

// TimeOfDay is a wall-clock time expressed in seconds since midnight.
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

// NewTimeOfDay builds a TimeOfDay from its components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	limits := []int{23, 59, 59}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		v[i] = n
	}
	return NewTimeOfDay(v[0], v[1], v[2]), nil
}

// TimeOfDayOf extracts the wall-clock time of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// On returns the instant at this time of day on date's calendar day.
func (t TimeOfDay) On(date time.Time) time.Time {
	return DateOf(date).Add(time.Duration(t) * time.Second)
}

// Add shifts the time of day by d, wrapping around midnight.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	v := (int(t) + int(d/time.Second)) % secondsPerDay
	if v < 0 {
		v += secondsPerDay
	}
	return TimeOfDay(v)
}

func (t TimeOfDay) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// DayWindow is the inclusive intraday session over which extrema are tracked.
type DayWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewDayWindow validates start <= end.
func NewDayWindow(start, end TimeOfDay) (DayWindow, error) {
	if start > end {
		return DayWindow{}, fmt.Errorf("%w: %s > %s", ErrInvalidWindow, start, end)
	}
	return DayWindow{Start: start, End: end}, nil
}

// Contains reports whether t's time of day lies inside the window.
func (w DayWindow) Contains(t time.Time) bool {
	tod := TimeOfDayOf(t)
	return tod >= w.Start && tod <= w.End
}

// Label renders the window as "10:30:00_11:00:00".
func (w DayWindow) Label() string {
	return w.Start.String() + "_" + w.End.String()
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both ends to dates and validates start <= end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start, end = DateOf(start), DateOf(end)
	if start.After(end) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidWindow,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return DateRange{Start: start, End: end}, nil
}

// Contains reports whether the calendar date of t lies inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// ClockShift moves the timestamps of every bar dated inside Dates by Offset.
// It corrects sources recorded on a clock that disagrees with the analysed
// session during daylight saving transitions.
type ClockShift struct {
	Dates  DateRange
	Offset time.Duration
}

// FullDay covers every second of a day.
var FullDay = DayWindow{Start: 0, End: secondsPerDay - 1}
