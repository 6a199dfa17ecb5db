package slotgrid

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidWeekday = errors.New("invalid weekday code")

// Weekday is the clinic's weekday code, "mon" through "sun". Every
// date-to-weekday conversion in the engine goes through Date.Weekday so the
// mapping cannot drift between components.
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

var weekdayCodes = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// Weekdays lists all codes in calendar order, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday validates a weekday code.
func ParseWeekday(s string) (Weekday, error) {
	wd := Weekday(s)
	for _, known := range Weekdays {
		if wd == known {
			return wd, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// Weekday returns the code for this calendar date.
func (d Date) Weekday() Weekday {
	return weekdayCodes[d.Time().Weekday()]
}
