// Package slotgrid holds the clinic's canonical 30-minute time grid: the
// TimeOfDay and TimeSlot value types, quantization of raw clock strings onto
// the grid, and enumeration of the slots inside an operating window.
package slotgrid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SlotDuration is the fixed appointment length in minutes. It is a system
// constant, not per-appointment configurable.
const SlotDuration = 30

var (
	ErrInvalidClock           = errors.New("invalid clock value, expected HH:MM")
	ErrInvalidSlotGranularity = errors.New("time is not aligned to a 30-minute boundary")
	ErrOutsideOperatingHours  = errors.New("time is outside the operating hours window")
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseClock parses an "HH:MM" 24h clock string.
func ParseClock(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidClock, data)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeSlot is one cell of the grid. End is always Start + SlotDuration.
type TimeSlot struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Window is the clinic's operating hours. Slots start at or after Open and
// end at or before Close.
type Window struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// DefaultWindow is 08:00-18:00.
var DefaultWindow = Window{Open: 8 * 60, Close: 18 * 60}

// Quantize validates a clock string against the grid and returns the slot it
// names. Misaligned times are an error, never silently corrected.
func (w Window) Quantize(clock string) (TimeSlot, error) {
	t, err := ParseClock(clock)
	if err != nil {
		return TimeSlot{}, err
	}
	return w.QuantizeTime(t)
}

// QuantizeTime is Quantize for an already-parsed TimeOfDay.
func (w Window) QuantizeTime(t TimeOfDay) (TimeSlot, error) {
	if int(t)%SlotDuration != 0 {
		return TimeSlot{}, fmt.Errorf("%w: %s", ErrInvalidSlotGranularity, t)
	}
	if t < w.Open || t+SlotDuration > w.Close {
		return TimeSlot{}, fmt.Errorf("%w: %s", ErrOutsideOperatingHours, t)
	}
	return TimeSlot{Start: t, End: t + SlotDuration}, nil
}

// Enumerate returns every canonical slot in the window, ordered by start.
func (w Window) Enumerate() []TimeSlot {
	var slots []TimeSlot
	for t := w.Open; t+SlotDuration <= w.Close; t += SlotDuration {
		slots = append(slots, TimeSlot{Start: t, End: t + SlotDuration})
	}
	return slots
}
