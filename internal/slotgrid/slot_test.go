package slotgrid

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	got, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(9*60+30), got)
	assert.Equal(t, "09:30", got.String())

	for _, bad := range []string{"", "9", "25:00", "09:61", "ten past", "09-30"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidClock, "input %q", bad)
	}
}

func TestQuantize(t *testing.T) {
	w := DefaultWindow

	slot, err := w.Quantize("09:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00", slot.Start.String())
	assert.Equal(t, "09:30", slot.End.String())

	_, err = w.Quantize("09:15")
	assert.ErrorIs(t, err, ErrInvalidSlotGranularity)

	// aligned but outside the operating window
	_, err = w.Quantize("07:30")
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)
	_, err = w.Quantize("18:00")
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)

	// last bookable slot ends exactly at close
	slot, err = w.Quantize("17:30")
	require.NoError(t, err)
	assert.Equal(t, w.Close, slot.End)
}

func TestEnumerate(t *testing.T) {
	w := Window{Open: 9 * 60, Close: 11 * 60}
	slots := w.Enumerate()
	require.Len(t, slots, 4)
	assert.Equal(t, "09:00", slots[0].Start.String())
	assert.Equal(t, "10:30", slots[3].Start.String())

	for i := 1; i < len(slots); i++ {
		assert.Equal(t, slots[i-1].End, slots[i].Start)
	}

	// every enumerated slot quantizes back to itself
	for _, s := range slots {
		got, err := w.QuantizeTime(s.Start)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestDateParseAndOrder(t *testing.T) {
	d, err := ParseDate("2026-09-14")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-14", d.String())

	_, err = ParseDate("14/09/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)

	next := d.AddDays(1)
	assert.True(t, d.Before(next))
	assert.True(t, next.After(d))
	assert.False(t, d.Before(d))
}

func TestDateWeekday(t *testing.T) {
	// 2026-09-14 is a Monday
	d, err := ParseDate("2026-09-14")
	require.NoError(t, err)
	assert.Equal(t, Monday, d.Weekday())
	assert.Equal(t, Sunday, d.AddDays(6).Weekday())
}

func TestDateAt(t *testing.T) {
	d := Date{Year: 2026, Month: time.September, Day: 14}
	at := d.At(TimeOfDay(9*60 + 30))
	assert.Equal(t, 9, at.Hour())
	assert.Equal(t, 30, at.Minute())
	assert.Equal(t, d, DateOf(at))
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Date Date      `json:"date"`
		Hour TimeOfDay `json:"hour"`
	}

	in := payload{Date: Date{Year: 2026, Month: time.March, Day: 2}, Hour: 10 * 60}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-03-02","hour":"10:00"}`, string(raw))

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	var bad payload
	err = json.Unmarshal([]byte(`{"date":"2026-03-02","hour":"10:20:30"}`), &bad)
	assert.Error(t, err)
}
