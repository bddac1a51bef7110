package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CityCareHQ/hospital-scheduler/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestSlotTimes_GeneratesHalfHourSlots(t *testing.T) {
	sched := Schedule{
		Days:        []string{"Monday", "Wednesday", "Friday"},
		StartTime:   "09:00:00",
		EndTime:     "11:00:00",
		SlotMinutes: 30,
	}

	// 2026-01-05 is a Monday.
	slots, ok := sched.SlotTimes(mustDate(t, "2026-01-05"))

	require.True(t, ok)
	assert.Equal(t, []string{"09:00:00", "09:30:00", "10:00:00", "10:30:00"}, slots)
}

func TestSlotTimes_DayNotAvailable(t *testing.T) {
	sched := Schedule{
		Days:        []string{"Monday", "Wednesday", "Friday"},
		StartTime:   "09:00:00",
		EndTime:     "11:00:00",
		SlotMinutes: 30,
	}

	// 2026-01-06 is a Tuesday.
	slots, ok := sched.SlotTimes(mustDate(t, "2026-01-06"))

	assert.False(t, ok)
	assert.Empty(t, slots)
}

func TestSlotTimes_EndBoundaryIgnoresMinutes(t *testing.T) {
	// End 17:30 cuts generation at hour 17: the 17:00 slot is not produced.
	sched := Schedule{
		Days:        []string{"Monday"},
		StartTime:   "09:00:00",
		EndTime:     "17:30:00",
		SlotMinutes: 60,
	}

	slots, ok := sched.SlotTimes(mustDate(t, "2026-01-05"))

	require.True(t, ok)
	assert.Equal(t, "16:00:00", slots[len(slots)-1])
	assert.NotContains(t, slots, "17:00:00")
}

func TestSlotTimes_StartWithMinutesCarriesOver(t *testing.T) {
	sched := Schedule{
		Days:        []string{"Monday"},
		StartTime:   "09:45:00",
		EndTime:     "11:00:00",
		SlotMinutes: 30,
	}

	slots, ok := sched.SlotTimes(mustDate(t, "2026-01-05"))

	require.True(t, ok)
	assert.Equal(t, []string{"09:45:00", "10:15:00", "10:45:00"}, slots)
}

func TestSlotTimes_Deterministic(t *testing.T) {
	sched := Schedule{
		Days:        []string{"Friday"},
		StartTime:   "08:00",
		EndTime:     "12:00",
		SlotMinutes: 45,
	}
	day := mustDate(t, "2026-01-09")

	first, ok1 := sched.SlotTimes(day)
	second, ok2 := sched.SlotTimes(day)

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestSlotTimes_InvalidInputs(t *testing.T) {
	day := mustDate(t, "2026-01-05") // Monday

	cases := []struct {
		name  string
		sched Schedule
	}{
		{"zero slot duration", Schedule{Days: []string{"Monday"}, StartTime: "09:00", EndTime: "17:00", SlotMinutes: 0}},
		{"bad start clock", Schedule{Days: []string{"Monday"}, StartTime: "morning", EndTime: "17:00", SlotMinutes: 30}},
		{"bad end clock", Schedule{Days: []string{"Monday"}, StartTime: "09:00", EndTime: "25:00", SlotMinutes: 30}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slots, ok := tc.sched.SlotTimes(day)
			assert.False(t, ok)
			assert.Empty(t, slots)
		})
	}
}

func TestScheduleFromDoctor(t *testing.T) {
	doctor := &models.Doctor{
		AvailableDays: `["Monday","Friday"]`,
		StartTime:     "09:00:00",
		EndTime:       "17:00:00",
		SlotMinutes:   30,
	}

	sched, err := ScheduleFromDoctor(doctor)

	require.NoError(t, err)
	assert.Equal(t, []string{"Monday", "Friday"}, sched.Days)
	assert.True(t, sched.AllowsDay(mustDate(t, "2026-01-05")))
	assert.False(t, sched.AllowsDay(mustDate(t, "2026-01-06")))
}

func TestScheduleFromDoctor_EmptyAndMalformedDays(t *testing.T) {
	sched, err := ScheduleFromDoctor(&models.Doctor{AvailableDays: ""})
	require.NoError(t, err)
	assert.Empty(t, sched.Days)

	_, err = ScheduleFromDoctor(&models.Doctor{AvailableDays: "not-json"})
	assert.Error(t, err)
}
