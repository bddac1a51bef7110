package booking

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
)

// Schedule is a doctor's recurring weekly availability: the weekdays on
// which bookings are accepted, the daily window and the slot length.
type Schedule struct {
	Days        []string
	StartTime   string
	EndTime     string
	SlotMinutes int
}

// ScheduleFromDoctor builds a Schedule from the persisted doctor row.
// AvailableDays is stored as a JSON array of weekday names.
func ScheduleFromDoctor(d *models.Doctor) (Schedule, error) {
	var days []string
	raw := d.AvailableDays
	if raw == "" {
		raw = "[]"
	}
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return Schedule{}, httperr.ErrBusiness("invalid_available_days")
	}

	return Schedule{
		Days:        days,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		SlotMinutes: d.SlotMinutes,
	}, nil
}

// AllowsDay reports whether the schedule accepts bookings on the given
// calendar date's weekday.
func (s Schedule) AllowsDay(date time.Time) bool {
	name := date.Weekday().String()
	for _, d := range s.Days {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// SlotTimes returns the ordered candidate slot start times ("HH:MM:SS") for
// the given date, and whether the date falls on an available weekday at all.
// Pure: same inputs always yield the same sequence.
//
// Generation steps from the start time by SlotMinutes and stops once the
// next slot would start at or after the end hour. The end boundary compares
// hours only; minutes on the end time do not take part in the cut-off.
func (s Schedule) SlotTimes(date time.Time) ([]string, bool) {
	if !s.AllowsDay(date) {
		return nil, false
	}

	startHour, startMin, err := parseClock(s.StartTime)
	if err != nil {
		return nil, false
	}
	endHour, _, err := parseClock(s.EndTime)
	if err != nil {
		return nil, false
	}
	if s.SlotMinutes <= 0 {
		return nil, false
	}

	var times []string
	hour, min := startHour, startMin

	for hour < endHour {
		times = append(times, fmt.Sprintf("%02d:%02d:00", hour, min))

		min += s.SlotMinutes
		hour += min / 60
		min %= 60
	}

	return times, true
}

// parseClock accepts "HH:MM" and "HH:MM:SS" clock strings.
func parseClock(clock string) (hour, min int, err error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, fmt.Errorf("invalid clock %q", clock)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid clock %q", clock)
	}
	min, err = strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("invalid clock %q", clock)
	}
	return hour, min, nil
}
