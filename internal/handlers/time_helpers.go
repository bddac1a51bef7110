package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseDate validates a YYYY-MM-DD date string.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// normalizeClock turns "HH:MM" or "HH:MM:SS" into the canonical "HH:MM:SS"
// form that slot keys are stored under.
func normalizeClock(s string) (string, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return "", fmt.Errorf("invalid time %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid time %q", s)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return "", fmt.Errorf("invalid time %q", s)
	}

	sec := 0
	if len(parts) == 3 {
		sec, err = strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return "", fmt.Errorf("invalid time %q", s)
		}
	}

	return fmt.Sprintf("%02d:%02d:%02d", hour, min, sec), nil
}

// clockBefore compares two canonical clock strings; the fixed-width format
// makes lexicographic order time order.
func clockBefore(a, b string) bool {
	return a < b
}
