package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thushan/traigo/internal/core/constants"
)

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", hhmm)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", hhmm)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", hhmm)
	}

	return hours*60 + minutes, nil
}

// MinutesBetween returns to-from in minutes under the overnight rule:
// a regression of more than 12 hours is next-day service (23:30 to 00:30 is
// 60 minutes), smaller regressions are genuine misses and stay negative.
func MinutesBetween(from, to string) (int, error) {
	fromMin, err := ParseClock(from)
	if err != nil {
		return 0, err
	}

	toMin, err := ParseClock(to)
	if err != nil {
		return 0, err
	}

	diff := toMin - fromMin
	if diff < -constants.OvernightThresholdMinutes {
		diff += constants.MinutesPerDay
	}
	return diff, nil
}
