package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const day = 24 * time.Hour

// DurationFields holds the raw text of the duration inputs of the creation form.
type DurationFields struct {
	Days    string
	Hours   string
	Minutes string
	Seconds string
}

// Duration sums the fields. Empty fields count as zero.
func (fields DurationFields) Duration() (time.Duration, error) {
	parts := []struct {
		name  string
		value string
		unit  time.Duration
	}{
		{"days", fields.Days, day},
		{"hours", fields.Hours, time.Hour},
		{"minutes", fields.Minutes, time.Minute},
		{"seconds", fields.Seconds, time.Second},
	}

	var total time.Duration
	for _, part := range parts {
		text := strings.TrimSpace(part.value)
		if text == "" {
			continue
		}
		value, err := strconv.Atoi(text)
		if err != nil || value < 0 {
			return 0, errors.Errorf("%s must be a non-negative whole number", part.name)
		}
		if int64(value) > math.MaxInt64/int64(part.unit) {
			return 0, errors.Wrapf(ErrInvalidDuration, "%s out of range", part.name)
		}
		amount := time.Duration(value) * part.unit
		if total > math.MaxInt64-amount {
			return 0, errors.Wrap(ErrInvalidDuration, "total out of range")
		}
		total += amount
	}
	return total, nil
}

// FormatRemaining renders a countdown as "HH:MM:SS", prefixed with "Nd " when
// at least one day is left. Negative values render as zero.
func FormatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	totalSeconds := int64(remaining / time.Second)
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	clock := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	if days > 0 {
		return fmt.Sprintf("%dd %s", days, clock)
	}
	return clock
}
