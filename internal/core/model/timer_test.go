package model

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerValidate(t *testing.T) {
	timer := Timer{Name: "  Raid reset ", Duration: 90*time.Second + 300*time.Microsecond}
	require.NoError(t, timer.Validate())
	assert.Equal(t, "Raid reset", timer.Name)
	assert.Equal(t, 90*time.Second, timer.Duration)

	unnamed := Timer{Duration: time.Second}
	require.NoError(t, unnamed.Validate())
	assert.Equal(t, "Unnamed Timer", unnamed.Name)

	for _, duration := range []time.Duration{0, -time.Second, 400 * time.Microsecond} {
		invalid := Timer{Name: "x", Duration: duration}
		err := invalid.Validate()
		require.Error(t, err, "duration %v", duration)
		assert.True(t, errors.Is(err, ErrInvalidDuration))
	}
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Short-term", CategoryShortTerm.Label())
	assert.Equal(t, "Long-term", CategoryLongTerm.Label())
	assert.Equal(t, "Daily quests", Category("daily-quests").Label())
	assert.Equal(t, "Other", Category("").Label())
	assert.Equal(t, "Événements", Category("événements").Label())
	assert.True(t, utf8.ValidString(Category("ärger-timer").Label()))
	assert.Equal(t, "Long-term Timer", DefaultName(CategoryLongTerm))
}

func TestDurationFields(t *testing.T) {
	duration, err := DurationFields{Days: "1", Hours: "2", Minutes: "3", Seconds: "4"}.Duration()
	require.NoError(t, err)
	assert.Equal(t, 26*time.Hour+3*time.Minute+4*time.Second, duration)

	duration, err = DurationFields{Minutes: " 5 "}.Duration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, duration)

	duration, err = DurationFields{}.Duration()
	require.NoError(t, err)
	assert.Zero(t, duration)

	_, err = DurationFields{Hours: "two"}.Duration()
	assert.ErrorContains(t, err, "hours")

	_, err = DurationFields{Seconds: "-1"}.Duration()
	assert.ErrorContains(t, err, "seconds")
}

func TestDurationFieldsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		fields DurationFields
	}{
		{"days wrap", DurationFields{Days: "213504"}},
		{"days just above max", DurationFields{Days: "106752"}},
		{"seconds above max", DurationFields{Seconds: "9223372037"}},
		{"sum above max", DurationFields{Days: "106751", Hours: "24"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duration, err := tt.fields.Duration()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDuration))
			assert.Zero(t, duration)
		})
	}

	duration, err := DurationFields{Days: "106751", Hours: "23"}.Duration()
	require.NoError(t, err)
	assert.Equal(t, 106751*day+23*time.Hour, duration)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		expected  string
	}{
		{0, "00:00:00"},
		{-3 * time.Second, "00:00:00"},
		{999 * time.Millisecond, "00:00:00"},
		{5 * time.Second, "00:00:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{2*day + 3*time.Hour, "2d 03:00:00"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, FormatRemaining(test.remaining))
		})
	}
}

func TestNewTimerID(t *testing.T) {
	seen := map[string]struct{}{}
	previous := ""
	for i := 0; i < 100; i++ {
		id := NewTimerID()
		require.True(t, strings.HasPrefix(id, "timer-"))
		_, duplicated := seen[id]
		require.False(t, duplicated)
		seen[id] = struct{}{}
		require.Greater(t, id, previous)
		previous = id
	}
}
