package model

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrInvalidDuration indicates a timer was defined with a zero or negative duration.
var ErrInvalidDuration = errors.New("please enter a valid duration for the timer")

// Category groups timers in the main view.
type Category string

const (
	CategoryShortTerm Category = "short-term"
	CategoryLongTerm  Category = "long-term"
)

// Label returns the display name of the category.
func (category Category) Label() string {
	switch category {
	case CategoryShortTerm:
		return "Short-term"
	case CategoryLongTerm:
		return "Long-term"
	case "":
		return "Other"
	default:
		name := strings.ReplaceAll(string(category), "-", " ")
		first, size := utf8.DecodeRuneInString(name)
		return string(unicode.ToUpper(first)) + name[size:]
	}
}

// Timer is the persisted definition of a countdown.
type Timer struct {
	ID              string        `json:"id" yaml:"id"`
	Name            string        `json:"name" yaml:"name"`
	Category        Category      `json:"category" yaml:"category"`
	Duration        time.Duration `json:"duration" yaml:"duration"`
	AutoReset       bool          `json:"auto_reset" yaml:"auto_reset"`
	FlashOnComplete bool          `json:"flash" yaml:"flash"`
	SoundOnComplete bool          `json:"sound" yaml:"sound"`
	CreatedAt       time.Time     `json:"created_at" yaml:"created_at"`
}

// Validate normalizes the definition and rejects unusable durations.
// Durations are truncated to whole milliseconds.
func (timer *Timer) Validate() error {
	timer.Duration = timer.Duration.Truncate(time.Millisecond)
	if timer.Duration <= 0 {
		return errors.WithStack(ErrInvalidDuration)
	}

	timer.Name = strings.TrimSpace(timer.Name)
	if timer.Name == "" {
		timer.Name = "Unnamed Timer"
	}

	return nil
}

// DefaultName returns the name suggested for a new timer in the category.
func DefaultName(category Category) string {
	return category.Label() + " Timer"
}

// Completion describes the side effects requested when a timer reaches zero.
type Completion struct {
	TimerID string
	Name    string
	Flash   bool
	Sound   bool
}
