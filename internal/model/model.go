package model

import (
	"errors"
	"strings"
	"time"
)

// ScheduleEvent is one entry on the daily timeline. Events are built by the
// caller (config, ICS feeds) and treated as immutable afterwards.
type ScheduleEvent struct {
	// ID identifies the event for ordering and identity only; layout never
	// looks at it.
	ID string `yaml:"id" json:"id"`

	// Time is a time slot, "HH:MM" or "HH:MM-HH:MM" in 24-hour notation.
	Time string `yaml:"time" json:"time"`

	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Category Category `yaml:"category,omitempty" json:"category,omitempty"`
}

// Validate reports structural problems with the event. Time slot syntax is
// not checked here; malformed slots still render in degraded form.
func (e ScheduleEvent) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("event title is empty")
	}
	if e.Category != "" && !e.Category.Valid() {
		return errors.New("unknown event category " + string(e.Category))
	}
	return nil
}

// Category is a descriptive tag. It does not influence layout or time logic.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryMeeting  Category = "meeting"
	CategoryBreak    Category = "break"
	CategoryExercise Category = "exercise"
	CategoryOther    Category = "other"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryWork,
		CategoryPersonal,
		CategoryMeeting,
		CategoryBreak,
		CategoryExercise,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryMeeting, CategoryBreak, CategoryExercise, CategoryOther:
		return true
	}
	return false
}

// Label returns the display name, or "" for an unset category.
func (c Category) Label() string {
	switch c {
	case CategoryWork:
		return "Work"
	case CategoryPersonal:
		return "Personal"
	case CategoryMeeting:
		return "Meeting"
	case CategoryBreak:
		return "Break"
	case CategoryExercise:
		return "Exercise"
	case CategoryOther:
		return "Other"
	default:
		return ""
	}
}

// ParseCategory maps free text (e.g. an ICS CATEGORIES value) onto the closed
// set. Empty input stays unset; anything unrecognized becomes "other".
func ParseCategory(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if c := Category(s); c.Valid() {
		return c
	}
	return CategoryOther
}

// Occurrence is a single concrete instance of a feed event after recurrence
// expansion, in the display timezone. It is turned into a ScheduleEvent
// before it reaches the timeline.
type Occurrence struct {
	SourceID string
	UID      string

	// InstanceKey distinguishes instances of a recurring event; derived from
	// the local start time.
	InstanceKey string

	Summary     string
	Description string
	Location    string
	Categories  []string

	AllDay bool

	Start time.Time
	End   time.Time
}
