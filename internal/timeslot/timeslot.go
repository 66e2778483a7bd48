// Package timeslot parses compact time slot strings ("08:00" or
// "08:00-09:30") and renders them in 12-hour form.
//
// Every function here is total: malformed input never produces an error,
// it degrades to a zero start time with the raw text preserved. Callers
// that need to reject bad data must check IsValid themselves.
//
// Hours and minutes are not range checked; "99:99" has the right shape and
// is accepted as-is.
package timeslot

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rangePattern  = regexp.MustCompile(`^\d{1,2}:\d{2}-\d{1,2}:\d{2}$`)
	singlePattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// minutesPerDay is what callers add to a negative duration to get overnight
// semantics.
const minutesPerDay = 24 * 60

// Kind says which shape a slot was recognized as.
type Kind int

const (
	// KindDegraded is the fallback for input matching neither pattern.
	KindDegraded Kind = iota
	KindSingle
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindRange:
		return "range"
	default:
		return "degraded"
	}
}

// Parsed holds the components of a time slot.
//
// StartTime is always set; for a degraded parse it is the raw input. The
// End* fields are meaningful only when HasEnd reports true.
type Parsed struct {
	Kind Kind

	StartTime   string
	StartHour   int
	StartMinute int

	EndTime   string
	EndHour   int
	EndMinute int
}

// HasEnd reports whether the slot carries an end time.
func (p Parsed) HasEnd() bool {
	return p.Kind == KindRange
}

// Degraded reports whether the input matched no known pattern.
func (p Parsed) Degraded() bool {
	return p.Kind == KindDegraded
}

// Parse splits a slot into its components. The range pattern is tried
// first, then the single-time pattern; anything else yields a degraded
// result with StartTime set to the input verbatim.
func Parse(slot string) Parsed {
	if rangePattern.MatchString(slot) {
		start, end, _ := strings.Cut(slot, "-")
		sh, sm := splitClock(start)
		eh, em := splitClock(end)
		return Parsed{
			Kind:        KindRange,
			StartTime:   start,
			StartHour:   sh,
			StartMinute: sm,
			EndTime:     end,
			EndHour:     eh,
			EndMinute:   em,
		}
	}

	if singlePattern.MatchString(slot) {
		h, m := splitClock(slot)
		return Parsed{
			Kind:        KindSingle,
			StartTime:   slot,
			StartHour:   h,
			StartMinute: m,
		}
	}

	return Parsed{
		Kind:      KindDegraded,
		StartTime: slot,
	}
}

// splitClock reads "H:MM" / "HH:MM". Only called on pattern-checked input,
// so the digits always convert.
func splitClock(s string) (hour, minute int) {
	h, m, _ := strings.Cut(s, ":")
	hour, _ = strconv.Atoi(h)
	minute, _ = strconv.Atoi(m)
	return hour, minute
}

// IsValid reports whether slot has the shape of a range or a single time.
func IsValid(slot string) bool {
	return rangePattern.MatchString(slot) || singlePattern.MatchString(slot)
}

// Clock renders a 24-hour hour/minute pair as "h:mm AM" / "h:mm PM".
// Hour 0 shows as 12 AM, hour 12 as 12 PM.
func Clock(hour, minute int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}

	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour > 12:
		display = hour - 12
	}

	var b strings.Builder
	b.WriteString(strconv.Itoa(display))
	b.WriteByte(':')
	if minute < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(minute))
	b.WriteByte(' ')
	b.WriteString(period)
	return b.String()
}

// Format renders a slot for display, e.g. "8:00 AM - 9:00 AM" or "2:30 PM".
// A degraded slot formats as its zeroed start, "12:00 AM".
func Format(slot string) string {
	p := Parse(slot)
	start := Clock(p.StartHour, p.StartMinute)
	if !p.HasEnd() {
		return start
	}
	return start + " - " + Clock(p.EndHour, p.EndMinute)
}

// DurationMinutes returns end minus start in minutes, or 0 for a slot
// without an end. An end earlier than the start gives a negative result;
// there is no wraparound.
func DurationMinutes(slot string) int {
	p := Parse(slot)
	if !p.HasEnd() {
		return 0
	}
	return (p.EndHour*60 + p.EndMinute) - (p.StartHour*60 + p.StartMinute)
}

// OvernightMinutes is DurationMinutes with a negative result treated as a
// slot that runs past midnight.
func OvernightMinutes(slot string) int {
	d := DurationMinutes(slot)
	if d < 0 {
		d += minutesPerDay
	}
	return d
}
