// Package timeline decides where each event sits on the alternating
// timeline. The assignment depends only on an event's position in the
// list: the index picks a node color and the color picks a side.
package timeline

import (
	"github.com/techtech0521/schedule-timeline/internal/model"
)

// Color is the node marker variant.
type Color int

const (
	ColorBlue Color = iota
	ColorRed
)

func (c Color) String() string {
	if c == ColorRed {
		return "red"
	}
	return "blue"
}

// Hex returns the marker's display color.
func (c Color) Hex() string {
	if c == ColorRed {
		return "#e60000"
	}
	return "#00a8cc"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Side is where an event's content sits relative to the center line.
type Side int

const (
	SideRight Side = iota
	SideLeft
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EventLayout pairs an event with its computed marker color and side.
// Event is nil when the layout was requested for an index outside the list.
type EventLayout struct {
	Event     *model.ScheduleEvent
	NodeColor Color
	Position  Side
}

// ColorForIndex returns blue for even indices and red for odd ones.
func ColorForIndex(index int) Color {
	if index%2 == 0 {
		return ColorBlue
	}
	return ColorRed
}

// PositionForColor returns right for blue and left for red.
func PositionForColor(c Color) Side {
	if c == ColorBlue {
		return SideRight
	}
	return SideLeft
}

func layoutFor(event *model.ScheduleEvent, index int) EventLayout {
	color := ColorForIndex(index)
	return EventLayout{
		Event:     event,
		NodeColor: color,
		Position:  PositionForColor(color),
	}
}

// LayoutsFor returns one layout per event in input order. The result is
// never nil. Each layout points into events; callers must not mutate the
// slice while layouts are in use.
func LayoutsFor(events []model.ScheduleEvent) []EventLayout {
	out := make([]EventLayout, len(events))
	for i := range events {
		out[i] = layoutFor(&events[i], i)
	}
	return out
}

// LayoutAt returns the layout for a single index. Out of bounds, Event is
// nil but the color and side are still derived from index.
func LayoutAt(events []model.ScheduleEvent, index int) EventLayout {
	var event *model.ScheduleEvent
	if index >= 0 && index < len(events) {
		event = &events[index]
	}
	return layoutFor(event, index)
}
