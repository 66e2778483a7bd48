// Package render turns a day's events into something to look at: an HTML
// page for the browser and the e-paper capture, or a terminal preview.
// All placement decisions come from the timeline package and all time
// text from timeslot; nothing here inspects event content for layout.
package render

import (
	"time"

	"github.com/techtech0521/schedule-timeline/internal/model"
	"github.com/techtech0521/schedule-timeline/internal/timeline"
	"github.com/techtech0521/schedule-timeline/internal/timeslot"
)

const EmptyText = "No events scheduled for today"

// Options are the header/footer settings, usually taken from config.
type Options struct {
	Title      string
	Subtitle   string
	ShowFooter bool
	FooterText string
	FooterIcon string

	// Battery is shown in the footer when non-nil.
	Battery *int

	// UpdatedAt, when set, is stamped into the footer so a stale panel is
	// recognizable.
	UpdatedAt time.Time
}

// Item is one rendered timeline entry. DurationMinutes wraps past
// midnight, so "23:00-01:00" is 120.
type Item struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Category      model.Category `json:"category,omitempty"`
	CategoryLabel string         `json:"category_label,omitempty"`

	Time            string `json:"time"`
	DisplayTime     string `json:"display_time"`
	DurationMinutes int    `json:"duration_minutes"`
	ValidTime       bool   `json:"valid_time"`

	NodeColor timeline.Color `json:"node_color"`
	NodeHex   string         `json:"node_hex"`
	Position  timeline.Side  `json:"position"`
}

// Footer is the optional closing section.
type Footer struct {
	Icon    string `json:"icon,omitempty"`
	Text    string `json:"text,omitempty"`
	Battery *int   `json:"battery_percent,omitempty"`
	Updated string `json:"updated,omitempty"`
}

// View is everything a renderer needs for one day.
type View struct {
	Date     time.Time `json:"date"`
	Title    string    `json:"title,omitempty"`
	Subtitle string    `json:"subtitle,omitempty"`
	Items    []Item    `json:"items"`
	Footer   *Footer   `json:"footer,omitempty"`
}

// Empty reports whether there is nothing to show.
func (v View) Empty() bool {
	return len(v.Items) == 0
}

// NewView lays out events with layouts (normally timeline.LayoutsFor or an
// Assigner's result) and formats their time slots.
func NewView(date time.Time, layouts []timeline.EventLayout, opts Options) View {
	v := View{
		Date:     date,
		Title:    opts.Title,
		Subtitle: opts.Subtitle,
		Items:    make([]Item, 0, len(layouts)),
	}
	// A subtitle alone has no header to live in.
	if v.Title == "" {
		v.Subtitle = ""
	}

	for _, l := range layouts {
		if l.Event == nil {
			continue
		}
		ev := l.Event
		v.Items = append(v.Items, Item{
			ID:              ev.ID,
			Title:           ev.Title,
			Description:     ev.Description,
			Category:        ev.Category,
			CategoryLabel:   ev.Category.Label(),
			Time:            ev.Time,
			DisplayTime:     displayTime(ev.Time),
			DurationMinutes: timeslot.OvernightMinutes(ev.Time),
			ValidTime:       timeslot.IsValid(ev.Time),
			NodeColor:       l.NodeColor,
			NodeHex:         l.NodeColor.Hex(),
			Position:        l.Position,
		})
	}

	if opts.ShowFooter {
		v.Footer = &Footer{Icon: opts.FooterIcon, Text: opts.FooterText, Battery: opts.Battery}
		if !opts.UpdatedAt.IsZero() {
			v.Footer.Updated = "Updated " + timeslot.Clock(opts.UpdatedAt.Hour(), opts.UpdatedAt.Minute())
		}
	}
	return v
}

// displayTime shows malformed slots verbatim instead of the "12:00 AM" a
// degraded parse would format to.
func displayTime(slot string) string {
	if timeslot.Parse(slot).Degraded() {
		return slot
	}
	return timeslot.Format(slot)
}
