package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/techtech0521/schedule-timeline/internal/model"
	"github.com/techtech0521/schedule-timeline/internal/timeline"
)

var testDate = time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

func testEvents() []model.ScheduleEvent {
	return []model.ScheduleEvent{
		{ID: "1", Time: "08:00-09:00", Title: "Morning Exercise", Description: "Cardio and strength training at the gym", Category: model.CategoryExercise},
		{ID: "2", Time: "09:30-10:30", Title: "Team Standup", Category: model.CategoryMeeting},
		{ID: "3", Time: "sometime", Title: "Unscheduled"},
	}
}

func testOptions() Options {
	pct := 80
	return Options{
		Title:      "Daily Schedule",
		Subtitle:   "Your planned activities for today",
		ShowFooter: true,
		FooterText: "End of Schedule",
		FooterIcon: "📅",
		Battery:    &pct,
	}
}

func TestNewView(t *testing.T) {
	v := NewView(testDate, timeline.LayoutsFor(testEvents()), testOptions())

	if len(v.Items) != 3 {
		t.Fatalf("items = %d", len(v.Items))
	}
	first, second, third := v.Items[0], v.Items[1], v.Items[2]

	if first.DisplayTime != "8:00 AM - 9:00 AM" || first.DurationMinutes != 60 || !first.ValidTime {
		t.Errorf("first = %+v", first)
	}
	if first.NodeColor != timeline.ColorBlue || first.Position != timeline.SideRight || first.NodeHex != "#00a8cc" {
		t.Errorf("first layout = %+v", first)
	}
	if second.NodeColor != timeline.ColorRed || second.Position != timeline.SideLeft || second.CategoryLabel != "Meeting" {
		t.Errorf("second = %+v", second)
	}
	if third.ValidTime || third.DisplayTime != "sometime" || third.DurationMinutes != 0 {
		t.Errorf("degraded item = %+v", third)
	}
	if v.Footer == nil || *v.Footer.Battery != 80 {
		t.Errorf("footer = %+v", v.Footer)
	}
}

func TestNewViewOvernightDuration(t *testing.T) {
	events := []model.ScheduleEvent{
		{ID: "late", Time: "23:00-01:00", Title: "Night Shift"},
		{ID: "same", Time: "10:00-10:00", Title: "Instant"},
	}
	v := NewView(testDate, timeline.LayoutsFor(events), Options{})

	if got := v.Items[0].DurationMinutes; got != 120 {
		t.Errorf("overnight duration = %d, want 120", got)
	}
	if got := v.Items[0].DisplayTime; got != "11:00 PM - 1:00 AM" {
		t.Errorf("overnight display = %q", got)
	}
	if got := v.Items[1].DurationMinutes; got != 0 {
		t.Errorf("zero-length duration = %d, want 0", got)
	}
}

func TestNewViewUpdatedStamp(t *testing.T) {
	opts := testOptions()
	opts.UpdatedAt = time.Date(2025, 1, 7, 14, 5, 0, 0, time.UTC)
	v := NewView(testDate, nil, opts)
	if v.Footer == nil || v.Footer.Updated != "Updated 2:05 PM" {
		t.Fatalf("footer = %+v", v.Footer)
	}

	var buf bytes.Buffer
	if err := HTML(&buf, v); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Updated 2:05 PM") {
		t.Error("updated stamp missing from page")
	}

	if v := NewView(testDate, nil, testOptions()); v.Footer.Updated != "" {
		t.Errorf("stamp without UpdatedAt: %q", v.Footer.Updated)
	}
}

func TestNewViewSkipsAbsentEvents(t *testing.T) {
	layouts := []timeline.EventLayout{timeline.LayoutAt(nil, 0)}
	v := NewView(testDate, layouts, Options{})
	if !v.Empty() || v.Footer != nil {
		t.Fatalf("view = %+v", v)
	}
}

func TestNewViewDropsOrphanSubtitle(t *testing.T) {
	v := NewView(testDate, nil, Options{Subtitle: "only a subtitle"})
	if v.Subtitle != "" {
		t.Fatalf("subtitle kept without title: %q", v.Subtitle)
	}
}

func TestViewJSON(t *testing.T) {
	v := NewView(testDate, timeline.LayoutsFor(testEvents()[:1]), Options{})
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, want := range []string{`"node_color":"blue"`, `"position":"right"`, `"display_time":"8:00 AM - 9:00 AM"`} {
		if !strings.Contains(s, want) {
			t.Errorf("json missing %s: %s", want, s)
		}
	}
	if strings.Contains(s, `"footer"`) {
		t.Errorf("footer should be omitted: %s", s)
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, NewView(testDate, timeline.LayoutsFor(testEvents()), testOptions())); err != nil {
		t.Fatalf("HTML() = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`data-ready="true"`,
		`<h1>Daily Schedule</h1>`,
		`<article class="item right" data-id="1">`,
		`<article class="item left" data-id="2">`,
		`<time class="time blue" datetime="08:00-09:00">8:00 AM - 9:00 AM</time>`,
		`<span class="node red"`,
		`End of Schedule`,
		`Battery 80%`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(out, EmptyText) {
		t.Error("empty text on non-empty page")
	}
}

func TestHTMLEmptyAndEscaping(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, NewView(testDate, nil, testOptions())); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, EmptyText) || strings.Contains(out, "<h1>") || strings.Contains(out, `class="footer"`) {
		t.Errorf("empty page wrong: %s", out)
	}

	buf.Reset()
	evil := []model.ScheduleEvent{{ID: "x", Time: "08:00", Title: "<script>alert(1)</script>"}}
	if err := HTML(&buf, NewView(testDate, timeline.LayoutsFor(evil), Options{})); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<script>alert") {
		t.Error("title not escaped")
	}
}

func TestHTMLHeaderHiddenWithoutTitle(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, NewView(testDate, timeline.LayoutsFor(testEvents()), Options{})); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `<header`) || strings.Contains(buf.String(), `<footer`) {
		t.Error("header/footer rendered without being configured")
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, NewView(testDate, timeline.LayoutsFor(testEvents()), testOptions()), 80); err != nil {
		t.Fatalf("Text() = %v", err)
	}
	out := buf.String()

	lineOf := func(s string) string {
		for _, l := range strings.Split(out, "\n") {
			if strings.Contains(l, s) {
				return l
			}
		}
		t.Fatalf("%q not found in:\n%s", s, out)
		return ""
	}

	// Right-side item text sits after the marker, left-side before it.
	right := lineOf("8:00 AM - 9:00 AM")
	if strings.Index(right, "●") > strings.Index(right, "8:00 AM") {
		t.Errorf("first item not on the right: %q", right)
	}
	left := lineOf("9:30 AM - 10:30 AM")
	if strings.Index(left, "●") < strings.Index(left, "9:30 AM") {
		t.Errorf("second item not on the left: %q", left)
	}

	lineOf("Daily Schedule")
	lineOf("End of Schedule")
	lineOf("(battery 80%)")
}

func TestTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, NewView(testDate, nil, testOptions()), 10); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), EmptyText) {
		t.Errorf("empty text missing: %q", buf.String())
	}
}
