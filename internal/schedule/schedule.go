// Package schedule assembles the event list for one day from the static
// config entries and the subscribed ICS feeds.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techtech0521/schedule-timeline/internal/config"
	"github.com/techtech0521/schedule-timeline/internal/ics"
	appLog "github.com/techtech0521/schedule-timeline/internal/log"
	"github.com/techtech0521/schedule-timeline/internal/model"
	"github.com/techtech0521/schedule-timeline/internal/timeslot"
)

// idNamespace seeds derived IDs for config events that have none, so the
// same entry keeps the same ID across restarts.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("schedtl:event"))

// Day is the ordered event list for a single date.
type Day struct {
	Date   time.Time
	Events []model.ScheduleEvent
}

// FeedFetcher is the part of ics.Fetcher the builder needs.
type FeedFetcher interface {
	FetchAll(ctx context.Context, sources []ics.Source) ([]ics.FetchResult, error)
}

// Builder builds a Day. Now defaults to time.Now.
type Builder struct {
	Config  *config.Config
	Fetcher FeedFetcher
	Now     func() time.Time
}

func NewBuilder(cfg *config.Config, fetcher FeedFetcher) *Builder {
	return &Builder{Config: cfg, Fetcher: fetcher, Now: time.Now}
}

// Build returns today's events: static config events first in config order,
// then feed events by start time. Invalid events are dropped; malformed time
// slots are kept and only logged.
//
// Feed failures are returned joined alongside a usable Day; callers may log
// and carry on.
func (b *Builder) Build(ctx context.Context) (Day, error) {
	loc := Location(b.Config.Timezone)
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	n := now().In(loc)
	day := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)

	events := make([]model.ScheduleEvent, 0, len(b.Config.Events))
	events = append(events, b.Config.Events...)

	feedEvents, feedErr := b.feedEvents(ctx, day)
	events = append(events, feedEvents...)

	return Day{Date: day, Events: sanitize(events)}, feedErr
}

func (b *Builder) feedEvents(ctx context.Context, day time.Time) ([]model.ScheduleEvent, error) {
	if b.Fetcher == nil || len(b.Config.ICS) == 0 {
		return nil, nil
	}

	sources := make([]ics.Source, 0, len(b.Config.ICS))
	for _, c := range b.Config.ICS {
		if c.URL == "" {
			continue
		}
		sources = append(sources, ics.Source{ID: c.SourceID(), URL: c.URL})
	}

	results, fetchErr := b.Fetcher.FetchAll(ctx, sources)
	errs := []error{fetchErr}

	var parsed []ics.ParsedEvent
	for _, res := range results {
		if res.FromCache {
			appLog.Debug("ics feed served from cache", "source", res.Source.ID, "bytes", len(res.Body))
		}
		evs, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			errs = append(errs, fmt.Errorf("schedule: parse %s: %w", res.Source.ID, err))
			continue
		}
		parsed = append(parsed, evs...)
	}

	expanded, err := ics.ExpandOccurrences(parsed, ics.ExpandConfig{
		DisplayLocation: day.Location(),
		RangeStart:      day,
		RangeEnd:        day.AddDate(0, 0, 1).Add(-time.Nanosecond),
	})
	if err != nil {
		errs = append(errs, err)
		return nil, errors.Join(errs...)
	}
	if len(expanded.TruncatedEvents) > 0 {
		appLog.Warn("ics recurrences truncated; later instances dropped",
			"uids", strings.Join(expanded.TruncatedEvents, ","),
			"cap", ics.DefaultMaxOccurrencesPerEvent)
	}

	return ics.ToScheduleEvents(expanded.Occurrences, day, b.Config.CategoryKeywords), errors.Join(errs...)
}

// sanitize drops events that fail validation and fills in missing IDs.
func sanitize(events []model.ScheduleEvent) []model.ScheduleEvent {
	out := make([]model.ScheduleEvent, 0, len(events))
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			appLog.Warn("event dropped", "id", ev.ID, "reason", err.Error())
			continue
		}
		if !timeslot.IsValid(ev.Time) {
			appLog.Warn("event has malformed time slot", "id", ev.ID, "time", ev.Time)
		}
		if ev.ID == "" {
			ev.ID = StableID(ev)
		}
		out = append(out, ev)
	}
	return out
}

// StableID derives a deterministic ID from an event's time and title.
func StableID(ev model.ScheduleEvent) string {
	return uuid.NewSHA1(idNamespace, []byte(ev.Time+"\x00"+ev.Title)).String()
}

// Location resolves an IANA zone name, falling back to time.Local.
func Location(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
