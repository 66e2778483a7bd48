package ics

import (
	"strings"
	"time"

	"github.com/techtech0521/schedule-timeline/internal/model"
)

const slotLayout = "15:04"

// ToScheduleEvents keeps the timed occurrences that fall on day (compared
// in day's location) and encodes them as timeline events. Occurrences must
// already be sorted by start; order is preserved.
//
// An occurrence running past midnight keeps its literal end clock, so its
// slot reads e.g. "23:00-01:00". One carried over from the previous day is
// clipped to start at 00:00.
func ToScheduleEvents(occs []model.Occurrence, day time.Time, keywords map[model.Category][]string) []model.ScheduleEvent {
	loc := day.Location()
	y, m, d := day.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	out := make([]model.ScheduleEvent, 0, len(occs))
	for _, occ := range occs {
		if occ.AllDay {
			continue
		}
		start := occ.Start.In(loc)
		if !start.Before(dayEnd) {
			continue
		}
		if start.Before(dayStart) {
			if !occ.End.After(dayStart) {
				continue
			}
			start = dayStart
		}

		out = append(out, model.ScheduleEvent{
			ID:          occ.SourceID + ":" + occ.UID + "@" + occ.InstanceKey,
			Time:        slotFor(start, occ.End.In(loc)),
			Title:       strings.TrimSpace(occ.Summary),
			Description: strings.TrimSpace(occ.Description),
			Category:    categoryFor(occ, keywords),
		})
	}
	return out
}

func slotFor(start, end time.Time) string {
	if !end.After(start) {
		return start.Format(slotLayout)
	}
	return start.Format(slotLayout) + "-" + end.Format(slotLayout)
}

// categoryFor prefers a known category from the feed's own CATEGORIES, then
// keyword matches on the summary in category order. Feed categories that
// match nothing map to "other".
func categoryFor(occ model.Occurrence, keywords map[model.Category][]string) model.Category {
	fallback := model.Category("")
	for _, c := range occ.Categories {
		cat := model.ParseCategory(c)
		if cat != "" && cat != model.CategoryOther {
			return cat
		}
		if cat != "" {
			fallback = cat
		}
	}

	summary := strings.ToLower(occ.Summary)
	for _, cat := range model.Categories() {
		for _, kw := range keywords[cat] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(summary, kw) {
				return cat
			}
		}
	}
	return fallback
}
