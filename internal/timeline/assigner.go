package timeline

import (
	"slices"
	"sync"

	"github.com/techtech0521/schedule-timeline/internal/model"
)

// Assigner caches the last computed layouts and recomputes only when the
// event list content changes. Results are identical to LayoutsFor.
type Assigner struct {
	mu      sync.Mutex
	events  []model.ScheduleEvent
	layouts []EventLayout
	valid   bool
}

func NewAssigner() *Assigner {
	return &Assigner{}
}

// Layouts returns layouts for events. The returned layouts reference the
// Assigner's own copy of the events, so later changes to the caller's
// slice do not leak into them.
func (a *Assigner) Layouts(events []model.ScheduleEvent) []EventLayout {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.valid && slices.Equal(a.events, events) {
		return slices.Clone(a.layouts)
	}

	a.events = slices.Clone(events)
	if a.events == nil {
		a.events = []model.ScheduleEvent{}
	}
	a.layouts = LayoutsFor(a.events)
	a.valid = true
	return slices.Clone(a.layouts)
}
