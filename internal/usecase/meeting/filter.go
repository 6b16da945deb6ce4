package meeting

import (
	"sort"
	"strings"

	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
)

// StatusFilter narrows the list by status
type StatusFilter string

const (
	StatusAll          StatusFilter = "All"
	StatusScheduled    StatusFilter = "Scheduled"
	StatusNotScheduled StatusFilter = "NotScheduled"
	StatusCompleted    StatusFilter = "Completed"
)

// ParseStatusFilter maps a query value to a filter, defaulting to All
func ParseStatusFilter(raw string) StatusFilter {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "scheduled":
		return StatusScheduled
	case "notscheduled", "not_scheduled", "pending":
		return StatusNotScheduled
	case "completed":
		return StatusCompleted
	default:
		return StatusAll
	}
}

func (f StatusFilter) match(m *entities.Meeting) bool {
	switch f {
	case StatusScheduled:
		return m.Status == entities.MeetingStatusScheduled
	case StatusNotScheduled:
		return m.Status == "" || m.Status == entities.MeetingStatusNotScheduled
	case StatusCompleted:
		return m.Status == entities.MeetingStatusCompleted
	default:
		return true
	}
}

// Filter selects meetings for the dashboard
type Filter struct {
	Search string
	Status StatusFilter
	// Date is a YYYY-MM-DD arrival day
	Date string
}

// Apply returns the matching meetings sorted by arrival. Meetings without a
// slot come last in their original order.
func (f Filter) Apply(meetings []entities.Meeting) []entities.Meeting {
	out := make([]entities.Meeting, 0, len(meetings))
	for i := range meetings {
		m := &meetings[i]
		if !m.Matches(f.Search) || !f.Status.match(m) {
			continue
		}
		if f.Date != "" && !strings.HasPrefix(m.ArrivalDay(), f.Date) {
			continue
		}
		out = append(out, *m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i].ArrivalAt()
		b, bok := out[j].ArrivalAt()
		switch {
		case aok && bok:
			return a.Before(b)
		default:
			return aok && !bok
		}
	})
	return out
}
