package meeting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
)

func ids(meetings []entities.Meeting) []string {
	out := make([]string, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, m.ID)
	}
	return out
}

func TestFilterApply(t *testing.T) {
	meetings := []entities.Meeting{
		{ID: "a", FullName: "Asha Devi", Reason: "Road repair"},
		{ID: "b", FullName: "Ravi", Status: entities.MeetingStatusScheduled, ArrivalDate: "2026-10-21T00:00:00.000Z", ArrivalTime: "09:00"},
		{ID: "c", FullName: "Meera", Status: entities.MeetingStatusScheduled, ArrivalDate: "2026-10-20", ArrivalTime: "15:00", Constituency: "Gaya"},
		{ID: "d", FullName: "Kunal", Status: entities.MeetingStatusCompleted, MobileNumber: "9000000001"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all sorted by arrival", Filter{}, []string{"c", "b", "a", "d"}},
		{"scheduled only", Filter{Status: StatusScheduled}, []string{"c", "b"}},
		{"not scheduled", Filter{Status: StatusNotScheduled}, []string{"a"}},
		{"completed", Filter{Status: StatusCompleted}, []string{"d"}},
		{"search reason", Filter{Search: "ROAD"}, []string{"a"}},
		{"search constituency", Filter{Search: "gaya"}, []string{"c"}},
		{"search mobile", Filter{Search: "90000"}, []string{"d"}},
		{"date prefix", Filter{Date: "2026-10-21"}, []string{"b"}},
		{"no match", Filter{Search: "zzz"}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(tc.filter.Apply(meetings)))
		})
	}
}

func TestParseStatusFilter(t *testing.T) {
	assert.Equal(t, StatusScheduled, ParseStatusFilter("Scheduled"))
	assert.Equal(t, StatusNotScheduled, ParseStatusFilter("notScheduled"))
	assert.Equal(t, StatusCompleted, ParseStatusFilter("completed"))
	assert.Equal(t, StatusAll, ParseStatusFilter(""))
	assert.Equal(t, StatusAll, ParseStatusFilter("bogus"))
}
