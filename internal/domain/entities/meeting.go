package entities

import (
	"strings"
	"time"
)

// MeetingStatus is the scheduling state of a meeting request
type MeetingStatus string

const (
	MeetingStatusNotScheduled MeetingStatus = "notScheduled"
	MeetingStatusScheduled    MeetingStatus = "scheduled"
	MeetingStatusCompleted    MeetingStatus = "completed"
)

// Priority is the administrator-assigned priority tag
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Meeting is a transient copy of a meeting request owned by the remote API
type Meeting struct {
	ID                   string        `json:"_id"`
	FullName             string        `json:"fullName"`
	MobileNumber         string        `json:"mobileNumber"`
	State                string        `json:"state"`
	HomeDistrict         string        `json:"homeDistrict"`
	Constituency         string        `json:"constituency"`
	Occupation           string        `json:"occupation"`
	Reason               string        `json:"reason"`
	Reference            string        `json:"reference,omitempty"`
	MetBefore            bool          `json:"metBefore"`
	PoliticalExperience  bool          `json:"politicalExperience"`
	JanSuraajMember      bool          `json:"janSuraajMember"`
	JanSuraajWorker      bool          `json:"janSuraajWorker"`
	ElectionHistory      bool          `json:"electionHistory"`
	PoliticalAffiliation bool          `json:"politicalAffiliation"`
	AccompanyingPersons  []string      `json:"accompanyingPersons"`
	Status               MeetingStatus `json:"isScheduled,omitempty"`
	PriorityTag          Priority      `json:"priorityTag,omitempty"`
	ArrivalDate          string        `json:"arrivalDate,omitempty"`
	ArrivalTime          string        `json:"arrivalTime,omitempty"`
	Remark               string        `json:"message,omitempty"`
}

// IsCompleted reports whether the meeting has been closed with a remark
func (m *Meeting) IsCompleted() bool {
	return m.Status == MeetingStatusCompleted
}

// ArrivalDay returns the YYYY-MM-DD part of the arrival date.
// The API may send a full ISO timestamp.
func (m *Meeting) ArrivalDay() string {
	day, _, _ := strings.Cut(m.ArrivalDate, "T")
	return day
}

// ArrivalAt combines arrival date and time. ok is false when either is
// missing or unparsable.
func (m *Meeting) ArrivalAt() (time.Time, bool) {
	day := m.ArrivalDay()
	if day == "" || m.ArrivalTime == "" {
		return time.Time{}, false
	}
	at, err := time.Parse("2006-01-02 15:04", day+" "+m.ArrivalTime)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// Matches reports whether term appears in the searchable fields
func (m *Meeting) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.FullName), term) ||
		strings.Contains(m.MobileNumber, term) ||
		strings.Contains(strings.ToLower(m.Reason), term) ||
		strings.Contains(strings.ToLower(m.Constituency), term)
}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Valid reports whether s is a known status
func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingStatusNotScheduled, MeetingStatusScheduled, MeetingStatusCompleted:
		return true
	}
	return false
}
