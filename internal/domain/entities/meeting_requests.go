package entities

// MeetingRequest is what a visitor submits. Id and status are assigned by the API.
type MeetingRequest struct {
	FullName             string   `json:"fullName" validate:"notblank"`
	MobileNumber         string   `json:"mobileNumber" validate:"mobile"`
	State                string   `json:"state" validate:"notblank"`
	HomeDistrict         string   `json:"homeDistrict" validate:"notblank"`
	Constituency         string   `json:"constituency" validate:"notblank"`
	Occupation           string   `json:"occupation" validate:"notblank"`
	Reason               string   `json:"reason" validate:"notblank"`
	Reference            string   `json:"reference"`
	MetBefore            bool     `json:"metBefore"`
	PoliticalExperience  bool     `json:"politicalExperience"`
	JanSuraajMember      bool     `json:"janSuraajMember"`
	JanSuraajWorker      bool     `json:"janSuraajWorker"`
	ElectionHistory      bool     `json:"electionHistory"`
	PoliticalAffiliation bool     `json:"politicalAffiliation"`
	AccompanyingPersons  []string `json:"accompanyingPersons"`
}

// ScheduleRequest moves a meeting into the scheduled state.
// Arrival date and time are required before the transition.
type ScheduleRequest struct {
	PriorityTag Priority `json:"priorityTag" validate:"required,oneof=low medium high"`
	ArrivalDate string   `json:"arrivalDate" validate:"required,isodate"`
	ArrivalTime string   `json:"arrivalTime" validate:"required,clock"`
}

// ScheduleUpdate is the PATCH body sent for a ScheduleRequest
type ScheduleUpdate struct {
	Status      MeetingStatus `json:"isScheduled"`
	PriorityTag Priority      `json:"priorityTag"`
	ArrivalDate string        `json:"arrivalDate"`
	ArrivalTime string        `json:"arrivalTime"`
}

// CompleteRequest closes a meeting with a remark
type CompleteRequest struct {
	Remark string `json:"message" validate:"notblank"`
}

// CompleteUpdate is the PATCH body sent for a CompleteRequest
type CompleteUpdate struct {
	Status MeetingStatus `json:"isScheduled"`
	Remark string        `json:"message,omitempty"`
}

// Credentials is the body of register, login and admin login
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"notblank"`
}

// Scheduled builds the update body for the scheduled transition
func (r ScheduleRequest) Scheduled() ScheduleUpdate {
	return ScheduleUpdate{
		Status:      MeetingStatusScheduled,
		PriorityTag: r.PriorityTag,
		ArrivalDate: r.ArrivalDate,
		ArrivalTime: r.ArrivalTime,
	}
}

// Completed builds the update body for the completed transition
func (r CompleteRequest) Completed() CompleteUpdate {
	return CompleteUpdate{Status: MeetingStatusCompleted, Remark: r.Remark}
}
