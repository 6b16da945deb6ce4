package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-portal/internal/usecase/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names
const (
	viewHome      = "home.html"
	viewMeeting   = "meeting_form.html"
	viewLogin     = "login.html"
	viewDashboard = "dashboard.html"
	viewDetail    = "meeting_detail.html"
	viewNotFound  = "not_found.html"
	viewError     = "error.html"
)

// FormField is one input of a rendered form
type FormField struct {
	Name  string
	Label string
}

var meetingTextFields = []FormField{
	{"fullName", "Full name"},
	{"mobileNumber", "Mobile number"},
	{"state", "State"},
	{"homeDistrict", "Home district"},
	{"constituency", "Constituency"},
	{"occupation", "Occupation"},
	{"reason", "Reason"},
	{"reference", "Reference"},
}

var meetingFlags = []FormField{
	{"metBefore", "Met before"},
	{"politicalExperience", "Political experience"},
	{"janSuraajMember", "Jan Suraaj member"},
	{"janSuraajWorker", "Jan Suraaj worker"},
	{"electionHistory", "Contested elections"},
	{"politicalAffiliation", "Political affiliation"},
}

// View is the data every template receives
type View struct {
	Title     string
	Session   session.Snapshot
	Notice    string
	Error     string
	Fields    map[string]string
	Form      map[string]string
	Action    string
	RequestID string

	FormFields []FormField
	Flags      []FormField

	Meetings   []entities.Meeting
	Meeting    *entities.Meeting
	Filter     meeting.Filter
	Statuses   []meeting.StatusFilter
	Priorities []entities.Priority
}

type fieldRef struct {
	Fields map[string]string
	Name   string
}

var templateFuncs = template.FuncMap{
	"fieldError": func(v View, name string) fieldRef {
		return fieldRef{Fields: v.Fields, Name: name}
	},
	"statusLabel": func(s entities.MeetingStatus) string {
		switch s {
		case entities.MeetingStatusScheduled:
			return "Scheduled"
		case entities.MeetingStatusCompleted:
			return "Completed"
		default:
			return "Not scheduled"
		}
	},
}

// Templates renders the embedded views for echo
type Templates struct {
	t *template.Template
}

// NewTemplates parses the embedded views
func NewTemplates() (*Templates, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Templates{t: t}, nil
}

// Render implements echo.Renderer
func (t *Templates) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return t.t.ExecuteTemplate(w, name, data)
}
