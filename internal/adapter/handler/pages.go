package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/internal/usecase/auth"
	"github.com/johnquangdev/meeting-portal/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-portal/internal/usecase/session"
	"github.com/johnquangdev/meeting-portal/pkg/logger"
)

// Pages handles the public views and the sign-in flows
type Pages struct {
	authService    auth.Service
	meetingService meeting.Service
	logger         *zap.Logger
}

// NewPages creates a new pages handler
func NewPages(authService auth.Service, meetingService meeting.Service, log *zap.Logger) *Pages {
	return &Pages{
		authService:    authService,
		meetingService: meetingService,
		logger:         logger.OrNop(log),
	}
}

// Home renders the landing page
// GET /
func (h *Pages) Home(c echo.Context) error {
	return c.Render(http.StatusOK, viewHome, newView(c, "Home"))
}

func meetingFormView(c echo.Context) View {
	v := newView(c, "Request a meeting")
	v.FormFields = meetingTextFields
	v.Flags = meetingFlags
	return v
}

// MeetingForm renders the request form
// GET /meeting
func (h *Pages) MeetingForm(c echo.Context) error {
	return c.Render(http.StatusOK, viewMeeting, meetingFormView(c))
}

// SubmitMeeting creates a meeting request
// POST /meeting
func (h *Pages) SubmitMeeting(c echo.Context) error {
	names := make([]string, 0, len(meetingTextFields)+len(meetingFlags)+1)
	for _, f := range meetingTextFields {
		names = append(names, f.Name)
	}
	for _, f := range meetingFlags {
		names = append(names, f.Name)
	}
	names = append(names, "accompanyingPersons")
	form := formValues(c, names...)

	req := entities.MeetingRequest{
		FullName:             form["fullName"],
		MobileNumber:         form["mobileNumber"],
		State:                form["state"],
		HomeDistrict:         form["homeDistrict"],
		Constituency:         form["constituency"],
		Occupation:           form["occupation"],
		Reason:               form["reason"],
		Reference:            form["reference"],
		MetBefore:            checked(form["metBefore"]),
		PoliticalExperience:  checked(form["politicalExperience"]),
		JanSuraajMember:      checked(form["janSuraajMember"]),
		JanSuraajWorker:      checked(form["janSuraajWorker"]),
		ElectionHistory:      checked(form["electionHistory"]),
		PoliticalAffiliation: checked(form["politicalAffiliation"]),
		AccompanyingPersons:  lines(form["accompanyingPersons"]),
	}

	msg, err := h.meetingService.Create(c.Request().Context(), req)
	if err != nil {
		v := meetingFormView(c)
		v.Form = form
		return renderFailure(h.logger, c, viewMeeting, v, err)
	}
	return redirectWithNotice(c, session.MeetingPath, msg)
}

func loginView(c echo.Context, title, action string) View {
	v := newView(c, title)
	v.Action = action
	return v
}

func credentials(c echo.Context) (entities.Credentials, map[string]string) {
	form := formValues(c, "email")
	return entities.Credentials{Email: form["email"], Password: c.FormValue("password")}, form
}

// LoginForm renders the user login view
// GET /login
func (h *Pages) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, viewLogin, loginView(c, "Log in", "/login"))
}

// Login signs a user in
// POST /login
func (h *Pages) Login(c echo.Context) error {
	creds, form := credentials(c)
	if _, err := h.authService.Login(c.Request().Context(), creds); err != nil {
		v := loginView(c, "Log in", "/login")
		v.Form = form
		return renderFailure(h.logger, c, viewLogin, v, err)
	}
	return redirectWithNotice(c, session.MeetingPath, "Signed in")
}

// AdminLoginForm renders the administrator login view
// GET /admin/login
func (h *Pages) AdminLoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, viewLogin, loginView(c, "Admin log in", "/admin/login"))
}

// AdminLogin signs an administrator in. Accounts without the admin flag are
// signed in as regular users and kept away from the dashboard.
// POST /admin/login
func (h *Pages) AdminLogin(c echo.Context) error {
	creds, form := credentials(c)
	snap, err := h.authService.AdminLogin(c.Request().Context(), creds)
	if err != nil {
		v := loginView(c, "Admin log in", "/admin/login")
		v.Form = form
		return renderFailure(h.logger, c, viewLogin, v, err)
	}
	if snap.State != entities.SessionAuthenticatedAdmin {
		return redirectWithNotice(c, session.MeetingPath, "This account has no administrator access")
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// RegisterForm renders the registration view
// GET /register
func (h *Pages) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, viewLogin, loginView(c, "Register", "/register"))
}

// Register creates an account
// POST /register
func (h *Pages) Register(c echo.Context) error {
	creds, form := credentials(c)
	msg, err := h.authService.Register(c.Request().Context(), creds)
	if err != nil {
		v := loginView(c, "Register", "/register")
		v.Form = form
		return renderFailure(h.logger, c, viewLogin, v, err)
	}
	return redirectWithNotice(c, session.LoginPath, msg)
}

// Logout ends the session
// POST /logout
func (h *Pages) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context()); err != nil {
		h.logger.Error("failed to clear session", zap.Error(err))
	}
	return redirectWithNotice(c, session.LoginPath, "Signed out")
}

func checked(v string) bool {
	switch strings.ToLower(v) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

func lines(v string) []string {
	var out []string
	for _, line := range strings.Split(v, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
