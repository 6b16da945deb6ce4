// Package testfixtures provides an in-process stand-in for the meeting REST
// API so the client layers can be exercised end to end.
package testfixtures

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/pkg/jwt"
)

// Route keys accepted by Calls and RespondNext
const (
	RouteListMeetings    = "GET /meetings"
	RouteCreateMeeting   = "POST /meetings"
	RouteUpdateMeeting   = "PATCH /meetings/:id"
	RouteCompleteMeeting = "PATCH /meetings/:id/complete"
	RouteRegister        = "POST /auth/register"
	RouteLogin           = "POST /auth/login"
	RouteAdminLogin      = "POST /auth/admin/login"
	RouteLogout          = "POST /auth/logout"
)

type account struct {
	id       string
	password string
	isAdmin  bool
}

type canned struct {
	status int
	body   map[string]interface{}
}

// FakeAPI is a meeting API served from httptest
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]account
	meetings []entities.Meeting
	calls    map[string]int
	canned   map[string][]canned
	tokens   *jwt.Manager
	public   bool
}

// Option customises a FakeAPI
type Option func(*FakeAPI)

// WithOpenReads serves the meeting list without a token
func WithOpenReads() Option {
	return func(f *FakeAPI) { f.public = true }
}

// NewFakeAPI starts a fake API that is closed when the test ends
func NewFakeAPI(t testing.TB, opts ...Option) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		users:    make(map[string]account),
		calls:    make(map[string]int),
		canned:   make(map[string][]canned),
		tokens:   jwt.NewManager("fake-api-secret", time.Hour),
	}
	for _, opt := range opts {
		opt(f)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(f.record)

	api := e.Group("/api")
	api.POST("/auth/register", f.register)
	api.POST("/auth/login", f.login)
	api.POST("/auth/admin/login", f.adminLogin)
	api.POST("/auth/logout", f.logout)
	api.GET("/meetings", f.listMeetings, f.requireToken)
	api.POST("/meetings", f.createMeeting)
	api.PATCH("/meetings/:id", f.updateMeeting, f.requireToken)
	api.PATCH("/meetings/:id/complete", f.completeMeeting, f.requireToken)

	f.Server = httptest.NewServer(e)
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the API root the client should be configured with
func (f *FakeAPI) BaseURL() string {
	return f.Server.URL + "/api"
}

// AddUser registers an account directly
func (f *FakeAPI) AddUser(email, password string, isAdmin bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.users[strings.ToLower(email)] = account{id: id, password: password, isAdmin: isAdmin}
	return id
}

// Seed appends meetings, assigning ids and status where missing
func (f *FakeAPI) Seed(meetings ...entities.Meeting) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range meetings {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Status == "" {
			m.Status = entities.MeetingStatusNotScheduled
		}
		f.meetings = append(f.meetings, m)
	}
}

// Meetings returns a copy of the stored meetings
func (f *FakeAPI) Meetings() []entities.Meeting {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entities.Meeting, len(f.meetings))
	copy(out, f.meetings)
	return out
}

// Calls reports how many requests hit route
func (f *FakeAPI) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

// RespondNext makes the next request to route answer status with body
// instead of reaching the handler
func (f *FakeAPI) RespondNext(route string, status int, body map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canned[route] = append(f.canned[route], canned{status: status, body: body})
}

// IssueToken signs a token the fake accepts
func (f *FakeAPI) IssueToken(userID string, isAdmin bool) string {
	token, _ := f.tokens.GenerateToken(userID, "", isAdmin)
	return token
}

func routeKey(c echo.Context) string {
	return c.Request().Method + " " + strings.TrimPrefix(c.Path(), "/api")
}

func (f *FakeAPI) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := routeKey(c)

		f.mu.Lock()
		f.calls[key]++
		var reply *canned
		if queued := f.canned[key]; len(queued) > 0 {
			reply = &queued[0]
			f.canned[key] = queued[1:]
		}
		f.mu.Unlock()

		if reply != nil {
			return c.JSON(reply.status, reply.body)
		}
		return next(c)
	}
}

func (f *FakeAPI) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if f.public && c.Request().Method == http.MethodGet {
			return next(c)
		}
		token := extractToken(c.Request())
		if token == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Missing authorization token"})
		}
		if _, err := f.tokens.ValidateToken(token); err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid or expired token"})
		}
		return next(c)
	}
}

// extractToken checks the Authorization header, then the token cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

func (f *FakeAPI) register(c echo.Context) error {
	var creds entities.Credentials
	if err := c.Bind(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Email and password are required"})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(creds.Email)
	if _, exists := f.users[key]; exists {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "User already exists"})
	}
	f.users[key] = account{id: uuid.NewString(), password: creds.Password}
	return c.JSON(http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (f *FakeAPI) authenticate(c echo.Context) (account, bool) {
	var creds entities.Credentials
	if err := c.Bind(&creds); err != nil {
		return account{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.users[strings.ToLower(creds.Email)]
	if !ok || acc.password != creds.Password {
		return account{}, false
	}
	return acc, true
}

func (f *FakeAPI) login(c echo.Context) error {
	acc, ok := f.authenticate(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}
	return c.JSON(http.StatusOK, map[string]string{"token": f.IssueToken(acc.id, false)})
}

func (f *FakeAPI) adminLogin(c echo.Context) error {
	acc, ok := f.authenticate(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":   f.IssueToken(acc.id, acc.isAdmin),
		"user":    map[string]interface{}{"_id": acc.id, "isAdmin": acc.isAdmin},
		"message": "Login successful",
	})
}

func (f *FakeAPI) logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1})
	return c.JSON(http.StatusOK, map[string]string{})
}

func (f *FakeAPI) listMeetings(c echo.Context) error {
	return c.JSON(http.StatusOK, f.Meetings())
}

func (f *FakeAPI) createMeeting(c echo.Context) error {
	var req entities.MeetingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.MobileNumber) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Full name and mobile number are required"})
	}

	f.Seed(entities.Meeting{
		FullName:             req.FullName,
		MobileNumber:         req.MobileNumber,
		State:                req.State,
		HomeDistrict:         req.HomeDistrict,
		Constituency:         req.Constituency,
		Occupation:           req.Occupation,
		Reason:               req.Reason,
		Reference:            req.Reference,
		MetBefore:            req.MetBefore,
		PoliticalExperience:  req.PoliticalExperience,
		JanSuraajMember:      req.JanSuraajMember,
		JanSuraajWorker:      req.JanSuraajWorker,
		ElectionHistory:      req.ElectionHistory,
		PoliticalAffiliation: req.PoliticalAffiliation,
		AccompanyingPersons:  req.AccompanyingPersons,
	})
	return c.JSON(http.StatusCreated, map[string]string{"message": "Meeting request submitted"})
}

type meetingPatch struct {
	Status      *entities.MeetingStatus `json:"isScheduled"`
	PriorityTag *entities.Priority      `json:"priorityTag"`
	ArrivalDate *string                 `json:"arrivalDate"`
	ArrivalTime *string                 `json:"arrivalTime"`
	Remark      *string                 `json:"message"`
}

func (p meetingPatch) apply(m *entities.Meeting) {
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.PriorityTag != nil {
		m.PriorityTag = *p.PriorityTag
	}
	if p.ArrivalDate != nil {
		m.ArrivalDate = *p.ArrivalDate
	}
	if p.ArrivalTime != nil {
		m.ArrivalTime = *p.ArrivalTime
	}
	if p.Remark != nil {
		m.Remark = *p.Remark
	}
}

func (f *FakeAPI) patch(c echo.Context, force *entities.MeetingStatus, message string) error {
	var p meetingPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if force != nil {
		p.Status = force
	}

	id := c.Param("id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.meetings {
		if f.meetings[i].ID == id {
			p.apply(&f.meetings[i])
			return c.JSON(http.StatusOK, map[string]string{"message": message})
		}
	}
	return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid id"})
}

func (f *FakeAPI) updateMeeting(c echo.Context) error {
	return f.patch(c, nil, "Meeting updated successfully")
}

func (f *FakeAPI) completeMeeting(c echo.Context) error {
	completed := entities.MeetingStatusCompleted
	return f.patch(c, &completed, "Meeting completed successfully")
}
