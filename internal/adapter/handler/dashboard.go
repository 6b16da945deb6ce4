package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-portal/internal/usecase/session"
	"github.com/johnquangdev/meeting-portal/pkg/logger"
)

// SessionWatcher notifies about session transitions
type SessionWatcher interface {
	Subscribe(fn func(session.Snapshot)) (cancel func())
}

// Dashboard handles the administrator views
type Dashboard struct {
	meetingService meeting.Service
	sessions       SessionWatcher
	logger         *zap.Logger
}

// NewDashboard creates a new dashboard handler
func NewDashboard(meetingService meeting.Service, sessions SessionWatcher, log *zap.Logger) *Dashboard {
	return &Dashboard{
		meetingService: meetingService,
		sessions:       sessions,
		logger:         logger.OrNop(log),
	}
}

var statusFilters = []meeting.StatusFilter{
	meeting.StatusAll,
	meeting.StatusScheduled,
	meeting.StatusNotScheduled,
	meeting.StatusCompleted,
}

var priorities = []entities.Priority{entities.PriorityLow, entities.PriorityMedium, entities.PriorityHigh}

func filterFrom(c echo.Context) meeting.Filter {
	return meeting.Filter{
		Search: c.QueryParam("search"),
		Status: meeting.ParseStatusFilter(c.QueryParam("status")),
		Date:   c.QueryParam("date"),
	}
}

// List renders the filtered meetings
// GET /dashboard
func (h *Dashboard) List(c echo.Context) error {
	v := newView(c, "Dashboard")
	v.Filter = filterFrom(c)
	v.Statuses = statusFilters

	meetings, err := h.meetingService.List(c.Request().Context(), v.Filter)
	if err != nil {
		return renderFailure(h.logger, c, viewDashboard, v, err)
	}
	v.Meetings = meetings
	return c.Render(http.StatusOK, viewDashboard, v)
}

func (h *Dashboard) detailView(c echo.Context, id string) (View, error) {
	v := newView(c, "Meeting")
	v.Priorities = priorities

	m, err := h.meetingService.Get(c.Request().Context(), id)
	if err != nil {
		return v, err
	}
	v.Title = m.FullName
	v.Meeting = m
	v.Form = map[string]string{
		"priorityTag": string(m.PriorityTag),
		"arrivalDate": m.ArrivalDay(),
		"arrivalTime": m.ArrivalTime,
	}
	return v, nil
}

// Detail renders a meeting with its schedule and complete forms
// GET /dashboard/meetings/:id
func (h *Dashboard) Detail(c echo.Context) error {
	v, err := h.detailView(c, c.Param("id"))
	if err != nil {
		if apperrors.Status(err) == http.StatusNotFound {
			return echo.ErrNotFound
		}
		return renderFailure(h.logger, c, viewDetail, v, err)
	}
	return c.Render(http.StatusOK, viewDetail, v)
}

// Schedule assigns priority and arrival slot
// POST /dashboard/meetings/:id
func (h *Dashboard) Schedule(c echo.Context) error {
	id := c.Param("id")
	form := formValues(c, "priorityTag", "arrivalDate", "arrivalTime")
	req := entities.ScheduleRequest{
		PriorityTag: entities.Priority(form["priorityTag"]),
		ArrivalDate: form["arrivalDate"],
		ArrivalTime: form["arrivalTime"],
	}

	msg, err := h.meetingService.Schedule(c.Request().Context(), id, req)
	if err != nil {
		return h.failDetail(c, id, form, err)
	}
	return redirectWithNotice(c, "/dashboard", msg)
}

// Complete closes a meeting with a remark
// POST /dashboard/meetings/:id/complete
func (h *Dashboard) Complete(c echo.Context) error {
	id := c.Param("id")
	form := formValues(c, "message")

	msg, err := h.meetingService.Complete(c.Request().Context(), id, entities.CompleteRequest{Remark: form["message"]})
	if err != nil {
		return h.failDetail(c, id, form, err)
	}
	return redirectWithNotice(c, "/dashboard", msg)
}

func (h *Dashboard) failDetail(c echo.Context, id string, form map[string]string, err error) error {
	v, loadErr := h.detailView(c, id)
	if loadErr != nil {
		v.Error = apperrors.UserMessage(loadErr)
	}
	for k, val := range form {
		v.Form[k] = val
	}
	return renderFailure(h.logger, c, viewDetail, v, err)
}

// Stream pushes the list every time the cached list is refetched and ends
// when the session loses administrator access.
// GET /dashboard/stream
func (h *Dashboard) Stream(c echo.Context) error {
	watch, err := h.meetingService.Watch(filterFrom(c))
	if err != nil {
		return err
	}
	defer watch.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	signedOut := make(chan struct{})
	var once sync.Once
	stopWatching := h.sessions.Subscribe(func(snap session.Snapshot) {
		if snap.State != entities.SessionAuthenticatedAdmin {
			once.Do(func() { close(signedOut) })
			cancel()
		}
	})
	defer stopWatching()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for {
		meetings, err := watch.Next(ctx)
		select {
		case <-signedOut:
			return writeEvent(res, "session", map[string]string{"state": entities.SessionAnonymous.String()})
		default:
		}
		if ctx.Err() != nil {
			return nil
		}

		if err != nil {
			if writeErr := writeEvent(res, "error", map[string]string{"message": apperrors.UserMessage(err)}); writeErr != nil {
				return nil
			}
			continue
		}
		if err := writeEvent(res, "meetings", meetings); err != nil {
			h.logger.Debug("stream client went away", zap.Error(err))
			return nil
		}
	}
}

func writeEvent(res *echo.Response, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
