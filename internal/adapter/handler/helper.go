package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
	httpmw "github.com/johnquangdev/meeting-portal/internal/infrastructure/http/middleware"
)

// getRequestID reads the id set by the request id middleware
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// newView starts a view carrying the session the guard saw
func newView(c echo.Context, title string) View {
	return View{
		Title:     title,
		Session:   httpmw.GetSession(c),
		Notice:    c.QueryParam("notice"),
		Form:      map[string]string{},
		RequestID: getRequestID(c),
	}
}

// formValues copies the named form fields, trimmed
func formValues(c echo.Context, names ...string) map[string]string {
	values := make(map[string]string, len(names))
	for _, name := range names {
		values[name] = strings.TrimSpace(c.FormValue(name))
	}
	return values
}

// renderFailure re-renders a form with the error. Validation failures show
// field messages; transport and network failures show the server message or
// the fallback.
func renderFailure(logger *zap.Logger, c echo.Context, name string, v View, err error) error {
	status := apperrors.Status(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}

	v.Error = apperrors.UserMessage(err)
	if appErr, ok := apperrors.As(err); ok && appErr.Code == apperrors.ErrorCode_VALIDATION {
		v.Fields = appErr.Details
	} else {
		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		}
		if appErr, ok := apperrors.As(err); ok {
			fields = append(fields, zap.Stringer("app_code", appErr.Code))
		}
		logger.Warn("http.response.error", fields...)
	}

	return c.Render(status, name, v)
}

// redirectWithNotice follows a successful POST with a GET
func redirectWithNotice(c echo.Context, path, notice string) error {
	if notice != "" {
		path += "?notice=" + url.QueryEscape(notice)
	}
	return c.Redirect(http.StatusSeeOther, path)
}
