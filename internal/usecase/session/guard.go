package session

import (
	"strings"

	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
)

// Views the guard redirects to
const (
	LoginPath   = "/login"
	MeetingPath = "/meeting"
)

// Decision is the outcome of evaluating the guard for one request
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Allow lets the request through
func Allow() Decision {
	return Decision{Allowed: true}
}

// RedirectTo sends the request elsewhere
func RedirectTo(path string) Decision {
	return Decision{RedirectTo: path}
}

var protectedRoots = []string{"/dashboard", "/adminDashboard"}

// Protected reports whether route needs a session
func Protected(route string) bool {
	path := trimQuery(route)
	for _, root := range protectedRoots {
		if path == root || strings.HasPrefix(path, root+"/") {
			return true
		}
	}
	return false
}

// AdminOnly reports whether route needs administrator privilege. Every
// dashboard view is an admin view.
func AdminOnly(route string) bool {
	return Protected(route)
}

// Guard decides whether state may open route. Anonymous visitors go to the
// login view and the requested path is not remembered; signed-in users
// without privilege go to the meeting form.
func Guard(state entities.SessionState, route string) Decision {
	if !Protected(route) {
		return Allow()
	}
	if !state.IsAuthenticated() {
		return RedirectTo(LoginPath)
	}
	if AdminOnly(route) && state != entities.SessionAuthenticatedAdmin {
		return RedirectTo(MeetingPath)
	}
	return Allow()
}

func trimQuery(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}
