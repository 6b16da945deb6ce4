package api

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
)

// Endpoint names
const (
	GetMeetings     = "getMeetings"
	CreateMeeting   = "createMeeting"
	UpdateMeeting   = "updateMeeting"
	CompleteMeeting = "completeMeeting"
	Register        = "register"
	Login           = "login"
	AdminLogin      = "adminLogin"
	Logout          = "logout"
)

// Registry maps operation names to descriptors. It is immutable once built.
type Registry struct {
	byName map[string]*Descriptor
}

// NewRegistry builds a registry. Duplicate or empty names are programming
// errors and panic.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{byName: make(map[string]*Descriptor, len(descriptors))}
	for i := range descriptors {
		d := descriptors[i]
		if d.Name == "" {
			panic("api: descriptor without name")
		}
		if _, dup := r.byName[d.Name]; dup {
			panic(fmt.Sprintf("api: duplicate descriptor %q", d.Name))
		}
		if d.Method == "" {
			d.Method = http.MethodGet
		}
		r.byName[d.Name] = &d
	}
	return r
}

// Lookup returns a copy of the named descriptor
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// Names lists registered operations, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the meeting API operations
func DefaultRegistry() *Registry {
	return NewRegistry(
		Descriptor{
			Name:         GetMeetings,
			Method:       http.MethodGet,
			Path:         "/meetings",
			Kind:         KindQuery,
			Decode:       DecodeJSON[[]entities.Meeting],
			ProvidesTags: provideMeetingList,
		},
		Descriptor{
			Name:   CreateMeeting,
			Method: http.MethodPost,
			Path:   "/meetings",
			Kind:   KindMutation,
			Decode: DecodeJSON[entities.MessageResponse],
			InvalidatesTags: func(any, Request) []Tag {
				return []Tag{MeetingListTag()}
			},
		},
		Descriptor{
			Name:            UpdateMeeting,
			Method:          http.MethodPatch,
			Path:            "/meetings/{id}",
			Kind:            KindMutation,
			Decode:          DecodeJSON[entities.MessageResponse],
			InvalidatesTags: invalidateMeetingItem,
		},
		Descriptor{
			Name:            CompleteMeeting,
			Method:          http.MethodPatch,
			Path:            "/meetings/{id}/complete",
			Kind:            KindMutation,
			Decode:          DecodeJSON[entities.MessageResponse],
			InvalidatesTags: invalidateMeetingItem,
		},
		Descriptor{
			Name:   Register,
			Method: http.MethodPost,
			Path:   "/auth/register",
			Kind:   KindMutation,
			Decode: DecodeJSON[entities.MessageResponse],
		},
		Descriptor{
			Name:   Login,
			Method: http.MethodPost,
			Path:   "/auth/login",
			Kind:   KindMutation,
			Decode: DecodeJSON[entities.LoginResponse],
		},
		Descriptor{
			Name:   AdminLogin,
			Method: http.MethodPost,
			Path:   "/auth/admin/login",
			Kind:   KindMutation,
			Decode: DecodeJSON[entities.AdminLoginResponse],
		},
		Descriptor{
			Name:   Logout,
			Method: http.MethodPost,
			Path:   "/auth/logout",
			Kind:   KindMutation,
		},
	)
}

// provideMeetingList tags every returned item plus the list itself. A failed
// read still carries the list tag so a create can retrigger it.
func provideMeetingList(result any, _ Request) []Tag {
	meetings, _ := result.([]entities.Meeting)
	tags := make([]Tag, 0, len(meetings)+1)
	for _, m := range meetings {
		if m.ID != "" {
			tags = append(tags, MeetingTag(m.ID))
		}
	}
	return append(tags, MeetingListTag())
}

// invalidateMeetingItem targets the item when its id is known and falls back
// to the whole list otherwise.
func invalidateMeetingItem(_ any, req Request) []Tag {
	if id := req.Param("id"); id != "" {
		return []Tag{MeetingTag(id)}
	}
	return []Tag{MeetingListTag()}
}
