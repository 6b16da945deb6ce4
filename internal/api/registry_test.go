package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
)

func TestDefaultRegistry_Operations(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{
		AdminLogin, CompleteMeeting, CreateMeeting, GetMeetings,
		Login, Logout, Register, UpdateMeeting,
	}, r.Names())

	tests := []struct {
		name   string
		method string
		path   string
		kind   Kind
	}{
		{GetMeetings, http.MethodGet, "/meetings", KindQuery},
		{CreateMeeting, http.MethodPost, "/meetings", KindMutation},
		{UpdateMeeting, http.MethodPatch, "/meetings/{id}", KindMutation},
		{CompleteMeeting, http.MethodPatch, "/meetings/{id}/complete", KindMutation},
		{Register, http.MethodPost, "/auth/register", KindMutation},
		{Login, http.MethodPost, "/auth/login", KindMutation},
		{AdminLogin, http.MethodPost, "/auth/admin/login", KindMutation},
		{Logout, http.MethodPost, "/auth/logout", KindMutation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := r.Lookup(tc.name)
			require.True(t, ok)
			assert.Equal(t, tc.method, d.Method)
			assert.Equal(t, tc.path, d.Path)
			assert.Equal(t, tc.kind, d.Kind)
		})
	}
}

func TestGetMeetings_ProvidesItemAndListTags(t *testing.T) {
	d, _ := DefaultRegistry().Lookup(GetMeetings)

	result, err := d.DecodeBody([]byte(`[{"_id":"m1"},{"_id":"m2"}]`))
	require.NoError(t, err)

	tags := d.Provided(result, Request{})
	assert.ElementsMatch(t, []Tag{MeetingTag("m1"), MeetingTag("m2"), MeetingListTag()}, tags)

	assert.Equal(t, []Tag{MeetingListTag()}, d.Provided(nil, Request{}))
}

func TestMutations_InvalidationRules(t *testing.T) {
	r := DefaultRegistry()

	create, _ := r.Lookup(CreateMeeting)
	assert.Equal(t, []Tag{MeetingListTag()}, create.Invalidated(nil, Request{}))

	for _, name := range []string{UpdateMeeting, CompleteMeeting} {
		d, _ := r.Lookup(name)
		assert.Equal(t, []Tag{MeetingTag("m1")}, d.Invalidated(nil, Request{Params: map[string]string{"id": "m1"}}), name)
		assert.Equal(t, []Tag{MeetingListTag()}, d.Invalidated(nil, Request{}), name)
	}

	for _, name := range []string{Login, AdminLogin, Register, Logout} {
		d, _ := r.Lookup(name)
		assert.Empty(t, d.Invalidated(nil, Request{}), name)
	}
}

func TestBuildPath(t *testing.T) {
	d, _ := DefaultRegistry().Lookup(CompleteMeeting)

	path, err := d.BuildPath(Request{Params: map[string]string{"id": "a b/c"}})
	require.NoError(t, err)
	assert.Equal(t, "/meetings/a%20b%2Fc/complete", path)

	_, err = d.BuildPath(Request{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCacheKey_StableAcrossParamOrder(t *testing.T) {
	d := Descriptor{Name: "getMeeting"}
	a := d.CacheKey(Request{Params: map[string]string{"id": "m1", "view": "full"}})
	b := d.CacheKey(Request{Params: map[string]string{"view": "full", "id": "m1"}})
	assert.Equal(t, a, b)
	assert.Equal(t, "getMeeting(id=m1,view=full)", a)
	assert.Equal(t, "getMeeting()", d.CacheKey(Request{}))
}

func TestDecodeBody(t *testing.T) {
	d, _ := DefaultRegistry().Lookup(AdminLogin)
	v, err := d.DecodeBody([]byte(`{"token":"T1","user":{"_id":"u1","isAdmin":true}}`))
	require.NoError(t, err)
	resp := v.(entities.AdminLoginResponse)
	assert.Equal(t, "T1", resp.Token)
	assert.True(t, resp.User.IsAdmin)

	logout, _ := DefaultRegistry().Lookup(Logout)
	raw, err := logout.DecodeBody([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`{}`), raw)
}

func TestNewRegistry_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(Descriptor{Name: "a"}, Descriptor{Name: "a"})
	})
}

func TestTag_String(t *testing.T) {
	assert.Equal(t, "meeting:m1", MeetingTag("m1").String())
	assert.Equal(t, "meeting:LIST", MeetingListTag().String())
}
