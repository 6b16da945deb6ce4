package meeting

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/internal/testfixtures"
)

func newService(t *testing.T) (*MeetingService, *testfixtures.Stack) {
	t.Helper()
	stack := testfixtures.NewStack(t)
	stack.SignInAdmin(t)
	return NewMeetingService(stack.Cache, stack.Validator, nil), stack
}

func validRequest(name string) entities.MeetingRequest {
	return entities.MeetingRequest{
		FullName:     name,
		MobileNumber: "9876543210",
		State:        "Bihar",
		HomeDistrict: "Patna",
		Constituency: "Patna Sahib",
		Occupation:   "Teacher",
		Reason:       "School funding",
	}
}

func TestGet_CompletedMeetingReflectsRemark(t *testing.T) {
	svc, stack := newService(t)
	stack.API.Seed(entities.Meeting{ID: "m1", FullName: "Asha"}, entities.Meeting{ID: "m2", FullName: "Ravi"})
	ctx := context.Background()

	before, err := svc.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, entities.MeetingStatusNotScheduled, before.Status)

	msg, err := svc.Complete(ctx, "m1", entities.CompleteRequest{Remark: "done"})
	require.NoError(t, err)
	assert.Equal(t, "Meeting completed successfully", msg)

	after, err := svc.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, entities.MeetingStatusCompleted, after.Status)
	assert.Equal(t, "done", after.Remark)
	assert.Equal(t, 2, stack.API.Calls(testfixtures.RouteListMeetings))
}

func TestGet_UnknownID(t *testing.T) {
	svc, stack := newService(t)
	stack.API.Seed(entities.Meeting{ID: "m1"})

	_, err := svc.Get(context.Background(), "nope")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_NOT_FOUND, appErr.Code)
}

func TestList_ServedFromCache(t *testing.T) {
	svc, stack := newService(t)
	stack.API.Seed(entities.Meeting{ID: "m1"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.List(ctx, Filter{})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, stack.API.Calls(testfixtures.RouteListMeetings))
}

func TestWatch_CreateRefetchesList(t *testing.T) {
	svc, stack := newService(t)
	stack.API.Seed(entities.Meeting{ID: "m1", FullName: "Asha"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	watch, err := svc.Watch(Filter{})
	require.NoError(t, err)
	defer watch.Close()

	first, err := watch.Next(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = svc.Create(ctx, validRequest("Ravi"))
	require.NoError(t, err)

	second, err := watch.Next(ctx)
	require.NoError(t, err)
	require.Len(t, second, 2)

	list, err := svc.List(ctx, Filter{Search: "ravi"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ravi", list[0].FullName)
	assert.Equal(t, 2, stack.API.Calls(testfixtures.RouteListMeetings))
}

func TestCreate_ValidationNeverReachesNetwork(t *testing.T) {
	svc, stack := newService(t)
	req := validRequest("")
	req.MobileNumber = "12345"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_VALIDATION, appErr.Code)
	assert.Equal(t, "Full name is required", appErr.Details["fullName"])
	assert.Equal(t, "Mobile number must be exactly 10 digits", appErr.Details["mobileNumber"])
	assert.Equal(t, 0, stack.API.Calls(testfixtures.RouteCreateMeeting))
}

func TestSchedule(t *testing.T) {
	svc, stack := newService(t)
	stack.API.Seed(entities.Meeting{ID: "m1"})
	ctx := context.Background()

	_, err := svc.Schedule(ctx, "m1", entities.ScheduleRequest{PriorityTag: entities.PriorityHigh})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, stack.API.Calls(testfixtures.RouteUpdateMeeting))

	_, err = svc.Schedule(ctx, "m1", entities.ScheduleRequest{
		PriorityTag: entities.PriorityHigh,
		ArrivalDate: "2026-10-20",
		ArrivalTime: "10:30",
	})
	require.NoError(t, err)

	m := stack.API.Meetings()[0]
	assert.Equal(t, entities.MeetingStatusScheduled, m.Status)
	assert.Equal(t, entities.PriorityHigh, m.PriorityTag)
	assert.Equal(t, "2026-10-20", m.ArrivalDate)
	assert.Empty(t, m.Remark)
}

func TestComplete_FailureLeavesCachedListUntouched(t *testing.T) {
	svc, stack := newService(t)
	stack.API.Seed(entities.Meeting{ID: "m1"})
	ctx := context.Background()

	_, err := svc.List(ctx, Filter{})
	require.NoError(t, err)

	stack.API.RespondNext(testfixtures.RouteCompleteMeeting, http.StatusBadRequest, map[string]interface{}{"message": "Invalid id"})
	_, err = svc.Complete(ctx, "m1", entities.CompleteRequest{Remark: "done"})
	require.Error(t, err)
	assert.Equal(t, "Invalid id", apperrors.UserMessage(err))

	_, err = svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stack.API.Calls(testfixtures.RouteListMeetings), "list is still served from cache")
}

func TestComplete_BlankRemarkAndMissingID(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Complete(ctx, "m1", entities.CompleteRequest{Remark: "  "})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Complete(ctx, "", entities.CompleteRequest{Remark: "done"})
	assert.True(t, apperrors.IsValidation(err))
}
