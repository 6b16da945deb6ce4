package meeting

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
	"github.com/johnquangdev/meeting-portal/internal/api"
	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-portal/pkg/logger"
)

// MeetingService reads and changes meetings through the query cache
type MeetingService struct {
	cache     Cache
	validator Validator
	logger    *zap.Logger
}

// NewMeetingService creates a new meeting service
func NewMeetingService(c Cache, validator Validator, log *zap.Logger) *MeetingService {
	return &MeetingService{
		cache:     c,
		validator: validator,
		logger:    logger.OrNop(log),
	}
}

var _ Service = (*MeetingService)(nil)

// List returns the meetings matching filter
func (s *MeetingService) List(ctx context.Context, filter Filter) ([]entities.Meeting, error) {
	meetings, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(meetings), nil
}

// Get returns one meeting. The list is the only read the API offers, so the
// item comes from the cached list entry.
func (s *MeetingService) Get(ctx context.Context, id string) (*entities.Meeting, error) {
	if id == "" {
		return nil, missingID()
	}
	meetings, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range meetings {
		if meetings[i].ID == id {
			m := meetings[i]
			return &m, nil
		}
	}
	return nil, apperrors.ErrNotFound("meeting")
}

// Create submits a new meeting request
func (s *MeetingService) Create(ctx context.Context, req entities.MeetingRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}
	return s.write(ctx, api.CreateMeeting, api.Request{Body: req})
}

// Schedule assigns priority and arrival slot
func (s *MeetingService) Schedule(ctx context.Context, id string, req entities.ScheduleRequest) (string, error) {
	if id == "" {
		return "", missingID()
	}
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}
	msg, err := s.write(ctx, api.UpdateMeeting, api.Request{
		Params: map[string]string{"id": id},
		Body:   req.Scheduled(),
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("meeting scheduled",
		zap.String("meeting_id", id),
		zap.String("arrival_date", req.ArrivalDate),
		zap.String("arrival_time", req.ArrivalTime),
	)
	return msg, nil
}

// Complete closes a meeting with a remark
func (s *MeetingService) Complete(ctx context.Context, id string, req entities.CompleteRequest) (string, error) {
	if id == "" {
		return "", missingID()
	}
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}
	msg, err := s.write(ctx, api.CompleteMeeting, api.Request{
		Params: map[string]string{"id": id},
		Body:   req.Completed(),
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("meeting completed", zap.String("meeting_id", id))
	return msg, nil
}

// Watch observes the list until the watch is closed
func (s *MeetingService) Watch(filter Filter) (*ListWatch, error) {
	sub, err := s.cache.Subscribe(api.GetMeetings, api.Request{})
	if err != nil {
		return nil, err
	}
	return &ListWatch{sub: sub, filter: filter}, nil
}

func (s *MeetingService) all(ctx context.Context) ([]entities.Meeting, error) {
	data, err := s.cache.Read(ctx, api.GetMeetings, api.Request{})
	if err != nil {
		return nil, err
	}
	return asMeetings(data)
}

func (s *MeetingService) write(ctx context.Context, name string, req api.Request) (string, error) {
	data, err := s.cache.Write(ctx, name, req)
	if err != nil {
		s.logger.Warn("meeting write failed", zap.String("endpoint", name), zap.Error(err))
		return "", err
	}
	resp, ok := data.(entities.MessageResponse)
	if !ok {
		return "", apperrors.ErrInternal(fmt.Errorf("%w from %s: %T", entities.ErrUnexpectedPayload, name, data))
	}
	return resp.Message, nil
}

func asMeetings(data any) ([]entities.Meeting, error) {
	meetings, ok := data.([]entities.Meeting)
	if !ok {
		return nil, apperrors.ErrInternal(fmt.Errorf("%w from %s: %T", entities.ErrUnexpectedPayload, api.GetMeetings, data))
	}
	return meetings, nil
}

func missingID() error {
	return apperrors.ErrValidation("Meeting id is required", map[string]string{"id": entities.ErrMissingMeetingID.Error()})
}

// ListWatch delivers the filtered list each time the cached list resolves
type ListWatch struct {
	sub    *cache.Subscription
	filter Filter
}

// Next blocks until the list resolves again. Errors are per update; the watch
// stays open.
func (w *ListWatch) Next(ctx context.Context) ([]entities.Meeting, error) {
	data, err := w.sub.Wait(ctx)
	if err != nil {
		return nil, err
	}
	meetings, err := asMeetings(data)
	if err != nil {
		return nil, err
	}
	return w.filter.Apply(meetings), nil
}

// Close stops watching
func (w *ListWatch) Close() {
	w.sub.Unsubscribe()
}
