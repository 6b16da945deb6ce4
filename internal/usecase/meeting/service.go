package meeting

import (
	"context"

	"github.com/johnquangdev/meeting-portal/internal/api"
	"github.com/johnquangdev/meeting-portal/internal/domain/entities"
	"github.com/johnquangdev/meeting-portal/internal/infrastructure/cache"
)

// Service defines the interface for the meeting use case
type Service interface {
	// List returns the meetings matching filter, ordered by arrival
	List(ctx context.Context, filter Filter) ([]entities.Meeting, error)

	// Get returns one meeting from the cached list
	Get(ctx context.Context, id string) (*entities.Meeting, error)

	// Create submits a new meeting request
	Create(ctx context.Context, req entities.MeetingRequest) (string, error)

	// Schedule assigns priority and arrival slot
	Schedule(ctx context.Context, id string, req entities.ScheduleRequest) (string, error)

	// Complete closes a meeting with a remark
	Complete(ctx context.Context, id string, req entities.CompleteRequest) (string, error)

	// Watch observes the list until the watch is closed
	Watch(filter Filter) (*ListWatch, error)
}

// Cache is the part of the query cache the service needs
type Cache interface {
	Read(ctx context.Context, name string, req api.Request) (any, error)
	Write(ctx context.Context, name string, req api.Request) (any, error)
	Subscribe(name string, req api.Request) (*cache.Subscription, error)
}

// Validator checks request structs
type Validator interface {
	Validate(i interface{}) error
}
