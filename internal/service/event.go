package service

import (
	"context"
	"errors"
	"strings"

	"github.com/evently/backend/internal/apperr"
	"github.com/evently/backend/internal/db"
	"github.com/evently/backend/internal/model"
	"github.com/rs/zerolog"
)

type EventStore interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	CreateEvent(ctx context.Context, in model.EventInput) (*model.Event, error)
	UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error)
	DeleteEvent(ctx context.Context, id string) (*model.Event, error)
	AddParticipant(ctx context.Context, eventID, userID string) error
	HasParticipant(ctx context.Context, eventID, userID string) (bool, error)
}

type EventService struct {
	events EventStore
	users  UserStore
	log    zerolog.Logger
}

func NewEventService(events EventStore, users UserStore, log zerolog.Logger) *EventService {
	return &EventService{
		events: events,
		users:  users,
		log:    log.With().Str("component", "events").Logger(),
	}
}

func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list events", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, apperr.Validation("invalid event ID format")
	}
	event, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return nil, eventStoreError(err, "get event")
	}
	return event, nil
}

func (s *EventService) Create(ctx context.Context, in model.EventInput) (*model.Event, error) {
	var details []string
	details = validateDate(in.Date, details)
	details = validateClock(in.Time, details)
	details = validateDescription(in.Description, details)
	details = validateParticipants(in.Participants, details)
	if len(details) > 0 {
		return nil, apperr.Validation("validation failed", details...)
	}

	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Participants = canonicalIDs(append([]string(nil), in.Participants...))
	event, err := s.events.CreateEvent(ctx, in)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Validation("validation failed", "participants must reference existing users")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "create event", err)
	}

	s.log.Info().Str("event_id", event.ID).Msg("event created")
	return event, nil
}

func (s *EventService) Update(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, apperr.Validation("invalid event ID format")
	}

	var details []string
	if patch.Date != nil {
		details = validateDate(*patch.Date, details)
	}
	if patch.Time != nil {
		details = validateClock(*patch.Time, details)
	}
	if patch.Description != nil {
		details = validateDescription(*patch.Description, details)
	}
	if patch.Participants != nil {
		details = validateParticipants(*patch.Participants, details)
	}
	if len(details) > 0 {
		return nil, apperr.Validation("validation failed", details...)
	}

	if patch.Participants != nil {
		ids := canonicalIDs(append([]string(nil), (*patch.Participants)...))
		patch.Participants = &ids
		for _, userID := range *patch.Participants {
			if _, err := s.users.FindByID(ctx, userID); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return nil, apperr.Validation("validation failed", "participants must reference existing users")
				}
				return nil, apperr.Wrap(apperr.KindInternal, "lookup participant", err)
			}
		}
	}

	event, err := s.events.UpdateEvent(ctx, id, patch)
	if err != nil {
		return nil, eventStoreError(err, "update event")
	}
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id string) (*model.Event, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, apperr.Validation("invalid event ID format")
	}
	event, err := s.events.DeleteEvent(ctx, id)
	if err != nil {
		return nil, eventStoreError(err, "delete event")
	}
	s.log.Info().Str("event_id", id).Msg("event deleted")
	return event, nil
}

// RegisterParticipant adds userID to the event and returns the updated event
// together with the registered user.
func (s *EventService) RegisterParticipant(ctx context.Context, eventID, userID string) (*model.Event, *model.PublicUser, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil, apperr.Validation("user ID is required")
	}
	eventID, okEvent := canonicalID(eventID)
	userID, okUser := canonicalID(userID)
	if !okEvent || !okUser {
		return nil, nil, apperr.Validation("invalid ID format")
	}

	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return nil, nil, eventStoreError(err, "get event")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, apperr.NotFound("user not found")
		}
		return nil, nil, apperr.Wrap(apperr.KindInternal, "lookup user", err)
	}

	registered, err := s.events.HasParticipant(ctx, eventID, userID)
	if err != nil {
		return nil, nil, eventStoreError(err, "check participant")
	}
	if registered {
		return nil, nil, apperr.New(apperr.KindDuplicate, "user is already registered for this event")
	}

	if err := s.events.AddParticipant(ctx, eventID, userID); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, nil, apperr.New(apperr.KindDuplicate, "user is already registered for this event")
		}
		return nil, nil, eventStoreError(err, "add participant")
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, nil, eventStoreError(err, "get event")
	}
	public := user.Public()
	return event, &public, nil
}

func eventStoreError(err error, op string) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("event not found")
	}
	return apperr.Wrap(apperr.KindInternal, op, err)
}
