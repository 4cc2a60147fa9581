package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evently/backend/internal/model"
	"github.com/google/uuid"
)

// Memory is an in-process store for development and tests. Each instance owns
// its data; nothing is shared between instances.
type Memory struct {
	mu     sync.RWMutex
	users  map[string]model.User
	byName map[string]string
	events map[string]*memoryEvent
	now    func() time.Time
}

type memoryEvent struct {
	event        model.Event
	participants []string
}

func NewMemory() *Memory {
	return &Memory{
		users:  map[string]model.User{},
		byName: map[string]string{},
		events: map[string]*memoryEvent{},
		now:    time.Now,
	}
}

func (m *Memory) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byName[username]; ok {
		return nil, ErrDuplicate
	}
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    m.now(),
	}
	m.users[user.ID] = user
	m.byName[username] = user.ID
	return &user, nil
}

func (m *Memory) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	user := m.users[id]
	return &user, nil
}

func (m *Memory) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// DeleteUser removes a user and their event registrations.
func (m *Memory) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	delete(m.byName, user.Username)
	for _, ev := range m.events {
		ev.participants = without(ev.participants, id)
	}
	return nil
}

func (m *Memory) ListEvents(ctx context.Context) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]model.Event, 0, len(m.events))
	for _, ev := range m.events {
		list = append(list, m.materialize(ev))
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (m *Memory) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ev, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	event := m.materialize(ev)
	return &event, nil
}

func (m *Memory) CreateEvent(ctx context.Context, in model.EventInput) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkUsers(in.Participants); err != nil {
		return nil, err
	}

	now := m.now()
	ev := &memoryEvent{
		event: model.Event{
			ID:          uuid.NewString(),
			Date:        in.Date,
			Time:        in.Time,
			Description: in.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		participants: dedupe(in.Participants),
	}
	m.events[ev.event.ID] = ev
	event := m.materialize(ev)
	return &event, nil
}

func (m *Memory) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Participants != nil {
		if err := m.checkUsers(*patch.Participants); err != nil {
			return nil, err
		}
		ev.participants = dedupe(*patch.Participants)
	}
	if patch.Date != nil {
		ev.event.Date = *patch.Date
	}
	if patch.Time != nil {
		ev.event.Time = *patch.Time
	}
	if patch.Description != nil {
		ev.event.Description = *patch.Description
	}
	ev.event.UpdatedAt = m.now()

	event := m.materialize(ev)
	return &event, nil
}

func (m *Memory) DeleteEvent(ctx context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.events, id)
	event := m.materialize(ev)
	return &event, nil
}

func (m *Memory) AddParticipant(ctx context.Context, eventID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[eventID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m.users[userID]; !ok {
		return ErrNotFound
	}
	for _, id := range ev.participants {
		if id == userID {
			return ErrDuplicate
		}
	}
	ev.participants = append(ev.participants, userID)
	return nil
}

func (m *Memory) HasParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ev, ok := m.events[eventID]
	if !ok {
		return false, ErrNotFound
	}
	for _, id := range ev.participants {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// materialize copies ev into a value safe to hand to callers. Caller holds mu.
func (m *Memory) materialize(ev *memoryEvent) model.Event {
	event := ev.event
	event.Participants = make([]model.Participant, 0, len(ev.participants))
	for _, id := range ev.participants {
		if user, ok := m.users[id]; ok {
			event.Participants = append(event.Participants, model.Participant{ID: user.ID, Username: user.Username})
		}
	}
	return event
}

func (m *Memory) checkUsers(ids []string) error {
	for _, id := range ids {
		if _, ok := m.users[id]; !ok {
			return ErrNotFound
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func without(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
