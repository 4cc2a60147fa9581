package service

import (
	"context"
	"strings"
	"testing"

	"github.com/evently/backend/internal/apperr"
	"github.com/evently/backend/internal/db"
	"github.com/evently/backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEventService(t *testing.T) (*EventService, *db.Memory) {
	t.Helper()
	store := db.NewMemory()
	return NewEventService(store, store, zerolog.Nop()), store
}

func validInput() model.EventInput {
	return model.EventInput{Date: "2026-11-01", Time: "10:30 AM", Description: "kickoff"}
}

func TestCreateEventValidation(t *testing.T) {
	svc, _ := newTestEventService(t)

	_, err := svc.Create(context.Background(), model.EventInput{Date: "tomorrow", Time: "25:00"})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.ElementsMatch(t, []string{
		"please provide a valid date",
		"please provide a valid time format (HH:MM or HH:MM AM/PM)",
		"description is required",
	}, appErr.Details)
}

func TestCreateEventUnknownParticipant(t *testing.T) {
	svc, _ := newTestEventService(t)

	in := validInput()
	in.Participants = []string{uuid.NewString()}
	_, err := svc.Create(context.Background(), in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in.Participants = []string{"not-a-uuid"}
	_, err = svc.Create(context.Background(), in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestEventCRUD(t *testing.T) {
	svc, _ := newTestEventService(t)
	ctx := context.Background()

	ev, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := svc.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "kickoff", got.Description)

	tm := "18:00"
	updated, err := svc.Update(ctx, ev.ID, model.EventPatch{Time: &tm})
	require.NoError(t, err)
	assert.Equal(t, "18:00", updated.Time)
	assert.Equal(t, "2026-11-01", updated.Date)

	bad := "noon"
	_, err = svc.Update(ctx, ev.ID, model.EventPatch{Time: &bad})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Delete(ctx, ev.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, ev.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.Delete(ctx, ev.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestEventInvalidID(t *testing.T) {
	svc, _ := newTestEventService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "123")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.Update(ctx, "123", model.EventPatch{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.Delete(ctx, "123")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestEventIDsAreCanonicalized(t *testing.T) {
	svc, store := newTestEventService(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice@x.com", "h")
	require.NoError(t, err)
	upperUser := strings.ToUpper(user.ID)

	in := validInput()
	in.Participants = []string{upperUser}
	ev, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.Len(t, ev.Participants, 1)
	assert.Equal(t, user.ID, ev.Participants[0].ID)

	for _, id := range []string{strings.ToUpper(ev.ID), "{" + ev.ID + "}", "urn:uuid:" + ev.ID} {
		got, err := svc.Get(ctx, id)
		require.NoError(t, err, id)
		assert.Equal(t, ev.ID, got.ID)
	}

	_, _, err = svc.RegisterParticipant(ctx, strings.ToUpper(ev.ID), upperUser)
	assert.Equal(t, apperr.KindDuplicate, apperr.KindOf(err))

	participants := []string{upperUser}
	updated, err := svc.Update(ctx, strings.ToUpper(ev.ID), model.EventPatch{Participants: &participants})
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.Participants[0].ID)
	assert.Equal(t, upperUser, participants[0], "caller's slice is left untouched")

	_, err = svc.Delete(ctx, strings.ToUpper(ev.ID))
	require.NoError(t, err)
}

func TestRegisterParticipant(t *testing.T) {
	svc, store := newTestEventService(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, "alice@x.com", "h")
	require.NoError(t, err)
	ev, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, _, err = svc.RegisterParticipant(ctx, ev.ID, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, _, err = svc.RegisterParticipant(ctx, uuid.NewString(), alice.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, _, err = svc.RegisterParticipant(ctx, ev.ID, uuid.NewString())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	updated, user, err := svc.RegisterParticipant(ctx, ev.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
	assert.True(t, updated.HasParticipant(alice.ID))

	_, _, err = svc.RegisterParticipant(ctx, ev.ID, alice.ID)
	assert.Equal(t, apperr.KindDuplicate, apperr.KindOf(err))
}

func TestReplaceParticipants(t *testing.T) {
	svc, store := newTestEventService(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, "alice@x.com", "h")
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, "bob@x.com", "h")
	require.NoError(t, err)

	in := validInput()
	in.Participants = []string{alice.ID}
	ev, err := svc.Create(ctx, in)
	require.NoError(t, err)

	ids := []string{bob.ID}
	updated, err := svc.Update(ctx, ev.ID, model.EventPatch{Participants: &ids})
	require.NoError(t, err)
	require.Len(t, updated.Participants, 1)
	assert.Equal(t, "bob@x.com", updated.Participants[0].Username)

	missing := []string{uuid.NewString()}
	_, err = svc.Update(ctx, ev.ID, model.EventPatch{Participants: &missing})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestValidators(t *testing.T) {
	for _, ok := range []string{"09:15", "9:15", "23:59", "7:05 pm", "11:00AM"} {
		assert.True(t, ValidClock(ok), ok)
	}
	for _, bad := range []string{"24:00", "12:60", "noon", "", "1230"} {
		assert.False(t, ValidClock(bad), bad)
	}
	assert.True(t, ValidDate("2026-02-28"))
	assert.True(t, ValidDate("2026-02-28T10:00:00Z"))
	assert.False(t, ValidDate("2026-02-30"))
	assert.False(t, ValidDate("next week"))
}
