package db

import (
	"context"

	"github.com/evently/backend/internal/model"
	"github.com/jackc/pgx/v5"
)

func (db *Postgres) EnsureEventSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			event_date TEXT NOT NULL,
			event_time TEXT NOT NULL,
			description TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS event_participants (
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (event_id, user_id)
		)
		`,
		`CREATE INDEX IF NOT EXISTS events_created_at_idx ON events(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS event_participants_user_id_idx ON event_participants(user_id)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) ListEvents(ctx context.Context) ([]model.Event, error) {
	query := `
		SELECT id::text, event_date, event_time, description, created_at, updated_at
		FROM events
		ORDER BY created_at DESC
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Event{}
	index := map[string]int{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Date, &e.Time, &e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Participants = []model.Participant{}
		index[e.ID] = len(list)
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	prows, err := db.Pool.Query(ctx, `
		SELECT ep.event_id::text, u.id::text, u.username
		FROM event_participants ep
		JOIN users u ON u.id = ep.user_id
		ORDER BY ep.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		var eventID string
		var p model.Participant
		if err := prows.Scan(&eventID, &p.ID, &p.Username); err != nil {
			return nil, err
		}
		if i, ok := index[eventID]; ok {
			list[i].Participants = append(list[i].Participants, p)
		}
	}
	return list, prows.Err()
}

func (db *Postgres) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	query := `
		SELECT id::text, event_date, event_time, description, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	var e model.Event
	err := db.Pool.QueryRow(ctx, query, id).Scan(&e.ID, &e.Date, &e.Time, &e.Description, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}

	participants, err := db.participants(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Participants = participants
	return &e, nil
}

func (db *Postgres) CreateEvent(ctx context.Context, in model.EventInput) (*model.Event, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO events (event_date, event_time, description, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id::text
	`, in.Date, in.Time, in.Description).Scan(&id)
	if err != nil {
		return nil, err
	}

	if err := insertParticipants(ctx, tx, id, in.Participants); err != nil {
		return nil, translate(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return db.GetEvent(ctx, id)
}

func (db *Postgres) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	commandTag, err := tx.Exec(ctx, `
		UPDATE events
		SET
			event_date = COALESCE($1::text, event_date),
			event_time = COALESCE($2::text, event_time),
			description = COALESCE($3::text, description),
			updated_at = NOW()
		WHERE id = $4
	`, patch.Date, patch.Time, patch.Description, id)
	if err != nil {
		return nil, err
	}
	if commandTag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if patch.Participants != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM event_participants WHERE event_id = $1`, id); err != nil {
			return nil, err
		}
		if err := insertParticipants(ctx, tx, id, *patch.Participants); err != nil {
			return nil, translate(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return db.GetEvent(ctx, id)
}

func (db *Postgres) DeleteEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := db.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	commandTag, err := db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if commandTag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return event, nil
}

func (db *Postgres) AddParticipant(ctx context.Context, eventID, userID string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO event_participants (event_id, user_id, created_at)
		VALUES ($1, $2, NOW())
	`, eventID, userID)
	return translate(err)
}

func (db *Postgres) HasParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2
		)
	`, eventID, userID).Scan(&exists)
	return exists, err
}

func (db *Postgres) participants(ctx context.Context, eventID string) ([]model.Participant, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT u.id::text, u.username
		FROM event_participants ep
		JOIN users u ON u.id = ep.user_id
		WHERE ep.event_id = $1
		ORDER BY ep.created_at
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Participant{}
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.Username); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func insertParticipants(ctx context.Context, tx pgx.Tx, eventID string, userIDs []string) error {
	for _, userID := range userIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO event_participants (event_id, user_id, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT DO NOTHING
		`, eventID, userID); err != nil {
			return err
		}
	}
	return nil
}
