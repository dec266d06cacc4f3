package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// sqlEventRepo keeps each event in one row with its registrations in a JSONB
// array, so the document shape matches the Mongo backend.
type sqlEventRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLEventRepository(db *sql.DB, timeout time.Duration) EventRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &sqlEventRepo{db: db, timeout: timeout}
}

const eventColumns = `id, title, description, date, location, capacity, image, registrations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		e    Event
		raw  []byte
		date time.Time
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &date, &e.Location, &e.Capacity, &e.Image, &raw); err != nil {
		return Event{}, err
	}
	e.Date = date.UTC()
	e.Registrations = []Registration{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e.Registrations); err != nil {
			return Event{}, err
		}
	}
	return e, nil
}

// uuid.Parse guards the query: postgres would reject a malformed UUID with a
// syntax error instead of returning no rows.
func sqlID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrNotFound
	}
	return u.String(), nil
}

func (r *sqlEventRepo) GetAll(ctx context.Context) ([]Event, error) {
	const op = "postgres.GetAll"
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at, id`)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		out = append(out, e)
	}
	return out, storeErr(op, rows.Err())
}

func (r *sqlEventRepo) GetByID(ctx context.Context, id string) (Event, error) {
	const op = "postgres.GetByID"
	id, err := sqlID(id)
	if err != nil {
		return Event{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, storeErr(op, err)
	}
	return e, nil
}

func (r *sqlEventRepo) Create(ctx context.Context, e *Event) error {
	const op = "postgres.Create"
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if e.Registrations == nil {
		e.Registrations = []Registration{}
	}
	regs, err := json.Marshal(e.Registrations)
	if err != nil {
		return storeErr(op, err)
	}
	id := uuid.NewString()
	// jsonb params go in as strings; lib/pq sends []byte as bytea
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO events(id, title, description, date, location, capacity, image, registrations)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, e.Title, e.Description, e.Date, e.Location, e.Capacity, e.Image, string(regs))
	if err != nil {
		return storeErr(op, err)
	}
	e.ID = id
	return nil
}

func (r *sqlEventRepo) Save(ctx context.Context, e *Event) error {
	const op = "postgres.Save"
	id, err := sqlID(e.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if e.Registrations == nil {
		e.Registrations = []Registration{}
	}
	regs, err := json.Marshal(e.Registrations)
	if err != nil {
		return storeErr(op, err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET title = $2, description = $3, date = $4, location = $5,
		 capacity = $6, image = $7, registrations = $8 WHERE id = $1`,
		id, e.Title, e.Description, e.Date, e.Location, e.Capacity, e.Image, string(regs))
	if err != nil {
		return storeErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlEventRepo) Delete(ctx context.Context, id string) (Event, error) {
	const op = "postgres.Delete"
	id, err := sqlID(id)
	if err != nil {
		return Event{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	e, err := scanEvent(r.db.QueryRowContext(ctx, `DELETE FROM events WHERE id = $1 RETURNING `+eventColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, storeErr(op, err)
	}
	return e, nil
}

// AppendRegistration relies on postgres re-checking the WHERE clause against
// the latest row version when concurrent updates queue on the row lock.
func (r *sqlEventRepo) AppendRegistration(ctx context.Context, id string, reg Registration) (Event, error) {
	const op = "postgres.AppendRegistration"
	id, err := sqlID(id)
	if err != nil {
		return Event{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	item, err := json.Marshal([]Registration{reg})
	if err != nil {
		return Event{}, storeErr(op, err)
	}
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`UPDATE events SET registrations = registrations || $2::jsonb
		 WHERE id = $1 AND jsonb_array_length(registrations) < capacity
		 RETURNING `+eventColumns, id, string(item)))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Event{}, storeErr(op, err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return Event{}, storeErr(op, err)
	}
	if !exists {
		return Event{}, ErrNotFound
	}
	return Event{}, ErrCapacityExceeded
}

func (r *sqlEventRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return storeErr("postgres.Ping", r.db.PingContext(ctx))
}
