package models

import (
	"context"
	"errors"
	"time"
)

// Registration is one person's claim on a slot of an event. It lives inside
// its Event document and has no identity of its own.
type Registration struct {
	Name             string     `json:"name" bson:"name"`
	PhoneNumber      string     `json:"phoneNumber" bson:"phoneNumber"`
	RegistrationDate time.Time  `json:"registrationDate" bson:"registrationDate"`
	AttendDate       *time.Time `json:"attendDate,omitempty" bson:"attendDate,omitempty"`
}

type Event struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Date          time.Time      `json:"date"`
	Location      string         `json:"location"`
	Capacity      int            `json:"capacity"`
	Image         string         `json:"image"`
	Registrations []Registration `json:"registrations"`
}

// SpotsLeft never goes below zero, even for documents written before
// capacity was enforced.
func (e Event) SpotsLeft() int {
	if left := e.Capacity - len(e.Registrations); left > 0 {
		return left
	}
	return 0
}

func (e Event) IsFull() bool { return len(e.Registrations) >= e.Capacity }

// clone copies the registrations slice so callers can't mutate store state.
func (e Event) clone() Event {
	regs := make([]Registration, len(e.Registrations))
	copy(regs, e.Registrations)
	e.Registrations = regs
	return e
}

var (
	ErrNotFound         = errors.New("event not found")
	ErrCapacityExceeded = errors.New("event is full")
)

// StoreError marks a persistence failure, as opposed to a business outcome.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// EventRepository is the Event Store. Every backend must implement
// AppendRegistration as one atomic conditional write.
type EventRepository interface {
	GetAll(ctx context.Context) ([]Event, error)
	GetByID(ctx context.Context, id string) (Event, error)
	Create(ctx context.Context, e *Event) error
	// Save overwrites the stored event with e, last writer wins. On success
	// e is the stored form, so there is nothing separate to return.
	Save(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id string) (Event, error)
	// AppendRegistration pushes r iff the event has fewer registrations than
	// its capacity. It returns ErrNotFound or ErrCapacityExceeded otherwise.
	AppendRegistration(ctx context.Context, id string, r Registration) (Event, error)
	Ping(ctx context.Context) error
}
