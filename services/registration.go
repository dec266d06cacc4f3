package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventapi/models"
	"eventapi/utils"
)

// Registrar is the only code path that grows an event's registrations.
type Registrar struct {
	log    *slog.Logger
	events models.EventRepository
	obs    Observer
	now    func() time.Time
}

func NewRegistrar(log *slog.Logger, events models.EventRepository, obs Observer) *Registrar {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Registrar{log: log, events: events, obs: obs, now: time.Now}
}

type RegisterInput struct {
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`

	// AttendDate is optional; when set it must parse like an event date.
	AttendDate string `json:"attendDate"`
}

// Register appends a registration iff the event still has a free slot. The
// capacity check and the append happen in a single store write.
func (r *Registrar) Register(ctx context.Context, eventID string, in RegisterInput) (models.Event, error) {
	const op = "services.Registrar.Register"
	log := r.log.With(slog.String("op", op), slog.String("event_id", eventID))

	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.AttendDate = strings.TrimSpace(in.AttendDate)

	if err := validateStruct(in); err != nil {
		r.obs.Registration(OutcomeInvalid)
		log.Info("registration rejected", utils.ErrAttr(err))
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	reg := models.Registration{
		Name:             in.Name,
		PhoneNumber:      in.PhoneNumber,
		RegistrationDate: r.now().UTC(),
	}
	if in.AttendDate != "" {
		t, err := parseTime(in.AttendDate)
		if err != nil {
			r.obs.Registration(OutcomeInvalid)
			log.Info("registration rejected", utils.ErrAttr(err))
			return models.Event{}, fmt.Errorf("%s: %w", op, invalidField("attendDate", "must be a date such as 2025-01-01"))
		}
		reg.AttendDate = &t
	}

	e, err := r.events.AppendRegistration(ctx, eventID, reg)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound):
		r.obs.Registration(OutcomeNotFound)
		log.Info("registration for unknown event")
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, models.ErrCapacityExceeded):
		r.obs.Registration(OutcomeFull)
		log.Info("registration rejected: event is full")
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	default:
		r.obs.Registration(OutcomeError)
		logStoreFailure(log, r.obs, "failed to append registration", err)
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	r.obs.Registration(OutcomeOK)
	log.Info("registration recorded",
		slog.Int("registrations", len(e.Registrations)),
		slog.Int("capacity", e.Capacity))
	return e, nil
}
