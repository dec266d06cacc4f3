package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"eventapi/models"
	"eventapi/utils"
)

// EventAdmin covers the event lifecycle and the read views built on it.
type EventAdmin struct {
	log    *slog.Logger
	events models.EventRepository
	obs    Observer
}

func NewEventAdmin(log *slog.Logger, events models.EventRepository, obs Observer) *EventAdmin {
	if obs == nil {
		obs = nopObserver{}
	}
	return &EventAdmin{log: log, events: events, obs: obs}
}

type CreateEventInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Capacity    int    `json:"capacity" validate:"required,gt=0"`
	Image       string `json:"image"`
}

func (in *CreateEventInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)
	in.Location = strings.TrimSpace(in.Location)
	in.Image = strings.TrimSpace(in.Image)
}

func (a *EventAdmin) CreateEvent(ctx context.Context, in CreateEventInput) (models.Event, error) {
	const op = "services.EventAdmin.CreateEvent"
	log := a.log.With(slog.String("op", op))

	in.trim()
	if err := validateStruct(in); err != nil {
		log.Info("event rejected", utils.ErrAttr(err))
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	date, err := parseTime(in.Date)
	if err != nil {
		log.Info("event rejected", utils.ErrAttr(err))
		return models.Event{}, fmt.Errorf("%s: %w", op, invalidField("date", "must be a date such as 2025-01-01 or 2025-01-01T18:00:00Z"))
	}

	e := models.Event{
		Title:         in.Title,
		Description:   in.Description,
		Date:          date,
		Location:      in.Location,
		Capacity:      in.Capacity,
		Image:         in.Image,
		Registrations: []models.Registration{},
	}
	if err := a.events.Create(ctx, &e); err != nil {
		logStoreFailure(log, a.obs, "failed to create event", err)
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("event created", slog.String("id", e.ID), slog.String("title", e.Title), slog.Int("capacity", e.Capacity))
	return e, nil
}

func (a *EventAdmin) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "services.EventAdmin.ListEvents"
	events, err := a.events.GetAll(ctx)
	if err != nil {
		logStoreFailure(a.log.With(slog.String("op", op)), a.obs, "failed to list events", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

func (a *EventAdmin) GetEvent(ctx context.Context, id string) (models.Event, error) {
	const op = "services.EventAdmin.GetEvent"
	e, err := a.events.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			logStoreFailure(a.log.With(slog.String("op", op)), a.obs, "failed to get event", err)
		}
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// ListEventsForAdmin returns one reporting row set per event, in store order.
func (a *EventAdmin) ListEventsForAdmin(ctx context.Context) ([]models.AdminEventView, error) {
	const op = "services.EventAdmin.ListEventsForAdmin"
	events, err := a.events.GetAll(ctx)
	if err != nil {
		logStoreFailure(a.log.With(slog.String("op", op)), a.obs, "failed to list events", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]models.AdminEventView, 0, len(events))
	for _, e := range events {
		views = append(views, models.NewAdminEventView(e))
	}
	return views, nil
}

// DeleteEvent removes the event and every registration in it. Deleting an
// id twice gives ErrNotFound the second time.
func (a *EventAdmin) DeleteEvent(ctx context.Context, id string) (models.Event, error) {
	const op = "services.EventAdmin.DeleteEvent"
	log := a.log.With(slog.String("op", op), slog.String("id", id))

	e, err := a.events.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Info("event to delete not found")
		} else {
			logStoreFailure(log, a.obs, "failed to delete event", err)
		}
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("event deleted", slog.String("title", e.Title), slog.Int("registrations", len(e.Registrations)))
	return e, nil
}

// Ping reports whether the store is reachable.
func (a *EventAdmin) Ping(ctx context.Context) error {
	return a.events.Ping(ctx)
}
