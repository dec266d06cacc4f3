package services

import (
	"errors"
	"log/slog"

	"eventapi/models"
	"eventapi/utils"
)

// Observer receives outcome counts. metrics.Metrics implements it.
type Observer interface {
	Registration(outcome string)
	StoreFailure(op string)
}

type nopObserver struct{}

func (nopObserver) Registration(string) {}
func (nopObserver) StoreFailure(string) {}

const (
	OutcomeOK       = "ok"
	OutcomeFull     = "full"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// logStoreFailure is the one place infrastructure failures get logged at
// error level.
func logStoreFailure(log *slog.Logger, obs Observer, msg string, err error) {
	var se *models.StoreError
	if errors.As(err, &se) {
		obs.StoreFailure(se.Op)
	} else {
		obs.StoreFailure("unknown")
	}
	log.Error(msg, utils.ErrAttr(err))
}
