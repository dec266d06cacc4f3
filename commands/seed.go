package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"eventapi/db"
	"eventapi/services"
)

func seedCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a sample event",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log := setupLogger(os.Stderr, cfg.Env, cfg.Log.Level)

			events, closeStore, err := db.OpenEventStore(cmd.Context(), cfg.Store, log)
			if err != nil {
				return err
			}
			defer closeStore()

			e, err := services.NewEventAdmin(log, events, nil).CreateEvent(cmd.Context(), sampleEvent(time.Now()))
			if err != nil {
				return err
			}
			log.Info("sample event added", slog.String("id", e.ID))
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return nil
		},
	}
}

func sampleEvent(now time.Time) services.CreateEventInput {
	return services.CreateEventInput{
		Title:       "Test Event",
		Description: "This is a test event.",
		Date:        now.UTC().Format(time.RFC3339),
		Location:    "Test Location",
		Capacity:    50,
	}
}
