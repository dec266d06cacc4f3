package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"eventapi/db"
	"eventapi/models"
	"eventapi/services"
)

const attendeesSheet = "Events & Attendees"

func exportCmd(load loader) *cobra.Command {
	var (
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every event's attendees as a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			var write func(io.Writer, []models.AdminEventView) error
			switch format {
			case "xlsx":
				write = writeAttendeesXLSX
			case "csv":
				write = writeAttendeesCSV
			default:
				return fmt.Errorf("unknown format %q (want xlsx or csv)", format)
			}
			if out == "" {
				out = "events_attendees." + format
			}

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

			views, err := services.NewEventAdmin(log, events, nil).ListEventsForAdmin(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return write(w, views)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", `Output file, "-" for stdout (default events_attendees.<format>)`)
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "xlsx or csv")
	return cmd
}

var attendeeColumns = []string{
	"Event Title", "Event Date", "Name", "Phone Number", "Attendance Date", "Registration Date",
}

// attendeeRows flattens the projection to one row per attendee. An event
// nobody registered for still gets a row, with the attendee columns empty.
func attendeeRows(views []models.AdminEventView) [][]string {
	var rows [][]string
	for _, v := range views {
		eventDate := formatDate(&v.EventDate)
		if len(v.Attendees) == 0 {
			rows = append(rows, []string{v.EventTitle, eventDate, "", "", "", ""})
			continue
		}
		for _, a := range v.Attendees {
			rows = append(rows, []string{
				v.EventTitle,
				eventDate,
				a.Name,
				a.PhoneNumber,
				formatDate(a.AttendDate),
				formatDate(&a.RegistrationDate),
			})
		}
	}
	return rows
}

// writeAttendeesXLSX writes a workbook with a single attendees sheet.
func writeAttendeesXLSX(w io.Writer, views []models.AdminEventView) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), attendeesSheet); err != nil {
		return err
	}
	rows := append([][]string{attendeeColumns}, attendeeRows(views)...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(attendeesSheet, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetPanes(attendeesSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func writeAttendeesCSV(w io.Writer, views []models.AdminEventView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(attendeeColumns); err != nil {
		return err
	}
	return cw.WriteAll(attendeeRows(views))
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
