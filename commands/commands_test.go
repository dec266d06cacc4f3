package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"eventapi/config"
	"eventapi/models"
)

func sampleViews() []models.AdminEventView {
	eventDate := time.Date(2025, 7, 4, 18, 0, 0, 0, time.UTC)
	attend := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	regAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	return []models.AdminEventView{
		{
			EventTitle: "Fireworks",
			EventDate:  eventDate,
			Attendees: []models.Attendee{
				{Name: "Ann", PhoneNumber: "111", AttendDate: &attend, RegistrationDate: regAt},
				{Name: "Bob, Jr.", PhoneNumber: "222", RegistrationDate: regAt},
			},
		},
		{EventTitle: "Empty", EventDate: eventDate, Attendees: []models.Attendee{}},
	}
}

var wantAttendeeRows = [][]string{
	{"Event Title", "Event Date", "Name", "Phone Number", "Attendance Date", "Registration Date"},
	{"Fireworks", "2025-07-04", "Ann", "111", "2025-07-04", "2025-06-01"},
	{"Fireworks", "2025-07-04", "Bob, Jr.", "222", "", "2025-06-01"},
	{"Empty", "2025-07-04", "", "", "", ""},
}

func TestWriteAttendeesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAttendeesCSV(&buf, sampleViews()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, wantAttendeeRows, rows)
}

func TestWriteAttendeesXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAttendeesXLSX(&buf, sampleViews()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{"Events & Attendees"}, f.GetSheetList())
	for r, row := range wantAttendeeRows {
		for c, want := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			got, err := f.GetCellValue("Events & Attendees", cell)
			require.NoError(t, err)
			assert.Equal(t, want, got, cell)
		}
	}
	next, err := f.GetCellValue("Events & Attendees", "A5")
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestSampleEvent(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	in := sampleEvent(now)
	assert.Equal(t, "Test Event", in.Title)
	assert.Equal(t, 50, in.Capacity)
	assert.Equal(t, "2025-01-02T03:04:05Z", in.Date)
}

func TestSetupLogger(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		env, level string
		debug      bool
		json       bool
	}{
		{config.EnvLocal, "", true, false},
		{config.EnvDev, "", true, true},
		{config.EnvProd, "", false, true},
		{config.EnvProd, "debug", true, true},
		{config.EnvLocal, "warn", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := setupLogger(&buf, tt.env, tt.level)
			assert.Equal(t, tt.debug, log.Enabled(ctx, slog.LevelDebug))

			log.Error("hello")
			assert.Equal(t, tt.json, strings.HasPrefix(buf.String(), "{"), buf.String())
		})
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "eventapi version "+Version+"\n", out.String())
}

func TestSeedAndExport_MemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"seed"})
	require.NoError(t, cmd.Execute())
	assert.NotEmpty(t, strings.TrimSpace(out.String()))

	// each command opens its own memory store, so export sees no events
	out.Reset()
	cmd = rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"export", "--format=csv", "--out=-"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Event Title,Event Date,Name,Phone Number,Attendance Date,Registration Date\n", out.String())

	path := filepath.Join(t.TempDir(), "events_attendees.xlsx")
	cmd = rootCmd()
	cmd.SetArgs([]string{"export", "--out", path})
	require.NoError(t, cmd.Execute())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	title, err := f.GetCellValue("Events & Attendees", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Event Title", title)
}

func TestExport_UnknownFormat(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", "--format=pdf", "--out=-"})
	assert.Error(t, cmd.Execute())
}
