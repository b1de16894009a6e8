package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validRow() Row {
	return Row{
		Index:      2,
		Identity:   "012345678",
		StartDate:  "2025-11-01",
		EndDate:    "2025-11-30",
		DailyStart: "08:00",
		DailyEnd:   "17:00",
		Enable:     "Yes",
		Details:    Details{ContactName: "Alex Ng", ContactPhone: "0400000000"},
	}
}

func TestValidateFullConfig(t *testing.T) {
	cfg, errs := Validate(validRow())
	require.Empty(t, errs)
	require.Equal(t, "012345678", cfg.Identity)
	require.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), cfg.Window.StartDate)
	require.Equal(t, TimeOfDay{Hour: 17, Minute: 0}, cfg.Window.DailyEnd)
	require.Equal(t, "Alex Ng", cfg.Details.ContactName)
}

func TestValidateUnknownFlag(t *testing.T) {
	row := validRow()
	row.Enable = "maybe"
	_, errs := Validate(row)
	require.Len(t, errs, 1)
	require.Equal(t, "Enabled", errs[0].Field)
}

func TestValidateDisabledRowSkipsDateChecks(t *testing.T) {
	// Paused rows may carry garbage in the date fields.
	row := validRow()
	row.Enable = "No"
	row.StartDate = "garbage"
	row.DailyEnd = "also garbage"
	cfg, errs := Validate(row)
	require.Empty(t, errs)
	require.Equal(t, "012345678", cfg.Identity)
	require.True(t, cfg.Window.StartDate.IsZero())
}

func TestValidateAccumulatesAllErrors(t *testing.T) {
	row := validRow()
	row.StartDate = "next tuesday"
	row.DailyStart = "18:00" // after DailyEnd 17:00
	_, errs := Validate(row)
	require.Len(t, errs, 2)
	fields := []string{errs[0].Field, errs[1].Field}
	require.Contains(t, fields, "Start Date")
	require.Contains(t, fields, "Daily Start")
}

func TestValidateStartAfterEnd(t *testing.T) {
	row := validRow()
	row.StartDate = "2025-12-01"
	_, errs := Validate(row)
	require.Len(t, errs, 1)
	require.Equal(t, "Start Date", errs[0].Field)
	require.Contains(t, errs[0].Reason, "End Date")
}

func TestValidateTruncatesSpreadsheetSuffixes(t *testing.T) {
	// Datetime-formatted cells read back with trailing components.
	row := validRow()
	row.StartDate = "2025-11-01 00:00:00"
	row.DailyStart = "08:30:00"
	cfg, errs := Validate(row)
	require.Empty(t, errs)
	require.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), cfg.Window.StartDate)
	require.Equal(t, TimeOfDay{Hour: 8, Minute: 30}, cfg.Window.DailyStart)
}
