package booking

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// FieldError is one validation failure on a row field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Reason }

// Validate checks a raw row and returns either a fully populated config
// or every failure found. It never stops at the first problem and never
// panics. Date and time fields are only examined when the row is enabled
// for dispatch; a paused or completed row may carry garbage in them.
func Validate(row Row) (ValidatedConfig, []FieldError) {
	var errs []FieldError

	flag := EnableFlag(strings.TrimSpace(row.Enable))
	if !flag.Known() {
		errs = append(errs, FieldError{
			Field:  "Enabled",
			Reason: fmt.Sprintf("must be Yes, No or Done (got %q)", row.Enable),
		})
	}
	if flag != FlagYes {
		if len(errs) > 0 {
			return ValidatedConfig{}, errs
		}
		return ValidatedConfig{Identity: row.Identity, Details: row.Details}, nil
	}

	start, startOK := parseDate("Start Date", row.StartDate, &errs)
	end, endOK := parseDate("End Date", row.EndDate, &errs)
	if startOK && endOK && start.After(end) {
		errs = append(errs, FieldError{Field: "Start Date", Reason: "must not be after End Date"})
	}

	dailyStart, dsOK := parseTimeOfDay("Daily Start", row.DailyStart, &errs)
	dailyEnd, deOK := parseTimeOfDay("Daily End", row.DailyEnd, &errs)
	if dsOK && deOK && dailyStart.After(dailyEnd) {
		errs = append(errs, FieldError{Field: "Daily Start", Reason: "must not be after Daily End"})
	}

	if len(errs) > 0 {
		return ValidatedConfig{}, errs
	}
	return ValidatedConfig{
		Identity: row.Identity,
		Window: Window{
			StartDate:  start,
			EndDate:    end,
			DailyStart: dailyStart,
			DailyEnd:   dailyEnd,
		},
		Details: row.Details,
	}, nil
}

// parseDate accepts "2006-01-02". Spreadsheet datetime cells carry a
// time suffix, so anything past the first ten bytes is dropped.
func parseDate(field, raw string, errs *[]FieldError) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		*errs = append(*errs, FieldError{
			Field:  field,
			Reason: fmt.Sprintf("not a date like 2025-11-25 (got %q)", raw),
		})
		return time.Time{}, false
	}
	return t, true
}

// parseTimeOfDay accepts "15:04", truncating a seconds suffix.
func parseTimeOfDay(field, raw string, errs *[]FieldError) (TimeOfDay, bool) {
	s := strings.TrimSpace(raw)
	if len(s) > len(timeLayout) {
		s = s[:len(timeLayout)]
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		*errs = append(*errs, FieldError{
			Field:  field,
			Reason: fmt.Sprintf("not a time like 08:30 (got %q)", raw),
		})
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, true
}
