package booking

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a single booking row. The set is
// closed; anything else found in the table is normalized to Pending at
// startup and never written by the engine.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusRunning    Status = "Running"
	StatusSucceeded  Status = "Succeeded"
	StatusFailed     Status = "Failed"
	StatusInvalid    Status = "Invalid"
	StatusSuperseded Status = "Superseded"
)

func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusRunning, StatusSucceeded, StatusFailed, StatusInvalid, StatusSuperseded:
		return true
	}
	return false
}

// EnableFlag is the operator-controlled dispatch switch on a row.
type EnableFlag string

const (
	FlagYes  EnableFlag = "Yes"
	FlagNo   EnableFlag = "No"
	FlagDone EnableFlag = "Done"
)

func (f EnableFlag) Known() bool {
	return f == FlagYes || f == FlagNo || f == FlagDone
}

// Details is the contact and payment bundle a row carries. The engine
// passes it through to the portal executor untouched.
type Details struct {
	ContactName  string
	ContactPhone string
	ContactEmail string
	TestType     string
	Region       string
	Centre       string
	CardNumber   string
	ExpiryMonth  string
	ExpiryYear   string
	CVN          string
}

// Row is one booking request as read from the row store. Date and time
// fields are kept raw here; Validate parses them.
type Row struct {
	Index    int    // stable position in the source table
	Identity string // e.g. licence number; not unique across rows

	StartDate  string
	EndDate    string
	DailyStart string
	DailyEnd   string

	Enable string
	Status Status

	Details Details
}

// ValidatedConfig is a row whose configuration passed validation. The
// window is zero when the row is not enabled for dispatch.
type ValidatedConfig struct {
	Identity string
	Window   Window
	Details  Details
}

// Result is the outcome of one portal attempt.
type Result struct {
	Booked    bool
	SlotLabel string
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) After(o TimeOfDay) bool { return t.Minutes() > o.Minutes() }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// Window is the inclusive date range and inclusive daily time window a
// slot must fall into to qualify.
type Window struct {
	StartDate  time.Time // date component only, UTC midnight
	EndDate    time.Time
	DailyStart TimeOfDay
	DailyEnd   TimeOfDay
}

// Contains reports whether at falls inside the window. Both the date
// range and the daily window are inclusive on both ends.
func (w Window) Contains(at time.Time) bool {
	d := DateOf(at)
	if d.Before(w.StartDate) || d.After(w.EndDate) {
		return false
	}
	tod := TimeOfDay{Hour: at.Hour(), Minute: at.Minute()}
	return tod.Minutes() >= w.DailyStart.Minutes() && tod.Minutes() <= w.DailyEnd.Minutes()
}

// DateOf truncates a timestamp to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
