package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func novemberWindow() Window {
	return Window{
		StartDate:  time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
		DailyStart: TimeOfDay{Hour: 8, Minute: 0},
		DailyEnd:   TimeOfDay{Hour: 17, Minute: 0},
	}
}

func TestParseCandidates(t *testing.T) {
	labels := []string{
		"Monday, 03 November 2025 09:00 AM",
		"not a slot at all",
		"  Tuesday, 04 November 2025 10:30 AM  ",
	}
	slots := ParseCandidates(labels, zap.NewNop())
	require.Len(t, slots, 2)
	require.Equal(t, "Monday, 03 November 2025 09:00 AM", slots[0].Label)
	require.Equal(t, time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC), slots[0].At)
	require.Equal(t, "Tuesday, 04 November 2025 10:30 AM", slots[1].Label)
}

func TestSelectEarliestPicksEarliestRegardlessOfOrder(t *testing.T) {
	slots := ParseCandidates([]string{
		"Wednesday, 12 November 2025 02:00 PM",
		"Monday, 03 November 2025 09:00 AM",
		"Friday, 07 November 2025 08:30 AM",
	}, zap.NewNop())

	got, ok := SelectEarliest(slots, novemberWindow())
	require.True(t, ok)
	require.Equal(t, "Monday, 03 November 2025 09:00 AM", got.Label)
}

func TestSelectEarliestInclusiveDailyEnd(t *testing.T) {
	// 05:00 PM sits exactly on the daily end and must qualify.
	slots := ParseCandidates([]string{"Wednesday, 05 November 2025 05:00 PM"}, zap.NewNop())
	got, ok := SelectEarliest(slots, novemberWindow())
	require.True(t, ok)
	require.Equal(t, "Wednesday, 05 November 2025 05:00 PM", got.Label)

	slots = ParseCandidates([]string{"Wednesday, 05 November 2025 05:01 PM"}, zap.NewNop())
	_, ok = SelectEarliest(slots, novemberWindow())
	require.False(t, ok)
}

func TestSelectEarliestInclusiveDateBounds(t *testing.T) {
	w := novemberWindow()
	slots := ParseCandidates([]string{
		"Saturday, 01 November 2025 09:00 AM",
		"Sunday, 30 November 2025 09:00 AM",
		"Friday, 31 October 2025 09:00 AM",
		"Monday, 01 December 2025 09:00 AM",
	}, zap.NewNop())

	got, ok := SelectEarliest(slots, w)
	require.True(t, ok)
	require.Equal(t, "Saturday, 01 November 2025 09:00 AM", got.Label)

	inWindow := 0
	for _, s := range slots {
		if w.Contains(s.At) {
			inWindow++
		}
	}
	require.Equal(t, 2, inWindow)
}

func TestSelectEarliestTieKeepsFirstSeen(t *testing.T) {
	// Duplicate timestamps can appear; the first-seen row wins.
	a := Slot{At: time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC), Label: "first"}
	b := Slot{At: a.At, Label: "second"}
	got, ok := SelectEarliest([]Slot{a, b}, novemberWindow())
	require.True(t, ok)
	require.Equal(t, "first", got.Label)
}

func TestSelectEarliestEmpty(t *testing.T) {
	_, ok := SelectEarliest(nil, novemberWindow())
	require.False(t, ok)
}
