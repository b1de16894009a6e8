package booking

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// SlotLabelLayout is the display format the portal uses in its slot
// table, e.g. "Monday, 03 November 2025 09:00 AM".
const SlotLabelLayout = "Monday, 02 January 2006 03:04 PM"

// Slot is one offered appointment time with its display label.
type Slot struct {
	At    time.Time
	Label string
}

// ParseCandidates parses raw slot labels scraped from the portal.
// Malformed labels are logged and skipped individually; they never abort
// the scan.
func ParseCandidates(labels []string, log *zap.Logger) []Slot {
	out := make([]Slot, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		at, err := time.Parse(SlotLabelLayout, l)
		if err != nil {
			log.Warn("skipping unparsable slot label", zap.String("label", l), zap.Error(err))
			continue
		}
		out = append(out, Slot{At: at, Label: l})
	}
	return out
}

// SelectEarliest returns the earliest slot inside the window. Ties keep
// the first-seen candidate; the portal does not guarantee unique
// timestamps. ok is false when nothing qualifies, which is the normal
// no-inventory outcome, not an error.
func SelectEarliest(slots []Slot, w Window) (Slot, bool) {
	var best Slot
	found := false
	for _, s := range slots {
		if !w.Contains(s.At) {
			continue
		}
		if !found || s.At.Before(best.At) {
			best = s
			found = true
		}
	}
	return best, found
}
