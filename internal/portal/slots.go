package portal

import (
	"fmt"
	"strings"

	"github.com/example/dtbook/internal/booking"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const (
	slotTableID     = "slotSelectionForm:slotTable"
	slotTableBodyID = "slotSelectionForm:slotTable_data"
	slotSelectionID = "slotSelectionForm:slotTable_selection"
)

// chooseSlot scrapes the offered slot table, picks the earliest slot
// inside the window, and marks it selected the way the PrimeFaces table
// expects: click the row, then set the hidden selection field to the
// row key and fire its change event. ok is false when nothing in the
// table qualifies, the normal no-inventory outcome.
func (e *Executor) chooseSlot(page *rod.Page, w booking.Window) (booking.Slot, bool, error) {
	if _, err := e.element(page, byID(slotTableID)); err != nil {
		return booking.Slot{}, false, fmt.Errorf("slot table: %w", err)
	}
	trs, err := page.Timeout(e.cfg.StepTimeout).Elements(`tbody[id="` + slotTableBodyID + `"] > tr`)
	if err != nil {
		return booking.Slot{}, false, fmt.Errorf("slot rows: %w", err)
	}

	labels := make([]string, 0, len(trs))
	handles := make([]*rod.Element, 0, len(trs))
	for _, tr := range trs {
		lbl, err := tr.Element("td:nth-child(2) label")
		if err != nil {
			continue
		}
		txt, err := lbl.Text()
		if err != nil {
			continue
		}
		labels = append(labels, strings.TrimSpace(txt))
		handles = append(handles, tr)
	}

	candidates := booking.ParseCandidates(labels, e.log)
	slot, ok := booking.SelectEarliest(candidates, w)
	if !ok {
		e.log.Info("no offered slot inside the requested window",
			zap.Int("offered", len(labels)))
		return booking.Slot{}, false, nil
	}

	var target *rod.Element
	for i, l := range labels {
		if l == slot.Label {
			target = handles[i]
			break
		}
	}
	if target == nil {
		return booking.Slot{}, false, fmt.Errorf("chosen slot %q vanished from the table", slot.Label)
	}

	rk, err := target.Attribute("data-rk")
	if err != nil || rk == nil {
		return booking.Slot{}, false, fmt.Errorf("slot row missing data-rk key")
	}
	if err := target.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return booking.Slot{}, false, fmt.Errorf("activate slot row: %w", err)
	}

	hidden, err := e.element(page, byID(slotSelectionID))
	if err != nil {
		return booking.Slot{}, false, err
	}
	_, err = hidden.Eval(`(key) => {
		this.value = key;
		this.dispatchEvent(new Event('change', { bubbles: true }));
	}`, *rk)
	if err != nil {
		return booking.Slot{}, false, fmt.Errorf("commit slot selection: %w", err)
	}

	e.log.Info("selected earliest slot", zap.String("slot", slot.Label))
	return slot, true, nil
}
