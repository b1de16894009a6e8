// Package excel backs the row table with an operator-authored .xlsx
// workbook, the same shape the booking sheets have always had: one
// header row, one booking request per data row, status column styled per
// state so progress is visible at a glance.
package excel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/example/dtbook/internal/booking"
	"github.com/example/dtbook/internal/rowstore"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Header titles expected on row 1. Column order is free; columns are
// located by title.
const (
	headerIdentity     = "Identity"
	headerContactName  = "Contact Name"
	headerContactPhone = "Contact Phone"
	headerContactEmail = "Contact Email"
	headerTestType     = "Test Type"
	headerRegion       = "Region"
	headerCentre       = "Centre"
	headerCardNumber   = "Card Number"
	headerExpiryMonth  = "Expiry Month"
	headerExpiryYear   = "Expiry Year"
	headerCVN          = "CVN"
	headerStartDate    = "Start Date"
	headerEndDate      = "End Date"
	headerDailyStart   = "Daily Start"
	headerDailyEnd     = "Daily End"
	headerEnabled      = "Enabled"
	headerStatus       = "Status"
)

var requiredHeaders = []string{
	headerIdentity, headerContactName, headerContactPhone, headerContactEmail,
	headerTestType, headerRegion, headerCentre,
	headerCardNumber, headerExpiryMonth, headerExpiryYear, headerCVN,
	headerStartDate, headerEndDate, headerDailyStart, headerDailyEnd,
	headerEnabled, headerStatus,
}

// Fill and font colours per status, carried over from the original
// workbook conventions.
var statusStyles = map[booking.Status]struct{ fill, font string }{
	booking.StatusPending:    {fill: "E6E6E6", font: "000000"},
	booking.StatusRunning:    {fill: "FFFFCC", font: "FF6600"},
	booking.StatusSucceeded:  {fill: "E6F3FF", font: "0066CC"},
	booking.StatusFailed:     {fill: "FFE6E6", font: "CC0000"},
	booking.StatusInvalid:    {fill: "F2F2F2", font: "666666"},
	booking.StatusSuperseded: {fill: "FFF2CC", font: "FF9900"},
}

// Store reads and writes the workbook. The file is reopened per
// operation and saved after every write, so each row update lands on
// disk independently; a failed save fails only that row's update.
type Store struct {
	path string
	log  *zap.Logger

	mu   sync.Mutex
	cols map[string]int // header title -> 1-based column
}

func New(path string, log *zap.Logger) *Store {
	return &Store{path: path, log: log}
}

// Init verifies the header row and resets every row whose status is
// outside the closed set (including empty) to Pending. Recognized
// statuses are left alone.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, sheet, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	cells, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}
	if err := s.locateHeadersLocked(cells); err != nil {
		return err
	}

	statusCol := s.cols[headerStatus]
	changed := 0
	for r := 2; r <= len(cells); r++ {
		raw := cellAt(cells, r, statusCol)
		norm := rowstore.NormalizeStatus(raw)
		if string(norm) == strings.TrimSpace(raw) {
			continue
		}
		if err := writeStatusCell(f, sheet, statusCol, r, norm); err != nil {
			return err
		}
		changed++
	}
	if changed > 0 {
		if err := f.Save(); err != nil {
			return fmt.Errorf("save workbook: %w", err)
		}
	}
	s.log.Info("workbook initialized",
		zap.String("path", s.path), zap.Int("rows_reset", changed))
	return nil
}

func (s *Store) LoadRows(ctx context.Context) ([]booking.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, sheet, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	if err := s.locateHeadersLocked(cells); err != nil {
		return nil, err
	}

	var rows []booking.Row
	for r := 2; r <= len(cells); r++ {
		get := func(header string) string {
			return strings.TrimSpace(cellAt(cells, r, s.cols[header]))
		}
		rows = append(rows, booking.Row{
			Index:      r,
			Identity:   get(headerIdentity),
			StartDate:  get(headerStartDate),
			EndDate:    get(headerEndDate),
			DailyStart: get(headerDailyStart),
			DailyEnd:   get(headerDailyEnd),
			Enable:     get(headerEnabled),
			Status:     rowstore.NormalizeStatus(get(headerStatus)),
			Details: booking.Details{
				ContactName:  get(headerContactName),
				ContactPhone: get(headerContactPhone),
				ContactEmail: get(headerContactEmail),
				TestType:     get(headerTestType),
				Region:       get(headerRegion),
				Centre:       get(headerCentre),
				CardNumber:   get(headerCardNumber),
				ExpiryMonth:  get(headerExpiryMonth),
				ExpiryYear:   get(headerExpiryYear),
				CVN:          get(headerCVN),
			},
		})
	}
	return rows, nil
}

func (s *Store) SetStatus(ctx context.Context, index int, status booking.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, sheet, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.ensureHeadersLocked(f, sheet); err != nil {
		return err
	}
	if err := writeStatusCell(f, sheet, s.cols[headerStatus], index, status); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (s *Store) SetEnableFlag(ctx context.Context, index int, flag booking.EnableFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, sheet, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.ensureHeadersLocked(f, sheet); err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(s.cols[headerEnabled], index)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, string(flag)); err != nil {
		return fmt.Errorf("write %s: %w", cell, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (s *Store) open() (*excelize.File, string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, "", fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	return f, f.GetSheetName(0), nil
}

// locateHeadersLocked builds the title -> column map from the first row
// and fails listing every missing required header at once.
func (s *Store) locateHeadersLocked(cells [][]string) error {
	if len(cells) == 0 {
		return fmt.Errorf("workbook %s has no header row", s.path)
	}
	cols := make(map[string]int, len(requiredHeaders))
	for i, h := range cells[0] {
		cols[strings.TrimSpace(h)] = i + 1
	}
	var missing []string
	for _, h := range requiredHeaders {
		if cols[h] == 0 {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("workbook %s missing headers: %s", s.path, strings.Join(missing, ", "))
	}
	s.cols = cols
	return nil
}

func (s *Store) ensureHeadersLocked(f *excelize.File, sheet string) error {
	if s.cols != nil {
		return nil
	}
	cells, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}
	return s.locateHeadersLocked(cells)
}

func writeStatusCell(f *excelize.File, sheet string, col, row int, status booking.Status) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, string(status)); err != nil {
		return fmt.Errorf("write %s: %w", cell, err)
	}
	st := statusStyles[status]
	styleID, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{st.fill}},
		Font: &excelize.Font{Color: st.font},
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, styleID)
}

// cellAt indexes the ragged matrix GetRows returns; missing trailing
// cells read as empty.
func cellAt(cells [][]string, row, col int) string {
	if row-1 >= len(cells) || col-1 >= len(cells[row-1]) || col < 1 {
		return ""
	}
	return cells[row-1][col-1]
}
