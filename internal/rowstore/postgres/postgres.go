// Package postgres backs the row table with a bookings table, one
// record per position. Card number and CVN are encrypted at rest.
package postgres

import (
	"context"
	"fmt"

	"github.com/example/dtbook/internal/booking"
	"github.com/example/dtbook/internal/db"
	"github.com/example/dtbook/internal/secrets"
)

type Store struct {
	db  *db.DB
	box *secrets.Box
}

func New(d *db.DB, box *secrets.Box) *Store {
	return &Store{db: d, box: box}
}

const rowColumns = `position, identity,
start_date, end_date, daily_start, daily_end,
enable_flag, status,
contact_name, contact_phone, contact_email, test_type, region, centre,
card_number, expiry_month, expiry_year, cvn`

// Init resets rows holding a status outside the closed set to Pending.
// Recognized statuses survive restarts.
func (s *Store) Init(ctx context.Context) error {
	err := s.db.Exec(ctx, `
UPDATE bookings SET status=$1, updated_at=now()
WHERE status NOT IN ($2,$3,$4,$5,$6,$7)`,
		string(booking.StatusPending),
		string(booking.StatusPending), string(booking.StatusRunning),
		string(booking.StatusSucceeded), string(booking.StatusFailed),
		string(booking.StatusInvalid), string(booking.StatusSuperseded),
	)
	if err != nil {
		return fmt.Errorf("normalize statuses: %w", err)
	}
	return nil
}

func (s *Store) LoadRows(ctx context.Context) ([]booking.Row, error) {
	rows, err := s.db.Query(ctx, `SELECT `+rowColumns+` FROM bookings ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Row
	for rows.Next() {
		var r booking.Row
		var status string
		if err := rows.Scan(
			&r.Index, &r.Identity,
			&r.StartDate, &r.EndDate, &r.DailyStart, &r.DailyEnd,
			&r.Enable, &status,
			&r.Details.ContactName, &r.Details.ContactPhone, &r.Details.ContactEmail,
			&r.Details.TestType, &r.Details.Region, &r.Details.Centre,
			&r.Details.CardNumber, &r.Details.ExpiryMonth, &r.Details.ExpiryYear, &r.Details.CVN,
		); err != nil {
			return nil, err
		}
		r.Status = booking.Status(status)
		if r.Details.CardNumber, err = s.decrypt(r.Details.CardNumber); err != nil {
			return nil, fmt.Errorf("row %d card number: %w", r.Index, err)
		}
		if r.Details.CVN, err = s.decrypt(r.Details.CVN); err != nil {
			return nil, fmt.Errorf("row %d cvn: %w", r.Index, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SetStatus(ctx context.Context, index int, status booking.Status) error {
	return s.db.Exec(ctx,
		`UPDATE bookings SET status=$2, updated_at=now() WHERE position=$1`,
		index, string(status))
}

func (s *Store) SetEnableFlag(ctx context.Context, index int, flag booking.EnableFlag) error {
	return s.db.Exec(ctx,
		`UPDATE bookings SET enable_flag=$2, updated_at=now() WHERE position=$1`,
		index, string(flag))
}

// Upsert writes a full row; used by operators seeding the table.
func (s *Store) Upsert(ctx context.Context, r booking.Row) error {
	card, err := s.encrypt(r.Details.CardNumber)
	if err != nil {
		return err
	}
	cvn, err := s.encrypt(r.Details.CVN)
	if err != nil {
		return err
	}
	return s.db.Exec(ctx, `
INSERT INTO bookings (`+rowColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (position) DO UPDATE SET
  identity=EXCLUDED.identity,
  start_date=EXCLUDED.start_date, end_date=EXCLUDED.end_date,
  daily_start=EXCLUDED.daily_start, daily_end=EXCLUDED.daily_end,
  enable_flag=EXCLUDED.enable_flag, status=EXCLUDED.status,
  contact_name=EXCLUDED.contact_name, contact_phone=EXCLUDED.contact_phone,
  contact_email=EXCLUDED.contact_email, test_type=EXCLUDED.test_type,
  region=EXCLUDED.region, centre=EXCLUDED.centre,
  card_number=EXCLUDED.card_number, expiry_month=EXCLUDED.expiry_month,
  expiry_year=EXCLUDED.expiry_year, cvn=EXCLUDED.cvn,
  updated_at=now()`,
		r.Index, r.Identity,
		r.StartDate, r.EndDate, r.DailyStart, r.DailyEnd,
		r.Enable, string(r.Status),
		r.Details.ContactName, r.Details.ContactPhone, r.Details.ContactEmail,
		r.Details.TestType, r.Details.Region, r.Details.Centre,
		card, r.Details.ExpiryMonth, r.Details.ExpiryYear, cvn,
	)
}

func (s *Store) encrypt(v string) (string, error) {
	if v == "" || s.box == nil {
		return v, nil
	}
	return s.box.EncryptString(v)
}

func (s *Store) decrypt(v string) (string, error) {
	if v == "" || s.box == nil {
		return v, nil
	}
	return s.box.DecryptString(v)
}
