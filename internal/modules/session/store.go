// README: Calendar override store backed by PostgreSQL.
package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tamarind/internal/types"
)

// Store persists calendar overrides and the seeded session catalog.
type Store interface {
	GetOverride(ctx context.Context, date types.Date, sessionID string) (*CalendarOverride, error)
	UpsertOverride(ctx context.Context, ov CalendarOverride) error
	DeleteOverride(ctx context.Context, date types.Date, sessionID string) error
	SeedSessions(ctx context.Context, sessions []Session) error
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) GetOverride(ctx context.Context, date types.Date, sessionID string) (*CalendarOverride, error) {
	row := s.db.QueryRow(ctx, `
        SELECT date, session_id, is_closed, closure_reason, custom_capacity
        FROM class_calendar_overrides
        WHERE date = $1 AND session_id = $2`,
		string(date), sessionID,
	)
	var ov CalendarOverride
	var reason *string
	err := row.Scan(&ov.Date, &ov.SessionID, &ov.IsClosed, &reason, &ov.CustomCapacity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if reason != nil {
		ov.ClosureReason = *reason
	}
	return &ov, nil
}

func (s *PGStore) UpsertOverride(ctx context.Context, ov CalendarOverride) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO class_calendar_overrides (date, session_id, is_closed, closure_reason, custom_capacity)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (date, session_id) DO UPDATE
        SET is_closed = EXCLUDED.is_closed,
            closure_reason = EXCLUDED.closure_reason,
            custom_capacity = EXCLUDED.custom_capacity`,
		string(ov.Date), ov.SessionID, ov.IsClosed, ov.ClosureReason, ov.CustomCapacity,
	)
	return err
}

func (s *PGStore) DeleteOverride(ctx context.Context, date types.Date, sessionID string) error {
	_, err := s.db.Exec(ctx, `
        DELETE FROM class_calendar_overrides
        WHERE date = $1 AND session_id = $2`,
		string(date), sessionID,
	)
	return err
}

func (s *PGStore) SeedSessions(ctx context.Context, sessions []Session) error {
	for _, sess := range sessions {
		_, err := s.db.Exec(ctx, `
            INSERT INTO class_sessions (id, label, base_price, currency, max_capacity)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (id) DO UPDATE
            SET label = EXCLUDED.label,
                base_price = EXCLUDED.base_price,
                currency = EXCLUDED.currency,
                max_capacity = EXCLUDED.max_capacity`,
			sess.ID, sess.Label, sess.BasePrice.Amount, sess.BasePrice.Currency, sess.BaseCapacity,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
