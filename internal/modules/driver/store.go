// README: Driver/agency store; profiles in Postgres, duty pool in Redis.
package driver

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"tamarind/internal/types"
)

var ErrAgencyNotFound = errors.New("agency not found")

// dutyKeyTTL caps how long a day's duty set lives; routes resolve same-day.
const dutyKeyTTL = 48 * time.Hour

type Store interface {
	ListDrivers(ctx context.Context) ([]Driver, error)
	GetAgency(ctx context.Context, id types.ID) (*Agency, error)
	// OnDuty returns the drivers who marked themselves available for date.
	OnDuty(ctx context.Context, date types.Date) ([]types.ID, error)
	SetDuty(ctx context.Context, date types.Date, driverID types.ID, on bool) error
}

// PGStore reads profiles from Postgres and keeps the per-date duty pool in a
// Redis set.
type PGStore struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewPGStore(db *pgxpool.Pool, redis *redis.Client) *PGStore {
	return &PGStore{db: db, redis: redis}
}

func dutyKey(date types.Date) string {
	return "drivers:onduty:" + string(date)
}

func (s *PGStore) ListDrivers(ctx context.Context) ([]Driver, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, phone
        FROM profiles
        WHERE role = 'driver'
        ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Driver
	for rows.Next() {
		var d Driver
		var phone *string
		if err := rows.Scan(&d.ID, &d.Name, &phone); err != nil {
			return nil, err
		}
		if phone != nil {
			d.Phone = *phone
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PGStore) GetAgency(ctx context.Context, id types.ID) (*Agency, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, name, COALESCE(commission_rate, 0)
        FROM profiles
        WHERE id = $1 AND role = 'agency'`, string(id),
	)
	var a Agency
	err := row.Scan(&a.ID, &a.Name, &a.CommissionRate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAgencyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PGStore) OnDuty(ctx context.Context, date types.Date) ([]types.ID, error) {
	members, err := s.redis.SMembers(ctx, dutyKey(date)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(members))
	for i, m := range members {
		ids[i] = types.ID(m)
	}
	return ids, nil
}

func (s *PGStore) SetDuty(ctx context.Context, date types.Date, driverID types.ID, on bool) error {
	key := dutyKey(date)
	if !on {
		return s.redis.SRem(ctx, key, string(driverID)).Err()
	}
	pipe := s.redis.Pipeline()
	pipe.SAdd(ctx, key, string(driverID))
	pipe.Expire(ctx, key, dutyKeyTTL)
	_, err := pipe.Exec(ctx)
	return err
}
