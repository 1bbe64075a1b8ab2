package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"converter/internal/domain"
)

var _ domain.HistoryRepository = (*DB)(nil)

// AddConversion inserts a conversion for userID.
func (d *DB) AddConversion(ctx context.Context, userID int64, rec domain.ConversionRecord) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO conversions(user_id, input, init_num, init_unit, return_num, return_unit, created_at) VALUES($1, $2, $3, $4, $5, $6, $7) RETURNING id;",
		userID, rec.Input, rec.InitNum, string(rec.InitUnit), rec.ReturnNum, rec.ReturnUnit, rec.CreatedAt.UTC(),
	).Scan(&id)
	return id, err
}

// ListRecentConversions returns the user's most recent conversions up to limit.
func (d *DB) ListRecentConversions(ctx context.Context, userID int64, limit int) ([]domain.ConversionRecord, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, user_id, input, init_num, init_unit, return_num, return_unit, created_at FROM conversions WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2;",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ConversionRecord, 0)
	for rows.Next() {
		var (
			c    domain.ConversionRecord
			unit string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Input, &c.InitNum, &unit, &c.ReturnNum, &c.ReturnUnit, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.InitUnit = domain.Unit(unit)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteLatestConversion removes the user's most recent conversion.
func (d *DB) DeleteLatestConversion(ctx context.Context, userID int64) (bool, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"DELETE FROM conversions WHERE id = (SELECT id FROM conversions WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1) RETURNING id;",
		userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UnitCountsForLocalDay counts the user's conversions per source unit on a local day.
func (d *DB) UnitCountsForLocalDay(ctx context.Context, userID int64, localDay string) (map[domain.Unit]int, error) {
	dayStart, err := time.ParseInLocation("2006-01-02", localDay, time.Local)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := d.sql.QueryContext(ctx,
		"SELECT init_unit, COUNT(1) FROM conversions WHERE user_id = $1 AND created_at >= $2 AND created_at < $3 GROUP BY init_unit;",
		userID, dayStart.UTC(), dayEnd.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Unit]int)
	for rows.Next() {
		var (
			unit string
			n    int
		)
		if err := rows.Scan(&unit, &n); err != nil {
			return nil, err
		}
		counts[domain.Unit(unit)] = n
	}
	return counts, rows.Err()
}
