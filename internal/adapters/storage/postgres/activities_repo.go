package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-care-tracker/internal/domain/activities"
	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/platform/apperr"
)

const activityColumns = `id, pet_id, activity_type, value, notes, idempotency_key, logged_at, created_at`

type ActivitiesRepo struct {
	db *sql.DB
}

func NewActivitiesRepo(db *sql.DB) *ActivitiesRepo {
	return &ActivitiesRepo{db: db}
}

func (r *ActivitiesRepo) List(ctx context.Context, f activities.Filter) ([]activities.ActivityLog, error) {
	if len(f.PetIDs) == 0 {
		return []activities.ActivityLog{}, nil
	}

	// placeholders explícitos en vez de ANY($1): no depende del soporte de arrays del driver
	args := make([]any, 0, len(f.PetIDs)+2)
	ph := make([]string, 0, len(f.PetIDs))
	for _, id := range f.PetIDs {
		args = append(args, id)
		ph = append(ph, fmt.Sprintf("$%d", len(args)))
	}

	var q strings.Builder
	q.WriteString(`SELECT ` + activityColumns + ` FROM activity_logs WHERE pet_id IN (` + strings.Join(ph, ",") + `)`)
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		fmt.Fprintf(&q, ` AND logged_at >= $%d`, len(args))
	}
	q.WriteString(` ORDER BY logged_at DESC, id DESC`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&q, ` LIMIT $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activities.ActivityLog, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// WithinPetTx bloquea la fila del pet (FOR UPDATE) durante toda la tx:
// dos registros simultáneos del mismo pet se serializan y la racha no pierde updates.
func (r *ActivitiesRepo) WithinPetTx(ctx context.Context, petID string, fn func(tx activities.Tx) error) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var streak int
		err := tx.QueryRowContext(ctx, `SELECT current_streak FROM pets WHERE id = $1 FOR UPDATE`, petID).Scan(&streak)
		if errors.Is(err, sql.ErrNoRows) {
			return pets.ErrNotFound
		}
		if err != nil {
			return err
		}
		return fn(&pgTx{tx: tx})
	})
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) FindByIdempotencyKey(ctx context.Context, petID string, kind activities.Kind, key string) (activities.ActivityLog, bool, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+activityColumns+`
		FROM activity_logs
		WHERE pet_id = $1 AND activity_type = $2 AND idempotency_key = $3
	`, petID, string(kind), key)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return activities.ActivityLog{}, false, nil
	}
	if err != nil {
		return activities.ActivityLog{}, false, err
	}
	return a, true, nil
}

func (t *pgTx) Create(ctx context.Context, a activities.ActivityLog) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO activity_logs (`+activityColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		a.ID,
		a.PetID,
		string(a.Kind),
		a.Value,
		a.Notes,
		toNullString(a.IdempotencyKey),
		a.LoggedAt,
		a.CreatedAt,
	)
	if pgCode(err) == codeUniqueViolation {
		return apperr.ErrConflict
	}
	return err
}

func (t *pgTx) CountBetween(ctx context.Context, petID string, from, to time.Time) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM activity_logs
		WHERE pet_id = $1 AND logged_at >= $2 AND logged_at < $3
	`, petID, from, to).Scan(&n)
	return n, err
}

func (t *pgTx) LastBefore(ctx context.Context, petID string, before time.Time) (*time.Time, error) {
	var last sql.NullTime
	err := t.tx.QueryRowContext(ctx, `
		SELECT MAX(logged_at)
		FROM activity_logs
		WHERE pet_id = $1 AND logged_at < $2
	`, petID, before).Scan(&last)
	if err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	at := last.Time
	return &at, nil
}

func (t *pgTx) Streak(ctx context.Context, petID string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `SELECT current_streak FROM pets WHERE id = $1`, petID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, pets.ErrNotFound
	}
	return n, err
}

func (t *pgTx) SetStreak(ctx context.Context, petID string, n int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE pets SET current_streak = $2, updated_at = now() WHERE id = $1
	`, petID, n)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (t *pgTx) AwardXP(ctx context.Context, ownerID string, xp int) error {
	return awardXP(ctx, t.tx, ownerID, xp, pets.ErrOwnerNotFound)
}

func scanActivity(s scanner) (activities.ActivityLog, error) {
	var a activities.ActivityLog
	var kind string
	var key sql.NullString
	if err := s.Scan(&a.ID, &a.PetID, &kind, &a.Value, &a.Notes, &key, &a.LoggedAt, &a.CreatedAt); err != nil {
		return activities.ActivityLog{}, err
	}
	a.Kind = activities.Kind(kind)
	a.IdempotencyKey = key.String
	return a, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
