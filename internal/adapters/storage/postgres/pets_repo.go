package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-care-tracker/internal/domain/pets"
)

const petColumns = `
	id, owner_id,
	name, breed, weight_lbs, age_years, photo_url,
	current_streak,
	created_at, updated_at`

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) CreateWithReward(ctx context.Context, p pets.Pet, xp int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		// primero el XP: si el owner no existe cortamos antes del INSERT
		if err := awardXP(ctx, tx, p.OwnerID, xp, pets.ErrOwnerNotFound); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pets (`+petColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			p.ID,
			p.OwnerID,
			p.Name,
			p.Breed,
			toNullFloat(p.WeightLbs),
			toNullInt(p.AgeYears),
			p.PhotoURL,
			p.CurrentStreak,
			p.CreatedAt,
			p.UpdatedAt,
		)
		if pgCode(err) == codeForeignKeyViolation {
			return pets.ErrOwnerNotFound
		}
		return err
	})
}

// Update no escribe current_streak: la racha la mueve solo el registro de actividades.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			breed = $3,
			weight_lbs = $4,
			age_years = $5,
			photo_url = $6,
			updated_at = $7
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Breed,
		toNullFloat(p.WeightLbs),
		toNullInt(p.AgeYears),
		p.PhotoURL,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	if err != nil {
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete: activity_logs y care_plans caen por ON DELETE CASCADE.
func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPet(s scanner) (pets.Pet, error) {
	var p pets.Pet
	var weight sql.NullFloat64
	var age sql.NullInt64
	if err := s.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Breed,
		&weight,
		&age,
		&p.PhotoURL,
		&p.CurrentStreak,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	if weight.Valid {
		w := weight.Float64
		p.WeightLbs = &w
	}
	if age.Valid {
		a := int(age.Int64)
		p.AgeYears = &a
	}
	return p, nil
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
