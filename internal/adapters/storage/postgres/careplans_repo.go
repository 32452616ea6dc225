package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pet-care-tracker/internal/domain/careplans"
	"pet-care-tracker/internal/domain/pets"
)

const carePlanColumns = `id, pet_id, plan_date, target_exercise_mins, target_calories, ai_insight_text, status, created_at`

type CarePlansRepo struct {
	db *sql.DB
}

func NewCarePlansRepo(db *sql.DB) *CarePlansRepo {
	return &CarePlansRepo{db: db}
}

func (r *CarePlansRepo) FindForDay(ctx context.Context, petID string, from, to time.Time) (careplans.CarePlan, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+carePlanColumns+`
		FROM care_plans
		WHERE pet_id = $1 AND plan_date >= $2 AND plan_date < $3
		ORDER BY created_at DESC
		LIMIT 1
	`, petID, from, to)
	p, err := scanCarePlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return careplans.CarePlan{}, false, nil
	}
	if err != nil {
		return careplans.CarePlan{}, false, err
	}
	return p, true, nil
}

func (r *CarePlansRepo) ListByPet(ctx context.Context, petID string, limit int) ([]careplans.CarePlan, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+carePlanColumns+`
		FROM care_plans
		WHERE pet_id = $1
		ORDER BY plan_date DESC, created_at DESC
		LIMIT $2
	`, petID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]careplans.CarePlan, 0)
	for rows.Next() {
		p, err := scanCarePlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateWithReward: el índice único (pet_id, plan_date) decide entre instancias.
func (r *CarePlansRepo) CreateWithReward(ctx context.Context, p careplans.CarePlan, ownerID string, xp int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO care_plans (`+carePlanColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			p.ID,
			p.PetID,
			p.Date,
			p.TargetExerciseMins,
			p.TargetCalories,
			p.InsightText,
			string(p.Status),
			p.CreatedAt,
		)
		switch pgCode(err) {
		case codeUniqueViolation:
			return careplans.ErrAlreadyExists
		case codeForeignKeyViolation:
			return pets.ErrNotFound
		}
		if err != nil {
			return err
		}
		return awardXP(ctx, tx, ownerID, xp, pets.ErrOwnerNotFound)
	})
}

func scanCarePlan(s scanner) (careplans.CarePlan, error) {
	var p careplans.CarePlan
	var status string
	if err := s.Scan(
		&p.ID,
		&p.PetID,
		&p.Date,
		&p.TargetExerciseMins,
		&p.TargetCalories,
		&p.InsightText,
		&status,
		&p.CreatedAt,
	); err != nil {
		return careplans.CarePlan{}, err
	}
	p.Status = careplans.Status(status)
	return p, nil
}
