package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/platform/apperr"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (id, email, name, xp_balance, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, o.ID, o.Email, o.Name, o.XPBalance, o.CreatedAt, o.UpdatedAt)
	if pgCode(err) == codeUniqueViolation {
		return apperr.ErrConflict
	}
	return err
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return owners.Owner{}, owners.ErrNotFound
	}

	var o owners.Owner
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, xp_balance, created_at, updated_at
		FROM owners
		WHERE id = $1
	`, id).Scan(&o.ID, &o.Email, &o.Name, &o.XPBalance, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return owners.Owner{}, owners.ErrNotFound
	}
	if err != nil {
		return owners.Owner{}, err
	}
	return o, nil
}

func (r *OwnersRepo) UpdateProfile(ctx context.Context, o owners.Owner) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE owners
		SET email = $2, name = $3, updated_at = $4
		WHERE id = $1
	`, o.ID, o.Email, o.Name, o.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return owners.ErrNotFound
	}
	return nil
}
