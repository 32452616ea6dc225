package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Códigos SQLSTATE que mapeamos a errores de dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Repos agrupa los repositorios sobre un mismo pool.
type Repos struct {
	Owners     *OwnersRepo
	Pets       *PetsRepo
	Activities *ActivitiesRepo
	CarePlans  *CarePlansRepo
}

func NewRepos(db *sql.DB) Repos {
	return Repos{
		Owners:     NewOwnersRepo(db),
		Pets:       NewPetsRepo(db),
		Activities: NewActivitiesRepo(db),
		CarePlans:  NewCarePlansRepo(db),
	}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// withTx corre fn en una tx; rollback si fn falla o hay panic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// execer lo cumplen *sql.DB y *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// awardXP suma xp al owner; ownerMissing es el error a devolver si no existe.
func awardXP(ctx context.Context, ex execer, ownerID string, xp int, ownerMissing error) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE owners
		SET xp_balance = xp_balance + $2, updated_at = now()
		WHERE id = $1
	`, ownerID, xp)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ownerMissing
	}
	return nil
}
