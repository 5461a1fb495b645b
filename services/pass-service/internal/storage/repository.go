package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/notHospitalet/la-llosa-website/libs/db"
)

const (
	StatusActive    = "activo"
	StatusCancelled = "cancelado"
)

type Pass struct {
	ID         string
	UserID     string
	Kind       string
	PassType   string
	Resident   string
	Price      float64
	Status     string
	ValidFrom  time.Time
	ValidUntil time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *Repository) Create(ctx context.Context, tx pgx.Tx, p Pass) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO passes (id, user_id, kind, pass_type, resident, price, status, valid_from, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.UserID, p.Kind, p.PassType, p.Resident, p.Price, p.Status, p.ValidFrom, p.ValidUntil)
	return err
}

func (r *Repository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID, passID string) (Pass, error) {
	var p Pass
	err := tx.QueryRow(ctx, `
		SELECT id::text, user_id::text, kind, pass_type, resident, price, status, valid_from, valid_until, created_at, updated_at
		FROM passes
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, passID, userID).Scan(&p.ID, &p.UserID, &p.Kind, &p.PassType, &p.Resident, &p.Price, &p.Status, &p.ValidFrom, &p.ValidUntil, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Pass{}, err
	}
	return p, nil
}

func (r *Repository) Cancel(ctx context.Context, tx pgx.Tx, passID string) (time.Time, error) {
	var updatedAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE passes
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, passID, StatusCancelled).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, err
	}
	return updatedAt, nil
}

// HasOverlappingActive guards against selling a second pass of the same kind
// whose validity window overlaps an existing one.
func (r *Repository) HasOverlappingActive(ctx context.Context, tx pgx.Tx, userID, kind string, from, until time.Time) (bool, error) {
	var cnt int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM passes
		WHERE user_id = $1
		  AND kind = $2
		  AND status = $3
		  AND valid_from <= $5
		  AND valid_until >= $4
	`, userID, kind, StatusActive, from, until).Scan(&cnt)
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string, includeCancelled bool, limit int) ([]Pass, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT id::text, user_id::text, kind, pass_type, resident, price, status, valid_from, valid_until, created_at, updated_at
		FROM passes
		WHERE user_id = $1
	`
	if !includeCancelled {
		query += ` AND status = '` + StatusActive + `'`
	}
	query += `
		ORDER BY valid_from DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pass
	for rows.Next() {
		var p Pass
		if err := rows.Scan(&p.ID, &p.UserID, &p.Kind, &p.PassType, &p.Resident, &p.Price, &p.Status, &p.ValidFrom, &p.ValidUntil, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
