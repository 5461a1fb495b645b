package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// ActivePass is the local cache of a pass-service bono, maintained from
// bono.activated.v1 / bono.cancelled.v1 events. Gym and pool reservations
// covered by an active pass are free of charge.
type ActivePass struct {
	PassID     string
	UserID     string
	Kind       string // "gimnasio" or "piscina"
	ValidFrom  time.Time
	ValidUntil time.Time
}

func (r *ReservationRepository) UpsertActivePass(ctx context.Context, tx pgx.Tx, pass ActivePass) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO active_passes (pass_id, user_id, kind, valid_from, valid_until)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pass_id)
		DO UPDATE SET kind = EXCLUDED.kind,
		              valid_from = EXCLUDED.valid_from,
		              valid_until = EXCLUDED.valid_until,
		              updated_at = now()
	`, pass.PassID, pass.UserID, pass.Kind, pass.ValidFrom, pass.ValidUntil)
	return err
}

func (r *ReservationRepository) RemoveActivePass(ctx context.Context, tx pgx.Tx, passID string) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM active_passes
		WHERE pass_id = $1
	`, passID)
	return err
}

// HasActivePass reports whether the user holds a pass of the given kind
// covering the reservation date.
func (r *ReservationRepository) HasActivePass(ctx context.Context, tx pgx.Tx, userID, kind string, date time.Time) (bool, error) {
	var cnt int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM active_passes
		WHERE user_id = $1
		  AND kind = $2
		  AND valid_from <= $3
		  AND valid_until >= $3
	`, userID, kind, date).Scan(&cnt)
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}
