package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/notHospitalet/la-llosa-website/libs/db"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/availability"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/model"
)

type ReservationRepository struct {
	pool *db.Pool
}

type IdempotencyRecord struct {
	UserID          string
	IdempotencyKey  string
	ReservationID   string
	StatusCode      int
	ResponsePayload []byte
}

func NewReservationRepository(pool *db.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Create inserts a reservation. For sports reservations the table carries an
// exclusion constraint on (facility, date, hour range) restricted to
// non-cancelled rows, so two racing submissions for the same slot cannot both
// commit; the loser surfaces as IsConflict.
func (r *ReservationRepository) Create(ctx context.Context, tx pgx.Tx, res *model.Reservation) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO reservations
			(user_id, name, email, phone, dni, facility, kind, date, start_hour, end_hour, hours, price, resident, lighting, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`, res.UserID, res.Name, res.Email, res.Phone, res.DNI, res.Facility, string(res.Kind), res.Date,
		hourOf(res.StartHour), hourOf(res.EndHour), res.Hours, res.Price, res.Resident, res.Lighting, res.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *ReservationRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID, reservationID string) (model.Reservation, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, user_id, name, email, COALESCE(phone, ''), COALESCE(dni, ''),
			facility, kind, date, start_hour, end_hour, hours, price, resident, lighting, status, created_at, updated_at
		FROM reservations
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, reservationID, userID)
	return scanReservation(row)
}

func (r *ReservationRepository) Cancel(ctx context.Context, tx pgx.Tx, userID, reservationID string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE reservations
		SET status = 'cancelada',
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`, reservationID, userID).Scan(&cancelledAt)
	return cancelledAt, err
}

// ListDayBookings returns every sports reservation of a calendar day in the
// engine's read-only booking shape, cancelled rows included: the engine does
// its own status filtering, and the grid endpoint reports cancelled history.
func (r *ReservationRepository) ListDayBookings(ctx context.Context, date time.Time) ([]availability.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT facility, date, start_hour, end_hour, hours, status
		FROM reservations
		WHERE date = $1 AND kind = 'deportiva'
		ORDER BY start_hour ASC, created_at ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []availability.Booking
	for rows.Next() {
		var (
			b          availability.Booking
			start, end int
			status     string
		)
		if err := rows.Scan(&b.Facility, &b.Date, &start, &end, &b.Hours, &status); err != nil {
			return nil, err
		}
		b.Start = availability.HourLabel(start)
		if end > 0 {
			b.End = availability.HourLabel(end)
		}
		b.Status = availability.Status(status)
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bookings, nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Reservation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, email, COALESCE(phone, ''), COALESCE(dni, ''),
			facility, kind, date, start_hour, end_hour, hours, price, resident, lighting, status, created_at, updated_at
		FROM reservations
		WHERE user_id = $1
		ORDER BY date DESC, start_hour DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ReservationRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, userID, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, userID, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reservation_idempotency_keys (user_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (user_id, idempotency_key) DO NOTHING
	`, userID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, userID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *ReservationRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, userID, key, reservationID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE reservation_idempotency_keys
		SET reservation_id = NULLIF($3, '')::uuid,
			status_code = $4,
			response_payload = $5,
			updated_at = now()
		WHERE user_id = $1 AND idempotency_key = $2
	`, userID, key, reservationID, statusCode, response)
	return err
}

// IsConflict reports an exclusion-constraint violation, i.e. the slot was
// taken between our availability check and the insert.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (model.Reservation, error) {
	var (
		res        model.Reservation
		kind       string
		start, end int
	)
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.Name,
		&res.Email,
		&res.Phone,
		&res.DNI,
		&res.Facility,
		&kind,
		&res.Date,
		&start,
		&end,
		&res.Hours,
		&res.Price,
		&res.Resident,
		&res.Lighting,
		&res.Status,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	res.Kind = model.Kind(kind)
	res.StartHour = availability.HourLabel(start)
	if end > 0 {
		res.EndHour = availability.HourLabel(end)
	}
	return res, nil
}

func (r *ReservationRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, userID, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT user_id::text,
			idempotency_key,
			COALESCE(reservation_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM reservation_idempotency_keys
		WHERE user_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, userID, key).Scan(
		&rec.UserID,
		&rec.IdempotencyKey,
		&rec.ReservationID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}

func hourOf(label string) int {
	if label == "" {
		return 0
	}
	h := 0
	for i := 0; i < len(label) && label[i] != ':'; i++ {
		c := label[i]
		if c < '0' || c > '9' {
			return 0
		}
		h = h*10 + int(c-'0')
	}
	return h
}
