package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/notHospitalet/la-llosa-website/libs/db"
)

// Resident categories drive the municipal tariff applied to reservations.
const (
	ResidentLocal        = "local"
	ResidentNonLocal     = "no-local"
	ResidentRetiredLocal = "jubilado-local"
)

type User struct {
	ID           string
	Name         string
	Email        string
	DNI          string
	Phone        string
	PasswordHash string
	Role         string
	Resident     string
}

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) CreateTx(ctx context.Context, tx pgx.Tx, user User) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO users (id, name, email, dni, phone, password_hash, role, resident)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.Name, user.Email, user.DNI, user.Phone, user.PasswordHash, user.Role, user.Resident)
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, dni, phone, password_hash, role, resident
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Name, &user.Email, &user.DNI, &user.Phone, &user.PasswordHash, &user.Role, &user.Resident)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, dni, phone, password_hash, role, resident
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Name, &user.Email, &user.DNI, &user.Phone, &user.PasswordHash, &user.Role, &user.Resident)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func IsNotFound(err error) bool {
	return err == pgx.ErrNoRows
}
