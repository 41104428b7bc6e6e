package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, upd UserUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// ExistsTx verifies the user row inside the booking transaction.
	ExistsTx(ctx context.Context, tx pgx.Tx, id int64) (bool, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(phone_number, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.QueryRow(ctx, `INSERT INTO users (username, email, password_hash, first_name, last_name, phone_number)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id, created_at, updated_at`,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.PhoneNumber).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

// GetByLogin accepts either a username or an email.
func (r *PGUserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1 OR email=$1`, login))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

func (r *PGUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username=$1)`, username).Scan(&exists)
	return exists, err
}

func (r *PGUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

func (r *PGUserRepository) UpdateProfile(ctx context.Context, id int64, upd UserUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.FirstName != nil {
		args = append(args, *upd.FirstName)
		sets = append(sets, "first_name = $"+strconv.Itoa(len(args)))
	}
	if upd.LastName != nil {
		args = append(args, *upd.LastName)
		sets = append(sets, "last_name = $"+strconv.Itoa(len(args)))
	}
	if upd.PhoneNumber != nil {
		args = append(args, *upd.PhoneNumber)
		sets = append(sets, "phone_number = $"+strconv.Itoa(len(args)))
	}
	if len(sets) == 0 {
		return errors.New("no fields to update")
	}
	args = append(args, id)
	res, err := r.db.Exec(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+`, updated_at = now() WHERE id = $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PGUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.Exec(ctx, `UPDATE users SET password_hash=$1, updated_at = now() WHERE id=$2`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PGUserRepository) ExistsTx(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

var _ UserRepository = (*PGUserRepository)(nil)
