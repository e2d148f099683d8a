package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/airborne/server/internal/model"
)

// BootstrapParams are the optional profile fields supplied on bootstrap.
// A nil field leaves the stored value untouched.
type BootstrapParams struct {
	Email    *string
	Name     *string
	ImageURL *string
}

// UserRepo defines the interface for user repository operations
type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetBySubject(ctx context.Context, subject string) (model.User, error)
	Bootstrap(ctx context.Context, subject string, params BootstrapParams) (model.User, error)
}

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = sql.ErrNoRows

type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo instance
func NewUserRepo(db *sql.DB) UserRepo {
	return &userRepo{db: db}
}

const userColumns = `id, subject, email, name, image_url, last_seen_at, created_at`

// GetByID retrieves a user by internal id
func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetBySubject retrieves a user by external identity subject
func (r *userRepo) GetBySubject(ctx context.Context, subject string) (model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE subject = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, subject))
}

// Bootstrap inserts the user on first call and patches it afterwards, in one
// statement against the unique index on subject. Optional fields only
// overwrite when supplied; last_seen_at is always refreshed.
func (r *userRepo) Bootstrap(ctx context.Context, subject string, params BootstrapParams) (model.User, error) {
	query := `
		INSERT INTO users (subject, email, name, image_url, last_seen_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (subject) DO UPDATE SET
			email        = COALESCE(EXCLUDED.email, users.email),
			name         = COALESCE(EXCLUDED.name, users.name),
			image_url    = COALESCE(EXCLUDED.image_url, users.image_url),
			last_seen_at = now()
		RETURNING ` + userColumns + `
	`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, subject, params.Email, params.Name, params.ImageURL))
	if err != nil {
		return model.User{}, fmt.Errorf("bootstrap user: %w", err)
	}
	return user, nil
}

func (r *userRepo) scanUser(row *sql.Row) (model.User, error) {
	var user model.User
	var idStr string
	err := row.Scan(
		&idStr,
		&user.Subject,
		&user.Email,
		&user.Name,
		&user.ImageURL,
		&user.LastSeenAt,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, fmt.Errorf("user not found: %w", err)
		}
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	user.ID, err = uuid.Parse(idStr)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse user ID: %w", err)
	}
	return user, nil
}
