package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/airborne/server/internal/model"
)

// PushTokenRepo defines the interface for push token repository operations
type PushTokenRepo interface {
	// Upsert registers a token for the user. Re-registration of the same
	// (user, token) pair updates platform and updated_at in place and never
	// creates a duplicate.
	Upsert(ctx context.Context, userID uuid.UUID, token string, platform *model.Platform) (model.PushToken, error)
	// Delete removes the (user, token) record if present. Idempotent.
	Delete(ctx context.Context, userID uuid.UUID, token string) error
	// ListByUser returns all tokens owned by the user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.PushToken, error)
}

type pushTokenRepo struct {
	db *sql.DB
}

// NewPushTokenRepo creates a new PushTokenRepo instance
func NewPushTokenRepo(db *sql.DB) PushTokenRepo {
	return &pushTokenRepo{db: db}
}

const pushTokenColumns = `id, user_id, token, platform, updated_at, created_at`

// Upsert relies on the unique index on (user_id, token): the insert and the
// in-place patch are one atomic statement, so concurrent registrations of the
// same pair cannot race into duplicates.
func (r *pushTokenRepo) Upsert(ctx context.Context, userID uuid.UUID, token string, platform *model.Platform) (model.PushToken, error) {
	query := `
		INSERT INTO push_tokens (user_id, token, platform, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, token) DO UPDATE SET
			platform   = COALESCE(EXCLUDED.platform, push_tokens.platform),
			updated_at = now()
		RETURNING ` + pushTokenColumns + `
	`
	row := r.db.QueryRowContext(ctx, query, userID, token, platform)
	record, err := scanPushToken(row.Scan)
	if err != nil {
		return model.PushToken{}, fmt.Errorf("upsert push token: %w", err)
	}
	return record, nil
}

func (r *pushTokenRepo) Delete(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM push_tokens WHERE user_id = $1 AND token = $2
	`, userID, token)
	if err != nil {
		return fmt.Errorf("delete push token: %w", err)
	}
	return nil
}

func (r *pushTokenRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.PushToken, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+pushTokenColumns+`
		FROM push_tokens
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list push tokens: %w", err)
	}
	defer rows.Close()

	var tokens []model.PushToken
	for rows.Next() {
		record, err := scanPushToken(rows.Scan)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate push tokens: %w", err)
	}
	return tokens, nil
}

func scanPushToken(scan func(dest ...any) error) (model.PushToken, error) {
	var record model.PushToken
	var idStr, userIDStr string
	var platform sql.NullString
	err := scan(
		&idStr,
		&userIDStr,
		&record.Token,
		&platform,
		&record.UpdatedAt,
		&record.CreatedAt,
	)
	if err != nil {
		return model.PushToken{}, fmt.Errorf("scan push token: %w", err)
	}
	record.ID, err = uuid.Parse(idStr)
	if err != nil {
		return model.PushToken{}, fmt.Errorf("failed to parse token ID: %w", err)
	}
	record.UserID, err = uuid.Parse(userIDStr)
	if err != nil {
		return model.PushToken{}, fmt.Errorf("failed to parse user ID: %w", err)
	}
	if platform.Valid {
		p := model.Platform(platform.String)
		record.Platform = &p
	}
	return record, nil
}
