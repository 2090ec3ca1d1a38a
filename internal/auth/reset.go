package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velvetrow/salonbook/internal/storage"
)

// DefaultResetTTL is how long a reset token stays valid when the config does
// not say otherwise.
const DefaultResetTTL = 15 * time.Minute

// ResetToken is one stored password reset token. Only the sha256 hash is
// persisted; the plain token is returned once at creation.
type ResetToken struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type resetDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ResetRepository persists password reset tokens.
type ResetRepository struct {
	db  resetDB
	ttl time.Duration
	now func() time.Time
}

// NewResetRepository creates a reset token repository over a pgx pool.
func NewResetRepository(pool *pgxpool.Pool, ttl time.Duration) *ResetRepository {
	if pool == nil {
		panic("auth: pgx pool required")
	}
	return newResetRepository(pool, ttl)
}

// NewResetRepositoryWithDB allows injecting a mock database for tests.
func NewResetRepositoryWithDB(db resetDB, ttl time.Duration) *ResetRepository {
	return newResetRepository(db, ttl)
}

func newResetRepository(db resetDB, ttl time.Duration) *ResetRepository {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	return &ResetRepository{db: db, ttl: ttl, now: time.Now}
}

func hashToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

// Create mints a random token for the user and stores its hash. The plain
// token is returned alongside the row and never again.
func (r *ResetRepository) Create(ctx context.Context, userID int64) (string, *ResetToken, error) {
	if userID <= 0 {
		return "", nil, ErrUserRequired
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("auth: generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	rt := ResetToken{UserID: userID, ExpiresAt: r.now().Add(r.ttl)}
	err := r.db.QueryRow(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		userID, hashToken(token), rt.ExpiresAt).Scan(&rt.ID, &rt.CreatedAt)
	if storage.ForeignKeyViolation(err) {
		return "", nil, ErrUserRequired
	}
	if err != nil {
		return "", nil, fmt.Errorf("auth: create reset token: %w", err)
	}
	return token, &rt, nil
}

// Consume looks a plain token up by hash, deletes it, and returns the row.
// Expired tokens are deleted too but reported as expired.
func (r *ResetRepository) Consume(ctx context.Context, token string) (*ResetToken, error) {
	var rt ResetToken
	err := r.db.QueryRow(ctx, `
		DELETE FROM password_reset_tokens
		WHERE token_hash = $1
		RETURNING id, user_id, expires_at, created_at`, hashToken(token)).
		Scan(&rt.ID, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth: consume reset token: %w", err)
	}
	if rt.ExpiresAt.Before(r.now()) {
		return nil, ErrTokenExpired
	}
	return &rt, nil
}

// List returns all stored tokens, newest first.
func (r *ResetRepository) List(ctx context.Context) ([]ResetToken, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, expires_at, created_at
		FROM password_reset_tokens
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("auth: list reset tokens: %w", err)
	}
	defer rows.Close()

	var out []ResetToken
	for rows.Next() {
		var rt ResetToken
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("auth: scan reset token: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// Delete removes one token by id.
func (r *ResetRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("auth: delete reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}
