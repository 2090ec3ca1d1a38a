package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/velvetrow/salonbook/internal/storage"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists accounts. Username and normalized phone are unique.
type Repository struct {
	db db
}

// NewRepository creates a users repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for tests.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, first_name, last_name, username,
	to_char(date_of_birth, 'YYYY-MM-DD'), phone_raw, phone_e164, role, created_at`

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username,
		&u.DateOfBirth, &u.PhoneRaw, &u.PhoneE164, &u.Role, &u.CreatedAt)
}

// List returns all accounts, newest first.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("users: scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Get returns one account by id.
func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	var u User
	err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`, id), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: get: %w", err)
	}
	return &u, nil
}

// Create hashes the password and inserts the account. The phone is stored
// both as entered and normalized; the normalized form carries the unique
// constraint.
func (r *Repository) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	var phoneE164 *string
	if req.Phone != nil {
		if normalized := NormalizePhone(*req.Phone); normalized != "" {
			phoneE164 = &normalized
		}
	}

	u := User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Username:    req.Username,
		DateOfBirth: req.DateOfBirth,
		PhoneRaw:    req.Phone,
		PhoneE164:   phoneE164,
		Role:        req.Role,
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, username, date_of_birth, phone_raw, phone_e164, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		req.FirstName, req.LastName, req.Username, req.DateOfBirth,
		req.Phone, phoneE164, req.Role, string(hash)).Scan(&u.ID, &u.CreatedAt)
	if storage.UniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("users: create: %w", err)
	}
	return &u, nil
}

// Delete removes an account; its appointments cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ByIdentifier looks an account up by username or normalized phone, with its
// password hash, for authentication.
func (r *Repository) ByIdentifier(ctx context.Context, identifier string) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`, password_hash
		FROM users
		WHERE username = $1 OR phone_e164 = $2`,
		identifier, NormalizePhone(identifier)).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.DateOfBirth,
			&u.PhoneRaw, &u.PhoneE164, &u.Role, &u.CreatedAt, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: by identifier: %w", err)
	}
	return &u, nil
}

// SetPassword replaces an account's password hash.
func (r *Repository) SetPassword(ctx context.Context, id int64, password string) error {
	if len(password) < 6 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, string(hash))
	if err != nil {
		return fmt.Errorf("users: set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CheckPassword verifies a candidate password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
