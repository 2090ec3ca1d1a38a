package users

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+491701234567", NormalizePhone("+49 (170) 123-4567"))
	assert.Equal(t, "01701234567", NormalizePhone("0170 123 45 67"))
	assert.Equal(t, "", NormalizePhone(""))
	assert.Equal(t, "12", NormalizePhone("1+2"))
}

func TestCreateNormalizesPhoneAndHashes(t *testing.T) {
	mock := newMock(t)
	phone := "+49 170 1234567"
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Mira", "Kova", "mira", (*string)(nil), &phone,
			pgxmock.AnyArg(), "user", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), time.Now()))

	repo := NewRepositoryWithDB(mock)
	u, err := repo.Create(context.Background(), &CreateUserRequest{
		FirstName: "Mira", LastName: "Kova", Username: "mira",
		Phone: &phone, Password: "secret1",
	})
	require.NoError(t, err)
	require.NotNil(t, u.PhoneE164)
	assert.Equal(t, "+491701234567", *u.PhoneE164)
	assert.Equal(t, RoleUser, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicate(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Mira", "Kova", "mira", (*string)(nil), (*string)(nil),
			(*string)(nil), "user", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewRepositoryWithDB(mock)
	_, err := repo.Create(context.Background(), &CreateUserRequest{
		FirstName: "Mira", LastName: "Kova", Username: "mira", Password: "secret1",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateValidation(t *testing.T) {
	repo := NewRepositoryWithDB(newMock(t))

	_, err := repo.Create(context.Background(), &CreateUserRequest{Username: "mira"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = repo.Create(context.Background(), &CreateUserRequest{
		FirstName: "Mira", LastName: "Kova", Username: "mira", Password: "short",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = repo.Create(context.Background(), &CreateUserRequest{
		FirstName: "Mira", LastName: "Kova", Username: "mira",
		Password: "secret1", Role: "owner",
	})
	assert.ErrorIs(t, err, ErrBadRole)
}

func TestByIdentifierMatchesPhone(t *testing.T) {
	mock := newMock(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .* FROM users`).
		WithArgs("+49 170 1234567", "+491701234567").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "first_name", "last_name", "username", "date_of_birth",
			"phone_raw", "phone_e164", "role", "created_at", "password_hash",
		}).AddRow(int64(5), "Mira", "Kova", "mira", (*string)(nil),
			(*string)(nil), (*string)(nil), "user", time.Now(), string(hash)))

	repo := NewRepositoryWithDB(mock)
	u, err := repo.ByIdentifier(context.Background(), "+49 170 1234567")
	require.NoError(t, err)
	assert.True(t, u.CheckPassword("secret1"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingUser(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT .* FROM users`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	repo := NewRepositoryWithDB(mock)
	_, err := repo.Get(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingUser(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM users`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewRepositoryWithDB(mock)
	err := repo.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
