package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetrow/salonbook/internal/appointments"
	"github.com/velvetrow/salonbook/internal/availability"
	"github.com/velvetrow/salonbook/internal/schedule"
)

func testRouter(t *testing.T, secret string) http.Handler {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return New(&Config{
		Schedule:       schedule.NewHandler(schedule.NewRepositoryWithDB(mock), nil),
		AdminJWTSecret: secret,
	})
}

func adminToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  "1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	h := testRouter(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h := testRouter(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/schedule/templates", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesAcceptValidToken(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	mock.ExpectQuery(`SELECT .* FROM day_templates`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "notes", "created_at"}))

	h := New(&Config{
		Schedule:       schedule.NewHandler(schedule.NewRepositoryWithDB(mock), nil),
		AdminJWTSecret: "secret",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/schedule/templates", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "secret"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserAppointmentHistoryRoute(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	mock.ExpectQuery(`FROM appointments`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "work_date", "slot", "status",
			"notes", "amount_paid", "inspo_image", "created_at", "closed_at",
		}))

	repo := appointments.NewRepositoryWithDB(mock)
	resolver := availability.NewResolver(schedule.NewRepositoryWithDB(mock), repo)
	svc := appointments.NewService(repo, resolver, nil, nil, nil)
	h := New(&Config{Appointments: appointments.NewHandler(svc, nil)})

	req := httptest.NewRequest(http.MethodGet, "/api/users/7/appointments", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	h := testRouter(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
