package appointments

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(store *fakeStore, slots *fakeSlots) http.Handler {
	svc := NewService(store, slots, nil, nil, nil)
	return NewHandler(svc, nil).Routes()
}

func TestBookEndpointCreates(t *testing.T) {
	h := newTestHandler(&fakeStore{}, &fakeSlots{free: map[string]bool{"2024-01-07 10:00:00": true}})

	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"user_id":7,"work_date":"2024-01-07","slot":"10:00"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slot":"10:00:00"`)
}

func TestBookEndpointConflict(t *testing.T) {
	h := newTestHandler(&fakeStore{}, &fakeSlots{free: map[string]bool{}})

	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"user_id":7,"work_date":"2024-01-07","slot":"10:00"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookEndpointBadBody(t *testing.T) {
	h := newTestHandler(&fakeStore{}, &fakeSlots{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCloseEndpoint(t *testing.T) {
	store := &fakeStore{}
	h := newTestHandler(store, &fakeSlots{})

	req := httptest.NewRequest(http.MethodPatch, "/42/close",
		strings.NewReader(`{"amount_paid":55}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{42}, store.closed)
	assert.Contains(t, rec.Body.String(), `"status":"closed"`)
}

func TestCloseEndpointRejectsZeroAmount(t *testing.T) {
	h := newTestHandler(&fakeStore{}, &fakeSlots{})

	req := httptest.NewRequest(http.MethodPatch, "/42/close",
		strings.NewReader(`{"amount_paid":0}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCloseEndpointFinalized(t *testing.T) {
	h := newTestHandler(&fakeStore{closeErr: ErrNotOpen}, &fakeSlots{})

	req := httptest.NewRequest(http.MethodPatch, "/42/close",
		strings.NewReader(`{"amount_paid":55}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelEndpoint(t *testing.T) {
	store := &fakeStore{}
	h := newTestHandler(store, &fakeSlots{})

	req := httptest.NewRequest(http.MethodPatch, "/42/cancel", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{42}, store.canceled)
}

func TestListEndpointRejectsBadDate(t *testing.T) {
	h := newTestHandler(&fakeStore{}, &fakeSlots{})

	req := httptest.NewRequest(http.MethodGet, "/?date=01-07-2024", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEndpointBadID(t *testing.T) {
	h := newTestHandler(&fakeStore{}, &fakeSlots{})

	req := httptest.NewRequest(http.MethodPatch, "/abc/cancel", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
