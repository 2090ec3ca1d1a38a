package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/velvetrow/salonbook/internal/http/httperr"
	"github.com/velvetrow/salonbook/internal/notify"
	"github.com/velvetrow/salonbook/internal/users"
	"github.com/velvetrow/salonbook/pkg/logging"
)

// userStore is the slice of the users repository auth needs.
type userStore interface {
	ByIdentifier(ctx context.Context, identifier string) (*users.User, error)
	SetPassword(ctx context.Context, id int64, password string) error
}

// Handler serves login and password reset endpoints.
type Handler struct {
	users  userStore
	issuer *Issuer
	resets *ResetRepository
	email  notify.EmailSender
	logger *logging.Logger
}

// NewHandler creates an auth handler. email may be nil.
func NewHandler(users userStore, issuer *Issuer, resets *ResetRepository, email notify.EmailSender, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{users: users, issuer: issuer, resets: resets, email: email, logger: logger}
}

// LoginRequest authenticates by username or phone number.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse carries the session token and the public account fields.
type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *users.User `json:"user"`
}

// Login verifies credentials and returns a signed session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	if req.Identifier == "" || req.Password == "" {
		httperr.Write(w, h.logger, httperr.Validation(ErrMissingCredentials.Error()))
		return
	}

	u, err := h.users.ByIdentifier(r.Context(), req.Identifier)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			httperr.Write(w, h.logger, httperr.NotFound(err.Error()).Wrap(err))
			return
		}
		httperr.Write(w, h.logger, err)
		return
	}
	if !u.CheckPassword(req.Password) {
		httperr.Write(w, h.logger, httperr.Unauthorized(ErrInvalidCredentials.Error()))
		return
	}

	token, err := h.issuer.Issue(u)
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	u.PasswordHash = ""
	h.logger.Info("login", "user_id", u.ID, "username", u.Username, "role", u.Role)
	httperr.JSON(w, http.StatusOK, LoginResponse{Message: "Login successful", Token: token, User: u})
}

// ResetRequest asks for a password reset token for an account.
type ResetRequest struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// RequestReset mints a reset token. When an email address is given and a
// sender is configured, the token goes out by mail; it is also returned in
// the response for operator-driven resets.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	token, rt, err := h.resets.Create(r.Context(), req.UserID)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}

	if req.Email != "" && h.email != nil {
		msg := notify.EmailMessage{
			To:      req.Email,
			Subject: "Your password reset code",
			Body: fmt.Sprintf(
				"Use this code to reset your password: %s\nIt expires at %s.",
				token, rt.ExpiresAt.Format("15:04")),
		}
		if err := h.email.Send(r.Context(), msg); err != nil {
			h.logger.Error("reset email failed", "error", err, "user_id", req.UserID)
		}
	}

	httperr.JSON(w, http.StatusCreated, map[string]any{
		"id":         rt.ID,
		"user_id":    rt.UserID,
		"expires_at": rt.ExpiresAt,
		"token":      token,
	})
}

// ConfirmRequest redeems a reset token for a new password.
type ConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ConfirmReset consumes the token and sets the account's new password.
func (h *Handler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		httperr.Write(w, h.logger, httperr.Validation(ErrResetFieldsRequired.Error()))
		return
	}

	rt, err := h.resets.Consume(r.Context(), req.Token)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	if err := h.users.SetPassword(r.Context(), rt.UserID, req.NewPassword); err != nil {
		if errors.Is(err, users.ErrWeakPassword) {
			httperr.Write(w, h.logger, httperr.Validation(err.Error()).Wrap(err))
			return
		}
		httperr.Write(w, h.logger, err)
		return
	}
	h.logger.Info("password reset", "user_id", rt.UserID)
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// TokenRoutes mounts the admin CRUD for stored reset tokens.
func (h *Handler) TokenRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListTokens)
	r.Delete("/{id}", h.DeleteToken)
	return r
}

func (h *Handler) ListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.resets.List(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if tokens == nil {
		tokens = []ResetToken{}
	}
	httperr.JSON(w, http.StatusOK, tokens)
}

func (h *Handler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httperr.Write(w, h.logger, httperr.Validation("invalid id"))
		return
	}
	if err := h.resets.Delete(r.Context(), id); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "reset token deleted"})
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrUserRequired),
		errors.Is(err, ErrResetFieldsRequired):
		return httperr.Validation(err.Error()).Wrap(err)
	case errors.Is(err, ErrInvalidCredentials):
		return httperr.Unauthorized(err.Error()).Wrap(err)
	case errors.Is(err, ErrTokenNotFound), errors.Is(err, ErrTokenExpired):
		return httperr.NotFound(err.Error()).Wrap(err)
	}
	return err
}
