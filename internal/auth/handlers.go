package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"marketplace/internal/api"
	"marketplace/internal/emailfilter"
	"marketplace/internal/user"
	"marketplace/pkg/session"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

type Handlers struct {
	Users    *user.Repository
	Filter   *emailfilter.Filter
	Secret   string
	TokenTTL time.Duration
	Log      zerolog.Logger
}

type signupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Signup registers a new account. Disposable email domains are refused
// up front so throwaway addresses never enter the user table.
func (h Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)

	var details []string
	if !emailPattern.MatchString(email) {
		details = append(details, "invalid email address")
	} else if h.Filter != nil && h.Filter.Disposable(email) {
		details = append(details, "disposable email addresses are not allowed")
	}
	if fullName == "" {
		details = append(details, "full name is required")
	}
	if len(req.Password) < 8 {
		details = append(details, "password must be at least 8 characters")
	}
	if len(details) > 0 {
		api.WriteValidationError(w, details)
		return
	}

	if _, err := h.Users.FindByEmail(r.Context(), email); err == nil {
		api.WriteError(w, http.StatusConflict, "EMAIL_TAKEN", "an account with this email already exists")
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		h.Log.Error().Err(err).Msg("signup email lookup failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to create account")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.Log.Error().Err(err).Msg("password hash failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to create account")
		return
	}

	u, err := h.Users.Create(r.Context(), email, fullName, hash)
	if err != nil {
		h.Log.Error().Err(err).Msg("signup insert failed")
		api.WriteError(w, http.StatusInternalServerError, "PERSISTENCE_FAILED", "failed to create account")
		return
	}

	token, err := session.Issue(h.Secret, u.ID, u.Email, u.Role, h.TokenTTL, time.Now())
	if err != nil {
		h.Log.Error().Err(err).Msg("token issue failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to create session")
		return
	}
	api.WriteJSON(w, http.StatusCreated, sessionResponse{Token: token, User: u})
}

// Signin exchanges credentials for a bearer token. Unknown email and
// wrong password produce the same response.
func (h Handlers) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, pgx.ErrNoRows) {
		api.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("signin lookup failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to sign in")
		return
	}
	if !u.Active {
		api.WriteError(w, http.StatusForbidden, "ACCOUNT_DISABLED", "this account has been disabled")
		return
	}
	if err := ComparePassword(u.PasswordHash, req.Password); err != nil {
		api.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}

	token, err := session.Issue(h.Secret, u.ID, u.Email, u.Role, h.TokenTTL, time.Now())
	if err != nil {
		h.Log.Error().Err(err).Msg("token issue failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to create session")
		return
	}
	api.WriteJSON(w, http.StatusOK, sessionResponse{Token: token, User: u})
}

// Me returns the account behind the current bearer token.
func (h Handlers) Me(w http.ResponseWriter, r *http.Request) {
	ident := api.IdentityFromContext(r.Context())
	if ident == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token")
		return
	}
	u, err := h.Users.FindByID(r.Context(), ident.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "account no longer exists")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("me lookup failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load account")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"user": u})
}
