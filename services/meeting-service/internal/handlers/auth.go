package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/md-rashed-zaman/meetsync/libs/httpx"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/sessions"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/storage"
)

type Users interface {
	Create(ctx context.Context, u model.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	ListOthers(ctx context.Context, exclude int64) ([]model.User, error)
	UpdateProfile(ctx context.Context, u model.User) (model.User, error)
}

type RefreshTokens interface {
	Create(ctx context.Context, userID int64, rawToken string, expiresAt time.Time) (string, error)
	GetByHash(ctx context.Context, hash string) (sessions.RefreshToken, error)
	Revoke(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(subject, username string) (string, error)
}

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

type AuthHandler struct {
	users      Users
	refresh    RefreshTokens
	issuer     TokenIssuer
	verifier   httpx.TokenVerifier
	refreshTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewAuthHandler(users Users, refresh RefreshTokens, issuer TokenIssuer, verifier httpx.TokenVerifier, refreshTTL time.Duration, logger *slog.Logger) *AuthHandler {
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &AuthHandler{
		users:      users,
		refresh:    refresh,
		issuer:     issuer,
		verifier:   verifier,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type loginResponse struct {
	Message      string       `json:"message"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	User         userResponse `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "username, email and password required", http.StatusBadRequest)
		return
	}
	if len(req.Username) > 80 || len(req.Email) > 120 || !strings.Contains(req.Email, "@") {
		http.Error(w, "invalid username or email", http.StatusBadRequest)
		return
	}
	if len(req.Password) > maxPasswordBytes {
		http.Error(w, "password too long", http.StatusBadRequest)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	user := model.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	user.ID, err = h.users.Create(r.Context(), user)
	switch {
	case errors.Is(err, storage.ErrEmailTaken):
		http.Error(w, "email already registered", http.StatusConflict)
		return
	case errors.Is(err, storage.ErrUsernameTaken):
		http.Error(w, "username already taken", http.StatusConflict)
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "create user failed", "err", err)
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", "user_id", user.ID)
	httpx.WriteMessage(w, http.StatusCreated, "User registered successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		http.Error(w, "failed to lookup user", http.StatusInternalServerError)
		return
	}
	if err := verifyPassword(user.PasswordHash, req.Password); err != nil {
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	h.writeTokens(w, r, user, "Login successful")
}

// Refresh exchanges a refresh token for a new pair; the old one is revoked.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req tokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		http.Error(w, "refresh_token required", http.StatusBadRequest)
		return
	}

	record, err := h.refresh.GetByHash(r.Context(), sessions.HashToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, sessions.ErrInvalidRefreshToken) {
			http.Error(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		http.Error(w, "failed to lookup refresh token", http.StatusInternalServerError)
		return
	}
	if !record.Usable(h.now()) {
		http.Error(w, "refresh token expired", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetByID(r.Context(), record.UserID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		http.Error(w, "failed to lookup user", http.StatusInternalServerError)
		return
	}
	if err := h.refresh.Revoke(r.Context(), record.ID); err != nil {
		http.Error(w, "failed to rotate refresh token", http.StatusInternalServerError)
		return
	}

	h.writeTokens(w, r, user, "Token refreshed")
}

// Logout revokes the caller's refresh token when one is supplied.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req tokenRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		record, err := h.refresh.GetByHash(r.Context(), sessions.HashToken(raw))
		switch {
		case errors.Is(err, sessions.ErrInvalidRefreshToken):
		case err != nil:
			http.Error(w, "failed to lookup refresh token", http.StatusInternalServerError)
			return
		case record.UserID == userID && record.RevokedAt == nil:
			if err := h.refresh.Revoke(r.Context(), record.ID); err != nil {
				http.Error(w, "failed to revoke refresh token", http.StatusInternalServerError)
				return
			}
		}
	}
	httpx.WriteMessage(w, http.StatusOK, "Logout successful")
}

// CheckSession reports whether the request carries a valid access token.
func (h *AuthHandler) CheckSession(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	p, err := httpx.Authenticate(r, h.verifier)
	if err != nil {
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]bool{"logged_in": false})
		return
	}
	user, err := h.users.GetByID(r.Context(), p.UserID)
	if err != nil {
		if storage.IsNotFound(err) {
			httpx.WriteJSON(w, http.StatusUnauthorized, map[string]bool{"logged_in": false})
			return
		}
		http.Error(w, "failed to lookup user", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"logged_in": true,
		"user":      toUserResponse(user),
	})
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, r *http.Request, user model.User, message string) {
	access, err := h.issuer.Issue(strconv.FormatInt(user.ID, 10), user.Username)
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	refresh, err := h.issueRefreshToken(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "failed to issue refresh token", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Message:      message,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		User:         toUserResponse(user),
	})
}

func (h *AuthHandler) issueRefreshToken(ctx context.Context, userID int64) (string, error) {
	raw, err := sessions.NewToken()
	if err != nil {
		return "", err
	}
	if _, err := h.refresh.Create(ctx, userID, raw, h.now().Add(h.refreshTTL)); err != nil {
		return "", err
	}
	return raw, nil
}

func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash string, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}
