package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/infra/http/middleware"
	"github.com/xavierca1/lead-capture/internal/usecase"
)

const tokenTTL = 30 * time.Minute

// AuthHandler registers operator accounts and issues the JWTs that protect
// the lead and analytics endpoints.
type AuthHandler struct {
	users  usecase.UserRepositoryInterface
	secret []byte
}

func NewAuthHandler(users usecase.UserRepositoryInterface, secret []byte) *AuthHandler {
	return &AuthHandler{users: users, secret: secret}
}

type RegisterRequest struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user, err := entity.NewUser(req.TenantID, req.Email, string(hash))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, entity.ErrUserExists) {
			respondError(w, http.StatusBadRequest, "Email already registered for this tenant")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, UserResponse{
		ID:        user.ID,
		TenantID:  user.TenantID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

type TokenRequest struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.users.FindUserByEmail(r.Context(), req.TenantID, req.Email)
	if err != nil {
		// Same answer for unknown user and bad password.
		respondError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	now := time.Now()
	claims := middleware.Claims{
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to sign token")
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
	})
}
