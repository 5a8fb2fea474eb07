package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/authz"
	"github.com/stanstork/stratum-spaces/internal/models"
	"github.com/stanstork/stratum-spaces/internal/repository"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	accounts  repository.AccountRepository
	jwtSecret string
	logger    zerolog.Logger
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	PublicKey string `json:"pubkey"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(accounts repository.AccountRepository, jwtSecret string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		jwtSecret: jwtSecret,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	email := models.NormalizeEmail(req.Email)
	if !models.LooksLikeEmail(email) || strings.TrimSpace(req.Password) == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	account, err := h.accounts.CreateAccount(email, req.Password, strings.TrimSpace(req.PublicKey))
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, models.ErrInvalidPublicKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error().Err(err).Str("email", email).Msg("signup failed")
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.accounts.AuthenticateAccount(req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			h.logger.Debug().Err(err).Msg("login rejected")
		}
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	token, err := IssueToken(h.jwtSecret, account, time.Now())
	if err != nil {
		http.Error(w, "Failed to generate token: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// IssueToken signs an HS256 token for account, valid for a day from now.
func IssueToken(secret string, account models.Account, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func (h *AuthHandler) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}
		accountID, ok := claims["sub"].(string)
		if !ok || accountID == "" {
			http.Error(w, "Missing token claim", http.StatusUnauthorized)
			return
		}
		email, _ := claims["email"].(string)

		ctx := authz.WithIdentity(r.Context(), accountID, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
