// internal/middleware/jwt.go
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"board/internal/models"
	"board/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "board-api"

// Claims represents the JWT claims for our application
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates HS256 tokens with a configured secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a new JWT token for the given user ID
func (m *TokenManager) GenerateToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(m.ttl)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expirationTime, nil
}

// ValidateToken validates the provided JWT token. Expiry is checked by the parser.
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// UserResolver loads the user behind a validated token.
type UserResolver interface {
	ResolveUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticator turns bearer tokens into an acting user on the request context.
type Authenticator struct {
	Tokens *TokenManager
	Users  UserResolver
}

// RequireUser rejects requests without a valid token.
func (a *Authenticator) RequireUser(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		if err == nil && user == nil {
			err = utils.NewUnauthorizedError("authorization header required")
		}
		if err != nil {
			writeAuthError(w, err)
			return
		}
		handler(w, r.WithContext(SetUserInContext(r.Context(), user)))
	}
}

// OptionalUser resolves the user when a token is present and lets anonymous
// requests through. A present but invalid token is still rejected.
func (a *Authenticator) OptionalUser(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		if user != nil {
			r = r.WithContext(SetUserInContext(r.Context(), user))
		}
		handler(w, r)
	}
}

// authenticate returns (nil, nil) when the request carries no token.
func (a *Authenticator) authenticate(r *http.Request) (*models.User, error) {
	tokenString, err := extractToken(r)
	if err != nil || tokenString == "" {
		return nil, err
	}

	claims, err := a.Tokens.ValidateToken(tokenString)
	if err != nil {
		slog.Debug("JWT validation failed", "error", err)
		return nil, utils.NewAppError(utils.ErrInvalidToken, "invalid token", err)
	}
	return a.Users.ResolveUser(r.Context(), claims.UserID)
}

// extractToken reads a bearer token from the Authorization header, or from
// the token query parameter for websocket upgrades.
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return r.URL.Query().Get("token"), nil
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", utils.NewUnauthorizedError("invalid authorization format")
	}
	return strings.TrimPrefix(authHeader, "Bearer "), nil
}

func writeAuthError(w http.ResponseWriter, err error) {
	status, code := utils.ErrorStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": err.Error()})
}

// Define a custom context key type to avoid collisions
type contextKey string

// UserKey is the key used to store the acting user in the context
const UserKey contextKey = "user"

// SetUserInContext saves the acting user in the request context
func SetUserInContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUserFromContext retrieves the acting user from the context
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}
