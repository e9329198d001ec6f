package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/username/partsviewer/backend/src/database"
	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/model"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrWeakCredentials    = errors.New("username and a password of at least 6 characters are required")
)

// Claims carries the user id in sub and the role used by admin-only routes.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	JWTSecret   string
	TokenExpiry time.Duration
	store       *database.Store
}

func NewAuthService(secret string, expiry time.Duration, store *database.Store) *AuthService {
	return &AuthService{JWTSecret: secret, TokenExpiry: expiry, store: store}
}

func (a *AuthService) GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.TokenExpiry)),
			// Two logins in the same second would otherwise mint identical tokens.
			ID: fmt.Sprintf("%d", now.UnixNano()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

// ValidateToken checks signature and expiry and returns the embedded claims.
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Register creates a viewer account.
func (a *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	return a.createUser(ctx, username, email, password, model.RoleViewer)
}

// EnsureAdmin creates the bootstrap admin when no account exists yet.
func (a *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}
	n, err := model.CountUsers(ctx, a.store.DB())
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	u, err := a.createUser(ctx, username, "", password, model.RoleAdmin)
	if err != nil {
		return err
	}
	logger.L.Info("Bootstrap admin created", "username", u.Username)
	return nil
}

func (a *AuthService) createUser(ctx context.Context, username, email, password, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < minPasswordLength {
		return nil, ErrWeakCredentials
	}
	u := &model.User{Username: username, Email: strings.TrimSpace(email), Role: role}
	if err := u.HashPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := model.CreateUser(ctx, a.store.DB(), u); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// Login verifies the password, then issues a token and records it as a
// session so logout can revoke it before expiry.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	u, err := model.GetUserByUsername(ctx, a.store.DB(), strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := u.CheckPassword(password); err != nil {
		logger.L.Info("Login failed: password mismatch", "username", u.Username)
		return "", nil, ErrInvalidCredentials
	}

	token, err := a.GenerateToken(u.ID, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	session := &model.Session{UserID: u.ID, Token: token, ExpiresAt: time.Now().Add(a.TokenExpiry)}
	if err := model.CreateSession(ctx, a.store.DB(), session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}
	logger.L.Info("User logged in", "userID", u.ID, "role", u.Role)
	return token, u, nil
}

// Authenticate validates the token and requires a live session for it.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := a.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if _, err := model.GetSessionByToken(ctx, a.store.DB(), token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (a *AuthService) Logout(ctx context.Context, token string) error {
	return model.DeleteSessionByToken(ctx, a.store.DB(), token)
}
