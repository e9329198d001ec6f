package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// HashPassword hashes the user's password using bcrypt.
func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a given password with the user's hashed password.
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// CreateUser inserts u. New accounts are viewers unless a role is set.
func CreateUser(ctx context.Context, q DBTX, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleViewer
	}
	u.CreatedAt = now()
	_, err := q.ExecContext(ctx,
		`INSERT INTO users (id, username, password, email, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Password, u.Email, u.Role, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("error creating user %q: %w", u.Username, err)
	}
	return nil
}

// GetUserByUsername retrieves a user by username.
func GetUserByUsername(ctx context.Context, q DBTX, username string) (*User, error) {
	var u User
	var email, role sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, username, password, email, role, created_at FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.Password, &email, &role, dbTime{&u.CreatedAt})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Email = email.String
	u.Role = RoleViewer
	if role.Valid && role.String != "" {
		u.Role = role.String
	}
	return &u, nil
}

func CountUsers(ctx context.Context, q DBTX) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateSession inserts a new session into the database.
func CreateSession(ctx context.Context, q DBTX, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	session.CreatedAt = now()
	_, err := q.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.Token, formatTime(session.ExpiresAt), formatTime(session.CreatedAt))
	return err
}

// GetSessionByToken retrieves an unexpired session by its access token.
func GetSessionByToken(ctx context.Context, q DBTX, token string) (*Session, error) {
	var s Session
	err := q.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at, created_at
		FROM sessions
		WHERE token = ? AND expires_at > ?`, token, formatTime(now())).
		Scan(&s.ID, &s.UserID, &s.Token, dbTime{&s.ExpiresAt}, dbTime{&s.CreatedAt})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("session not found or expired")
		}
		return nil, err
	}
	return &s, nil
}

// DeleteSessionByToken removes a session. A missing session is not an error;
// it may already have expired.
func DeleteSessionByToken(ctx context.Context, q DBTX, token string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}
