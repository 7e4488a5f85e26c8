package database

import (
	"context"

	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
)

const userColumns = `id, username, email, nickname, password_hash, role, last_login_at, created_at, updated_at`

// CreateUser inserts a new user. Username and email are unique.
func (r *repo) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Nickname,
		user.HashedPassword,
		user.Role,
		user.LastLoginAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return insertError(err, "user")
	}
	return nil
}

// GetUser fetches a user by their ID.
func (r *repo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`+r.lock, id); err != nil {
		return nil, lookupError(err, "user", id)
	}
	return &user, nil
}

func (r *repo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = ?`+r.lock, username); err != nil {
		return nil, lookupError(err, "user", stringKey(username))
	}
	return &user, nil
}

func (r *repo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = ?`, email); err != nil {
		return nil, lookupError(err, "user", stringKey(email))
	}
	return &user, nil
}

// UpdateUser writes the mutable profile fields, role and last login.
func (r *repo) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = ?, nickname = ?, role = ?, last_login_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.exec(ctx, query, user.Email, user.Nickname, user.Role, user.LastLoginAt, user.UpdatedAt, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return utils.NewAppError(utils.ErrDuplicate, "email is already in use", err)
		}
		return utils.NewAppError(utils.ErrDatabase, "failed to update user", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return utils.NewNotFoundError("user", user.ID)
	}
	return nil
}

func (r *repo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, "users", `SELECT COUNT(*) FROM users`)
}
