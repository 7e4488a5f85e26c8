package board

import (
	"context"
	"log/slog"
	"strings"

	"board/internal/database"
	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterUser creates a member account. A blank nickname defaults to the username.
func (s *Service) RegisterUser(ctx context.Context, username, email, password, nickname string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if strings.TrimSpace(nickname) == "" {
		nickname = username
	}
	if err := validateRegistration(username, email, password, nickname); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "failed to hash password", err)
	}

	now := s.now()
	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		Nickname:       nickname,
		HashedPassword: string(hashedPassword),
		Role:           models.RoleMember,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.store.InTx(ctx, func(r database.Repository) error {
		if _, err := r.GetUserByUsername(ctx, username); err == nil {
			return utils.NewAppError(utils.ErrDuplicate, "username is already taken", nil)
		} else if !utils.IsErrorCode(err, utils.ErrNotFound) {
			return err
		}
		if _, err := r.GetUserByEmail(ctx, email); err == nil {
			return utils.NewAppError(utils.ErrDuplicate, "email is already in use", nil)
		} else if !utils.IsErrorCode(err, utils.ErrNotFound) {
			return err
		}
		return r.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials and stamps the login time.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user *models.User
	err := s.store.InTx(ctx, func(r database.Repository) error {
		var err error
		user, err = r.GetUserByUsername(ctx, strings.TrimSpace(username))
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return utils.NewUnauthorizedError("invalid username or password")
		}
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
			return utils.NewUnauthorizedError("invalid username or password")
		}

		now := s.now()
		user.LastLoginAt = &now
		user.UpdatedAt = now
		return r.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResolveUser loads the acting user behind an authenticated credential.
func (s *Service) ResolveUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, utils.NewUnauthorizedError("unknown user")
	}
	return user, err
}

// UpdateProfile changes the acting user's nickname and email. Empty
// arguments leave the field unchanged.
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, nickname, email string) (*models.User, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	var updated *models.User
	err := s.store.InTx(ctx, func(r database.Repository) error {
		current, err := r.GetUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if nickname = strings.TrimSpace(nickname); nickname != "" {
			if err := requireText("nickname", nickname, MaxNicknameLength); err != nil {
				return err
			}
			current.Nickname = nickname
		}
		if email = strings.TrimSpace(email); email != "" && email != current.Email {
			if err := validateEmail(email); err != nil {
				return err
			}
			if _, err := r.GetUserByEmail(ctx, email); err == nil {
				return utils.NewAppError(utils.ErrDuplicate, "email is already in use", nil)
			} else if !utils.IsErrorCode(err, utils.ErrNotFound) {
				return err
			}
			current.Email = email
		}
		current.UpdatedAt = s.now()
		updated = current
		return r.UpdateUser(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetProfile returns a user with their live post and comment counts.
func (s *Service) GetProfile(ctx context.Context, username string) (*models.UserProfile, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.CountPostsByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.CountCommentsByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{User: user, PostCount: posts, CommentCount: comments}, nil
}

// EnsureModerator promotes the named user at startup so a fresh deployment
// has someone able to assign roles. Unknown usernames are left alone.
func (s *Service) EnsureModerator(ctx context.Context, username string) error {
	return s.store.InTx(ctx, func(r database.Repository) error {
		user, err := r.GetUserByUsername(ctx, username)
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			slog.Warn("Bootstrap moderator not registered yet", "username", username)
			return nil
		}
		if err != nil {
			return err
		}
		if user.IsModerator() {
			return nil
		}
		user.Role = models.RoleModerator
		user.UpdatedAt = s.now()
		slog.Info("Promoted bootstrap moderator", "username", username)
		return r.UpdateUser(ctx, user)
	})
}
