package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/queueoverflow/queueoverflow/internal/apperror"
	"github.com/queueoverflow/queueoverflow/internal/auth"
	"github.com/queueoverflow/queueoverflow/internal/kvstore"
	"github.com/queueoverflow/queueoverflow/internal/model"
	"github.com/queueoverflow/queueoverflow/internal/session"
)

const minPasswordLength = 8

// invalidCredentials is the single message for every login failure. Unknown
// email and wrong password are indistinguishable to the caller.
const invalidCredentials = "Invalid email or password"

// UserService handles registration, login, sessions, and profile changes.
type UserService struct {
	data      *Data
	passwords *auth.PasswordService
	sessions  *session.Manager
	logger    *slog.Logger
}

func NewUserService(data *Data, passwords *auth.PasswordService, sessions *session.Manager, logger *slog.Logger) *UserService {
	return &UserService{
		data:      data,
		passwords: passwords,
		sessions:  sessions,
		logger:    logger,
	}
}

// Register creates an account and signs it in. Email and username must be
// unique; emails compare case-insensitively.
func (s *UserService) Register(ctx context.Context, username, email, password, displayName string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)

	switch {
	case username == "":
		return nil, apperror.ValidationFailed("username", "username is required")
	case email == "":
		return nil, apperror.ValidationFailed("email", "email is required")
	case password == "":
		return nil, apperror.ValidationFailed("password", "password is required")
	case displayName == "":
		return nil, apperror.ValidationFailed("display_name", "display name is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/user: hashing password: %w", err)
	}

	var created model.User
	err = s.data.Users.Update(ctx, func(users []model.User) ([]model.User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Username, username) {
				return nil, apperror.ValidationFailed("username", "Username already exists")
			}
			if strings.EqualFold(u.Email, email) {
				return nil, apperror.ValidationFailed("email", "Email already exists")
			}
		}
		created = model.User{
			ID:           kvstore.NextID(users),
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			DisplayName:  displayName,
			Reputation:   0,
			CreatedAt:    time.Now(),
			IsActive:     true,
		}
		return append(users, created), nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.EstablishUser(ctx, created.ID, true); err != nil {
		return nil, fmt.Errorf("service/user: establishing session: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", created.ID),
		slog.String("username", created.Username),
	)

	return &created, nil
}

// Login verifies credentials and establishes a session. remember routes the
// session to the long-lived store; otherwise it lives only for this process.
func (s *UserService) Login(ctx context.Context, email, password string, remember bool) (*model.User, error) {
	email = strings.TrimSpace(email)

	var logged model.User
	found := false
	err := s.data.Users.Update(ctx, func(users []model.User) ([]model.User, error) {
		for i, u := range users {
			if !strings.EqualFold(u.Email, email) {
				continue
			}
			if err := s.passwords.Verify(u.PasswordHash, password); err != nil {
				return nil, apperror.AuthFailed(invalidCredentials)
			}
			now := time.Now()
			users[i].LastLogin = &now
			logged = users[i]
			found = true
			return users, nil
		}
		return nil, apperror.AuthFailed(invalidCredentials)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.AuthFailed(invalidCredentials)
	}

	if _, err := s.sessions.EstablishUser(ctx, logged.ID, remember); err != nil {
		return nil, fmt.Errorf("service/user: establishing session: %w", err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", logged.ID))

	return &logged, nil
}

// ContinueAsGuest establishes a guest session. Guests may read and author
// content but IsAuthenticated stays false for the whole session.
func (s *UserService) ContinueAsGuest(ctx context.Context) (session.Identity, error) {
	id, err := s.sessions.EstablishGuest(ctx)
	if err != nil {
		return session.Identity{}, err
	}
	s.logger.Info("guest session started", slog.String("guestKey", id.GuestKey))
	return id, nil
}

// Logout clears the session. Entity data is untouched.
func (s *UserService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// CurrentUser returns the logged-in user, or nil for guests and signed-out
// sessions.
func (s *UserService) CurrentUser(ctx context.Context) (*model.User, error) {
	ident := s.sessions.Current()
	if ident.UserID == 0 {
		return nil, nil
	}
	return s.GetUser(ctx, ident.UserID)
}

func (s *UserService) IsAuthenticated() bool { return s.sessions.IsAuthenticated() }
func (s *UserService) IsGuest() bool         { return s.sessions.IsGuest() }

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	users, err := s.data.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

// ChangePassword overwrites the stored hash after verifying the current
// password.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperror.ValidationFailed("new_password",
			fmt.Sprintf("new password must be at least %d characters", minPasswordLength))
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/user: hashing password: %w", err)
	}

	err = s.data.Users.Update(ctx, func(users []model.User) ([]model.User, error) {
		for i, u := range users {
			if u.ID != userID {
				continue
			}
			if err := s.passwords.Verify(u.PasswordHash, current); err != nil {
				return nil, apperror.AuthFailed("Current password is incorrect")
			}
			users[i].PasswordHash = hash
			return users, nil
		}
		return nil, apperror.NotFound("user", userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("password changed", slog.Int64("userID", userID))
	return nil
}

// UpdateProfile applies the provided fields; nil means "leave unchanged".
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, displayName, bio, avatarURL *string) (*model.User, error) {
	var updated model.User
	err := s.data.Users.Update(ctx, func(users []model.User) ([]model.User, error) {
		for i, u := range users {
			if u.ID != userID {
				continue
			}
			if displayName != nil {
				name := strings.TrimSpace(*displayName)
				if name == "" {
					return nil, apperror.ValidationFailed("display_name", "display name cannot be empty")
				}
				users[i].DisplayName = name
			}
			if bio != nil {
				users[i].Bio = *bio
			}
			if avatarURL != nil {
				users[i].AvatarURL = *avatarURL
			}
			updated = users[i]
			return users, nil
		}
		return nil, apperror.NotFound("user", userID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.Int64("userID", userID))
	return &updated, nil
}

// SearchUsers matches username or display name by case-insensitive substring.
func (s *UserService) SearchUsers(ctx context.Context, term string) ([]model.UserBrief, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	users, err := s.data.Users.All(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]model.UserBrief, 0, len(users))
	for _, u := range users {
		if term == "" ||
			strings.Contains(strings.ToLower(u.Username), term) ||
			strings.Contains(strings.ToLower(u.DisplayName), term) {
			matches = append(matches, u.Brief())
		}
	}
	return matches, nil
}
