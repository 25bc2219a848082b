package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"storefinder/models"
	"storefinder/repositories"
	"storefinder/utils/errors"

	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = time.Hour

// ResetService drives the password-reset state machine: request issues a
// time-limited token, validate checks it, complete consumes it.
type ResetService struct {
	users   repositories.UserRepository
	auth    *AuthService
	mailer  Mailer
	baseURL string
}

func NewResetService(users repositories.UserRepository, auth *AuthService, mailer Mailer, baseURL string) *ResetService {
	return &ResetService{
		users:   users,
		auth:    auth,
		mailer:  mailer,
		baseURL: baseURL,
	}
}

// RequestReset issues a reset token for the account and emails the reset
// link. The token is persisted before the email goes out; a persistence
// failure means nothing is dispatched.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return errors.ErrUserNotFound
	}

	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return errors.Wrap(err, "TOKEN_ERROR", "failed to generate reset token", errors.ErrInternal.Status)
	}
	token := hex.EncodeToString(b)
	expiry := time.Now().Add(resetTokenTTL)

	if err := s.users.SetResetToken(ctx, user.ID.Hex(), token, expiry); err != nil {
		return errors.ErrPersistenceFailed
	}

	resetURL := fmt.Sprintf("%s/account/reset/%s", s.baseURL, token)
	err = s.mailer.Send(user.Email, "Password reset", "password-reset", map[string]string{
		"Name":     user.Name,
		"ResetURL": resetURL,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrNotificationFailed.Code, errors.ErrNotificationFailed.Message, errors.ErrNotificationFailed.Status)
	}
	return nil
}

// ValidateToken resolves a reset token to its user. Expiry is strict: a
// token whose expiry equals the current instant has already expired. Wrong
// and expired tokens are indistinguishable to the caller.
func (s *ResetService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	user, err := s.users.GetByResetToken(ctx, token, time.Now())
	if err != nil {
		return nil, errors.ErrTokenInvalidOrExpired
	}
	return user, nil
}

// ConfirmPasswords checks the password against its confirmation.
func ConfirmPasswords(password, confirm string) error {
	if password != confirm {
		return errors.ErrPasswordMismatch
	}
	return nil
}

// CompleteReset consumes the token: it re-validates, stores the new password
// hash, clears the reset state and logs the user in. The token cannot be
// used again afterwards.
func (s *ResetService) CompleteReset(ctx context.Context, token, newPassword string) (*models.User, string, error) {
	user, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, "", err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errors.Wrap(err, "HASH_ERROR", "failed to hash password", errors.ErrInternal.Status)
	}
	if err := s.users.SetPassword(ctx, user.ID.Hex(), string(passwordHash)); err != nil {
		return nil, "", errors.ErrPersistenceFailed
	}
	user.PasswordHash = string(passwordHash)
	user.ResetToken = ""
	user.ResetExpiry = time.Time{}

	sessionToken, err := s.auth.EstablishSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, sessionToken, nil
}
