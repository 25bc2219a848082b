package services

import (
	"context"
	"strings"
	"time"

	"storefinder/models"
	"storefinder/repositories"
	"storefinder/utils/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService is the session/auth gate: it registers accounts, verifies
// credentials and establishes or revokes sessions.
type AuthService struct {
	users      repositories.UserRepository
	sessions   SessionStore
	jwtSecret  string
	sessionTTL time.Duration
}

func NewAuthService(users repositories.UserRepository, sessions SessionStore, jwtSecret string) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		jwtSecret:  jwtSecret,
		sessionTTL: 24 * time.Hour,
	}
}

// NormalizeEmail lower-cases and trims an email address. Every email lookup
// in the system goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user and logs them straight in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	email = NormalizeEmail(email)
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", errors.NewAPIError("EMAIL_TAKEN", "An account with that email already exists", errors.ErrConflict.Status)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errors.Wrap(err, "HASH_ERROR", "failed to hash password", errors.ErrInternal.Status)
	}

	user := &models.User{
		PublicID:     uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(passwordHash),
		Hearts:       []string{},
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.EstablishSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the credentials and returns a session token. Both a missing
// account and a wrong password surface the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, "", errors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", errors.ErrInvalidCredentials
	}

	token, err := s.EstablishSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// EstablishSession issues a signed token bound to a fresh session id and
// records the session. Also used by the reset flow's auto-login.
func (s *AuthService) EstablishSession(ctx context.Context, user *models.User) (string, error) {
	sid := uuid.New().String()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": user.ID.Hex(),
		"sid":    sid,
		"exp":    time.Now().Add(s.sessionTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", errors.Wrap(err, "JWT_ERROR", "failed to generate token", errors.ErrInternal.Status)
	}
	if err := s.sessions.Put(ctx, sid, user, s.sessionTTL); err != nil {
		return "", errors.Wrap(err, "SESSION_ERROR", "failed to store session", errors.ErrInternal.Status)
	}
	return tokenString, nil
}

// Session resolves an active session id to its user. Revoked or expired
// sessions fail with ErrUnauthenticated.
func (s *AuthService) Session(ctx context.Context, sid string) (*models.User, error) {
	user, err := s.sessions.Get(ctx, sid)
	if err != nil {
		return nil, errors.ErrUnauthenticated
	}
	return user, nil
}

// Logout revokes the session. Revoking twice is harmless.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.sessions.Delete(ctx, sid)
}

// User fetches a user by id.
func (s *AuthService) User(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateAccount changes the user's display name and email.
func (s *AuthService) UpdateAccount(ctx context.Context, userID, name, email string) (*models.User, error) {
	return s.users.UpdateAccount(ctx, userID, name, NormalizeEmail(email))
}
