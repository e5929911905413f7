package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/notemate/notemate/internal/db"
	"github.com/notemate/notemate/internal/email"
	"github.com/notemate/notemate/internal/errs"
	"github.com/notemate/notemate/internal/obs"
)

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token  string
	UserID string
}

// UserService manages accounts and credentials.
type UserService struct {
	db     *db.DB
	tokens *TokenService
	email  email.EmailService
}

// NewUserService creates a user service.
func NewUserService(database *db.DB, tokens *TokenService, emailService email.EmailService) *UserService {
	return &UserService{
		db:     database,
		tokens: tokens,
		email:  emailService,
	}
}

// Signup creates an account and returns a fresh bearer token.
// The welcome email is best-effort; failures are logged, not surfaced.
func (s *UserService) Signup(ctx context.Context, name, emailAddr, password string) (AuthResult, error) {
	name = strings.TrimSpace(name)
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	if name == "" {
		return AuthResult{}, errs.New(errs.InvalidArgument, "name is required")
	}
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return AuthResult{}, errs.New(errs.InvalidArgument, "a valid email is required")
	}
	if password == "" {
		return AuthResult{}, errs.New(errs.InvalidArgument, "password is required")
	}

	if _, err := s.db.GetUserByEmail(ctx, emailAddr); err == nil {
		return AuthResult{}, errs.New(errs.FailedPrecondition, "user already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return AuthResult{}, errs.Wrap(errs.Internal, "failed to look up user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, errs.Wrap(errs.Internal, "failed to hash password", err)
	}

	user := db.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		return AuthResult{}, errs.Wrap(errs.Internal, "failed to create user", err)
	}

	token, err := s.tokens.Issue(Identity{UserID: user.ID, Name: user.Name, Email: user.Email})
	if err != nil {
		return AuthResult{}, errs.Wrap(errs.Internal, "failed to issue token", err)
	}

	if s.email != nil {
		if err := s.email.Send(user.Email, email.TemplateWelcome, email.WelcomeData{Name: user.Name}); err != nil {
			obs.From(ctx).Warn("welcome_email_failed", "error", err)
		}
	}

	return AuthResult{Token: token, UserID: user.ID}, nil
}

// Login verifies credentials and returns a fresh bearer token.
// Unknown emails and wrong passwords produce the same error.
func (s *UserService) Login(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || password == "" {
		return AuthResult{}, errs.New(errs.InvalidArgument, "email and password are required")
	}

	user, err := s.db.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AuthResult{}, errs.New(errs.Unauthenticated, "invalid credentials")
		}
		return AuthResult{}, errs.Wrap(errs.Internal, "failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, errs.New(errs.Unauthenticated, "invalid credentials")
	}

	token, err := s.tokens.Issue(Identity{UserID: user.ID, Name: user.Name, Email: user.Email})
	if err != nil {
		return AuthResult{}, errs.Wrap(errs.Internal, "failed to issue token", err)
	}

	return AuthResult{Token: token, UserID: user.ID}, nil
}

// GetMe resolves the token's user against the database. A valid token whose
// account no longer exists yields not_found, so stale sessions surface as 404
// rather than a half-authenticated state.
func (s *UserService) GetMe(ctx context.Context, userID string) (db.User, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.User{}, errs.New(errs.NotFound, "user not found")
		}
		return db.User{}, errs.Wrap(errs.Internal, "failed to look up user", err)
	}
	return user, nil
}
