package auth

import (
	"context"
	"testing"
	"time"

	"github.com/notemate/notemate/internal/email"
	"github.com/notemate/notemate/internal/errs"
	"github.com/notemate/notemate/internal/testdb"
)

func setupUserService(t *testing.T) (*UserService, *email.MockEmailService) {
	t.Helper()
	database, err := testdb.NewInMemory()
	if err != nil {
		t.Fatalf("failed to create in-memory database: %v", err)
	}
	tokens := newTestTokens(t, testSecret, time.Hour)
	mock := email.NewMockEmailService()
	return NewUserService(database, tokens, mock), mock
}

func TestSignup_CreatesUserAndSendsWelcome(t *testing.T) {
	t.Parallel()
	svc, mock := setupUserService(t)
	ctx := context.Background()

	result, err := svc.Signup(ctx, "Alice", "Alice@Example.COM", "s3cret")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if result.Token == "" || result.UserID == "" {
		t.Fatalf("result = %+v", result)
	}

	user, err := svc.GetMe(ctx, result.UserID)
	if err != nil {
		t.Fatalf("GetMe failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatal("password stored in the clear")
	}

	if mock.Count() != 1 {
		t.Fatalf("welcome email count = %d, want 1", mock.Count())
	}
	sent := mock.LastEmail()
	if sent.To != "alice@example.com" || sent.Template != email.TemplateWelcome {
		t.Fatalf("welcome email = %+v", sent)
	}
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()
	svc, _ := setupUserService(t)
	ctx := context.Background()

	cases := []struct {
		name, userName, email, password string
	}{
		{"empty name", "", "a@b.com", "pw"},
		{"empty email", "Alice", "", "pw"},
		{"email without at", "Alice", "not-an-email", "pw"},
		{"empty password", "Alice", "a@b.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.userName, tc.email, tc.password)
			if errs.CodeOf(err) != errs.InvalidArgument {
				t.Fatalf("code = %v, want invalid_argument", errs.CodeOf(err))
			}
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _ := setupUserService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Alice", "a@b.com", "pw"); err != nil {
		t.Fatalf("first Signup failed: %v", err)
	}

	// Same address, different case: still a conflict.
	_, err := svc.Signup(ctx, "Alice Again", "A@B.com", "pw2")
	if errs.CodeOf(err) != errs.FailedPrecondition {
		t.Fatalf("code = %v, want failed_precondition", errs.CodeOf(err))
	}
	if errs.MessageOf(err) != "user already exists" {
		t.Fatalf("message = %q", errs.MessageOf(err))
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	svc, _ := setupUserService(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, "Alice", "a@b.com", "correct horse")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	result, err := svc.Login(ctx, "a@b.com", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.UserID != signedUp.UserID {
		t.Fatalf("UserID = %q, want %q", result.UserID, signedUp.UserID)
	}

	// Wrong password and unknown email are indistinguishable.
	_, wrongPw := svc.Login(ctx, "a@b.com", "battery staple")
	_, unknown := svc.Login(ctx, "nobody@b.com", "whatever")
	for _, err := range []error{wrongPw, unknown} {
		if errs.CodeOf(err) != errs.Unauthenticated {
			t.Fatalf("code = %v, want unauthenticated", errs.CodeOf(err))
		}
		if errs.MessageOf(err) != "invalid credentials" {
			t.Fatalf("message = %q", errs.MessageOf(err))
		}
	}
}

func TestGetMe_UnknownUser(t *testing.T) {
	t.Parallel()
	svc, _ := setupUserService(t)

	_, err := svc.GetMe(context.Background(), "no-such-user")
	if errs.CodeOf(err) != errs.NotFound {
		t.Fatalf("code = %v, want not_found", errs.CodeOf(err))
	}
}
