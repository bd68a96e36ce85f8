package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
)

// --- Mock Repository ---

// mockUserRepo implements UserRepository for testing.
type mockUserRepo struct {
	createFn          func(ctx context.Context, user *User) error
	findByIDFn        func(ctx context.Context, id string) (*User, error)
	findByEmailFn     func(ctx context.Context, email string) (*User, error)
	updateLastLoginFn func(ctx context.Context, id string) error
	listUsersFn       func(ctx context.Context, offset, limit int) ([]User, int, error)
	updateIsAdminFn   func(ctx context.Context, id string, isAdmin bool) error
	countAdminsFn     func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	if m.updateLastLoginFn != nil {
		return m.updateLastLoginFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) ListUsers(ctx context.Context, offset, limit int) ([]User, int, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockUserRepo) UpdateIsAdmin(ctx context.Context, id string, isAdmin bool) error {
	if m.updateIsAdminFn != nil {
		return m.updateIsAdminFn(ctx, id, isAdmin)
	}
	return nil
}

func (m *mockUserRepo) CountAdmins(ctx context.Context) (int, error) {
	if m.countAdminsFn != nil {
		return m.countAdminsFn(ctx)
	}
	return 0, nil
}

// --- Test Helpers ---

const testSessionTTL = 24 * time.Hour

// newTestAuthService creates an authService backed by a mock repo and a
// miniredis instance, so session creation and verification run against a
// real Redis protocol implementation.
func newTestAuthService(t *testing.T, repo *mockUserRepo) (*authService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return &authService{
		repo:       repo,
		redis:      rdb,
		sessionTTL: testSessionTTL,
	}, mr
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			if user.Email != "alice@example.com" {
				t.Errorf("expected email alice@example.com, got %s", user.Email)
			}
			if user.Username != "Alice" {
				t.Errorf("expected username Alice, got %s", user.Username)
			}
			if user.IsAdmin {
				t.Error("expected non-admin user")
			}
			if user.PasswordHash == "" {
				t.Error("expected password hash to be set")
			}
			return nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	user, token, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Alice@Example.com",
		Username: "Alice",
		Password: "secure-password-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID == "" {
		t.Error("expected user ID to be generated")
	}
	if token == "" {
		t.Error("expected session token to be issued")
	}

	// The issued token must verify to the same user.
	session, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify after register failed: %v", err)
	}
	if session.UserID != user.ID {
		t.Errorf("expected session for user %s, got %s", user.ID, session.UserID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			// The unique index rejects the racing insert.
			return apperror.NewDuplicateEmail()
		},
	}

	svc, _ := newTestAuthService(t, repo)
	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Username: "Test",
		Password: "secure-password-123",
	})
	assertAppError(t, err, 400)
}

func TestRegister_CreateError(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			return errors.New("db write error")
		},
	}

	svc, _ := newTestAuthService(t, repo)
	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "test@example.com",
		Username: "Test",
		Password: "secure-password-123",
	})
	assertAppError(t, err, 500)
}

func TestRegister_EmailNormalization(t *testing.T) {
	var capturedEmail string
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			capturedEmail = user.Email
			return nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Alice@EXAMPLE.com  ",
		Username: "Alice",
		Password: "secure-password-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedEmail != "alice@example.com" {
		t.Errorf("expected normalized email alice@example.com, got %s", capturedEmail)
	}
}

// --- Login Tests ---

// storedUser returns a user fixture whose password hash matches the given
// plaintext password.
func storedUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	return &User{
		ID:           "user-123",
		Email:        "alice@example.com",
		Username:     "Alice",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestLogin_Success(t *testing.T) {
	user := storedUser(t, "correct-horse-battery")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			if email != "alice@example.com" {
				t.Errorf("expected normalized lookup email, got %s", email)
			}
			return user, nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	token, got, err := svc.Login(context.Background(), LoginInput{
		Email:    "Alice@Example.COM",
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, got.ID)
	}

	session, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify after login failed: %v", err)
	}
	if session.UserID != user.ID {
		t.Errorf("expected session for %s, got %s", user.ID, session.UserID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	user := storedUser(t, "correct-horse-battery")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	_, _, err := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assertAppError(t, err, 401)
}

func TestLogin_UnknownEmailIndistinguishable(t *testing.T) {
	user := storedUser(t, "correct-horse-battery")

	unknownRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return nil, apperror.NewNotFound("user not found")
		},
	}
	wrongPassRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svcUnknown, _ := newTestAuthService(t, unknownRepo)
	svcWrong, _ := newTestAuthService(t, wrongPassRepo)

	_, _, errUnknown := svcUnknown.Login(context.Background(), LoginInput{
		Email: "nobody@example.com", Password: "whatever",
	})
	_, _, errWrong := svcWrong.Login(context.Background(), LoginInput{
		Email: "alice@example.com", Password: "wrong",
	})

	assertAppError(t, errUnknown, 401)
	assertAppError(t, errWrong, 401)

	// Same message for both failure modes: no account enumeration.
	if apperror.SafeMessage(errUnknown) != apperror.SafeMessage(errWrong) {
		t.Errorf("expected identical messages, got %q vs %q",
			apperror.SafeMessage(errUnknown), apperror.SafeMessage(errWrong))
	}
}

func TestLogin_FreshTokenPerLogin(t *testing.T) {
	user := storedUser(t, "correct-horse-battery")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	input := LoginInput{Email: "alice@example.com", Password: "correct-horse-battery"}

	token1, _, err := svc.Login(context.Background(), input)
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	token2, _, err := svc.Login(context.Background(), input)
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if token1 == token2 {
		t.Error("expected a fresh token per login")
	}
}

// --- Verify / Logout Tests ---

func TestVerify_EmptyToken(t *testing.T) {
	svc, _ := newTestAuthService(t, &mockUserRepo{})
	_, err := svc.Verify(context.Background(), "")
	assertAppError(t, err, 401)
}

func TestVerify_UnknownToken(t *testing.T) {
	svc, _ := newTestAuthService(t, &mockUserRepo{})
	_, err := svc.Verify(context.Background(), "deadbeef")
	assertAppError(t, err, 401)
}

func TestVerify_ExpiredToken(t *testing.T) {
	user := storedUser(t, "correct-horse-battery")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc, mr := newTestAuthService(t, repo)
	token, _, err := svc.Login(context.Background(), LoginInput{
		Email: "alice@example.com", Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Jump past the session TTL; the Redis key expires automatically.
	mr.FastForward(testSessionTTL + time.Minute)

	_, err = svc.Verify(context.Background(), token)
	assertAppError(t, err, 401)
}

func TestVerify_Idempotent(t *testing.T) {
	user := storedUser(t, "correct-horse-battery")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	token, _, err := svc.Login(context.Background(), LoginInput{
		Email: "alice@example.com", Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		session, err := svc.Verify(context.Background(), token)
		if err != nil {
			t.Fatalf("verify call %d failed: %v", i, err)
		}
		if session.UserID != user.ID {
			t.Errorf("verify call %d: expected user %s, got %s", i, user.ID, session.UserID)
		}
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	user := storedUser(t, "correct-horse-battery")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	token, _, err := svc.Login(context.Background(), LoginInput{
		Email: "alice@example.com", Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	_, err = svc.Verify(context.Background(), token)
	assertAppError(t, err, 401)
}

// --- Password Hashing Tests ---

func TestHashAndVerifyPassword(t *testing.T) {
	password := "my-secret-password-123"

	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}

	// Correct password should verify.
	if !verifyPassword(password, hash) {
		t.Error("expected correct password to verify")
	}

	// Wrong password should not verify.
	if verifyPassword("wrong-password", hash) {
		t.Error("expected wrong password to fail verification")
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty string", ""},
		{"random text", "not-a-hash"},
		{"too few parts", "$argon2id$v=19$m=65536"},
		{"corrupted salt", "$argon2id$v=19$m=65536,t=3,p=4$!!!invalid$aGFzaA"},
		{"corrupted hash", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$!!!invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if verifyPassword("password", tt.hash) {
				t.Error("expected invalid hash to fail verification")
			}
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := hashPassword("same-password")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	hash2, err := hashPassword("same-password")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash1 == hash2 {
		t.Error("expected different salts to produce different hashes")
	}
}
