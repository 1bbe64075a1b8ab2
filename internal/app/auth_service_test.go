package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"converter/internal/app"
	"converter/internal/domain"
)

func userWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &domain.User{ID: 1, Username: "testuser", PasswordHash: string(hash)}
}

func TestAuthService_Login_Success(t *testing.T) {
	user := userWithPassword(t, "testpass123")
	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}
	sessions := &mockSessionRepo{
		createFn: func(_ context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
			if userID != 1 {
				t.Errorf("userID = %d, want 1", userID)
			}
			if token == "" {
				t.Error("empty token")
			}
			if userAgent != "curl/8" || ip != "10.0.0.1" {
				t.Errorf("userAgent, ip = %q, %q", userAgent, ip)
			}
			if !expiresAt.After(time.Now()) {
				t.Errorf("expiresAt %v is not in the future", expiresAt)
			}
			return nil
		},
	}

	svc := app.NewAuthService(users, sessions)
	token, err := svc.Login(context.Background(), "testuser", "testpass123", "curl/8", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Error("Login() returned empty token")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	user := userWithPassword(t, "correctpass")
	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}

	svc := app.NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "testuser", "wrongpass", "", "")
	if !errors.Is(err, app.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_Login_UnknownOrSSOUser(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, string) (*domain.User, error)
	}{
		{"lookup error", func(context.Context, string) (*domain.User, error) { return nil, errors.New("boom") }},
		{"no user", func(context.Context, string) (*domain.User, error) { return nil, nil }},
		{"sso user without password", func(context.Context, string) (*domain.User, error) {
			return &domain.User{ID: 3, Username: "sso"}, nil
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := app.NewAuthService(&mockUserRepo{getByUsernameFn: tc.fn}, &mockSessionRepo{})
			_, err := svc.Login(context.Background(), "u", "", "", "")
			if !errors.Is(err, app.ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuthService_ValidateSession_Valid(t *testing.T) {
	sessions := &mockSessionRepo{
		getByTokenFn: func(_ context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{Token: tok, UserID: 1, UserAgent: "ua", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	users := &mockUserRepo{
		getByIDFn: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, Username: "testuser"}, nil
		},
	}

	svc := app.NewAuthService(users, sessions)
	user, err := svc.ValidateSession(context.Background(), "validtoken", "ua")
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("Username = %q, want testuser", user.Username)
	}
}

func TestAuthService_ValidateSession_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		session *domain.Session
		ua      string
		want    error
		deleted bool
	}{
		{"missing", nil, "ua", app.ErrSessionNotFound, false},
		{"expired", &domain.Session{UserID: 1, UserAgent: "ua", ExpiresAt: time.Now().Add(-time.Hour)}, "ua", app.ErrSessionExpired, true},
		{"other user agent", &domain.Session{UserID: 1, UserAgent: "ua", ExpiresAt: time.Now().Add(time.Hour)}, "stolen", app.ErrSessionExpired, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deleted := false
			sessions := &mockSessionRepo{
				getByTokenFn: func(context.Context, string) (*domain.Session, error) { return tc.session, nil },
				deleteFn: func(context.Context, string) error {
					deleted = true
					return nil
				},
			}
			svc := app.NewAuthService(&mockUserRepo{}, sessions)

			_, err := svc.ValidateSession(context.Background(), "tok", tc.ua)
			if !errors.Is(err, tc.want) {
				t.Errorf("ValidateSession() error = %v, want %v", err, tc.want)
			}
			if deleted != tc.deleted {
				t.Errorf("session deleted = %v, want %v", deleted, tc.deleted)
			}
		})
	}
}

func TestAuthService_CreateInitialUser_Success(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(_ context.Context, username, passwordHash string) (*domain.User, error) {
			if username != "admin" {
				t.Errorf("username = %q, want admin", username)
			}
			if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("password123")); err != nil {
				t.Errorf("stored hash does not match: %v", err)
			}
			return &domain.User{ID: 1, Username: username}, nil
		},
	}

	svc := app.NewAuthService(users, &mockSessionRepo{})
	if err := svc.CreateInitialUser(context.Background(), "admin", "password123"); err != nil {
		t.Fatalf("CreateInitialUser() error = %v", err)
	}
}

func TestAuthService_CreateInitialUser_UsersExist(t *testing.T) {
	users := &mockUserRepo{
		countFn: func(context.Context) (int, error) { return 1, nil },
	}

	svc := app.NewAuthService(users, &mockSessionRepo{})
	err := svc.CreateInitialUser(context.Background(), "admin", "password123")
	if !errors.Is(err, app.ErrUsersExist) {
		t.Errorf("CreateInitialUser() error = %v, want ErrUsersExist", err)
	}
}

func TestAuthService_CreateInitialUser_MissingFields(t *testing.T) {
	svc := app.NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	if err := svc.CreateInitialUser(context.Background(), "admin", ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestAuthService_ValidateForwardAuth_ExistingUser(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: username}, nil
		},
		createFn: func(context.Context, string, string) (*domain.User, error) {
			t.Fatal("existing user must not be recreated")
			return nil, nil
		},
	}

	svc := app.NewAuthService(users, &mockSessionRepo{})
	user, err := svc.ValidateForwardAuth(context.Background(), "ssouser")
	if err != nil {
		t.Fatalf("ValidateForwardAuth() error = %v", err)
	}
	if user.Username != "ssouser" {
		t.Errorf("Username = %q, want ssouser", user.Username)
	}
}

func TestAuthService_ValidateForwardAuth_NewUser(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(context.Context, string) (*domain.User, error) { return nil, nil },
		createFn: func(_ context.Context, username, passwordHash string) (*domain.User, error) {
			if passwordHash != "" {
				t.Errorf("forward-auth user created with password hash %q", passwordHash)
			}
			return &domain.User{ID: 2, Username: username}, nil
		},
	}

	svc := app.NewAuthService(users, &mockSessionRepo{})
	user, err := svc.ValidateForwardAuth(context.Background(), "newssouser")
	if err != nil {
		t.Fatalf("ValidateForwardAuth() error = %v", err)
	}
	if user.ID != 2 {
		t.Errorf("ID = %d, want 2", user.ID)
	}

	if _, err := svc.ValidateForwardAuth(context.Background(), ""); err == nil {
		t.Error("expected error for empty username")
	}
}

func TestAuthService_LoginWithUser_CreateRace(t *testing.T) {
	lookups := 0
	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, username string) (*domain.User, error) {
			lookups++
			if lookups == 1 {
				return nil, nil
			}
			return &domain.User{ID: 9, Username: username}, nil
		},
		createFn: func(context.Context, string, string) (*domain.User, error) {
			return nil, errors.New("duplicate key")
		},
	}
	var sessionUser int64
	sessions := &mockSessionRepo{
		createFn: func(_ context.Context, userID int64, _, _, _ string, _ time.Time) error {
			sessionUser = userID
			return nil
		},
	}

	svc := app.NewAuthService(users, sessions)
	token, err := svc.LoginWithUser(context.Background(), "a@example.com", "ua", "ip")
	if err != nil {
		t.Fatalf("LoginWithUser() error = %v", err)
	}
	if token == "" {
		t.Error("LoginWithUser() returned empty token")
	}
	if sessionUser != 9 {
		t.Errorf("session user = %d, want 9", sessionUser)
	}
}

func TestAuthService_Logout(t *testing.T) {
	var got string
	sessions := &mockSessionRepo{
		deleteFn: func(_ context.Context, tok string) error {
			got = tok
			return nil
		},
	}
	svc := app.NewAuthService(&mockUserRepo{}, sessions)
	if err := svc.Logout(context.Background(), "abc"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if got != "abc" {
		t.Errorf("deleted token = %q, want abc", got)
	}
}
