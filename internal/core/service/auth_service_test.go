package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

func newTestAuthService() (*AuthService, *stubUserRepo) {
	repo := newStubUserRepo()
	return NewAuthService(repo, "secret", time.Hour, discardLogger), repo
}

func validRegisterInput() ports.RegisterInput {
	return ports.RegisterInput{
		Name:       "Alice",
		Email:      "Alice@Campus.edu ",
		Password:   "pass123",
		Department: "Chemistry",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo := newTestAuthService()

	token, user, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected token, got empty string")
	}
	if user.Role != domain.RoleStudent {
		t.Errorf("expected role student, got %s", user.Role)
	}
	if user.Email != "alice@campus.edu" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}

	stored := repo.byID[user.ID]
	if stored.PasswordHash == "pass123" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	if _, _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	input := validRegisterInput()
	input.Email = "ALICE@campus.edu"
	_, _, err := svc.Register(context.Background(), input)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ports.RegisterInput)
	}{
		{"missing name", func(in *ports.RegisterInput) { in.Name = " " }},
		{"bad email", func(in *ports.RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *ports.RegisterInput) { in.Password = "123" }},
		{"password over 72 bytes", func(in *ports.RegisterInput) { in.Password = strings.Repeat("a", 80) }},
		{"multibyte password over 72 bytes", func(in *ports.RegisterInput) { in.Password = strings.Repeat("é", 40) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestAuthService()
			input := validRegisterInput()
			tt.mutate(&input)

			_, _, err := svc.Register(context.Background(), input)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if len(repo.byID) != 0 {
				t.Error("no user should be created")
			}
		})
	}
}

func TestAuthService_Register_PasswordAtBcryptLimit(t *testing.T) {
	svc, _ := newTestAuthService()
	input := validRegisterInput()
	input.Password = strings.Repeat("a", 72)

	if _, _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("72-byte password should be accepted, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), input.Email, input.Password); err != nil {
		t.Errorf("expected login with 72-byte password, got %v", err)
	}
}

func TestHashPassword_TooLongIsValidation(t *testing.T) {
	_, err := hashPassword(strings.Repeat("x", 73))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := newTestAuthService()
	_, registered, _ := svc.Register(context.Background(), validRegisterInput())

	token, user, err := svc.Login(context.Background(), "alice@campus.edu", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("expected user %s, got %s", registered.ID, user.ID)
	}

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != registered.ID {
		t.Errorf("expected sub %s, got %v", registered.ID, claims["sub"])
	}
	if claims["role"] != domain.RoleStudent {
		t.Errorf("expected role claim student, got %v", claims["role"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Error("expected exp claim")
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService()
	_, _, _ = svc.Register(context.Background(), validRegisterInput())

	cases := map[string][2]string{
		"wrong password": {"alice@campus.edu", "wrong"},
		"unknown email":  {"bob@campus.edu", "pass123"},
		"empty":          {"", ""},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := svc.Login(context.Background(), c[0], c[1]); !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, _ := newTestAuthService()
	_, user, _ := svc.Register(context.Background(), validRegisterInput())
	requester := domain.Requester{ID: user.ID, Role: user.Role}

	updated, err := svc.UpdateProfile(context.Background(), requester, ports.ProfileUpdate{
		Department: ptr(" Biology "),
		Password:   ptr("newpass1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Department != "Biology" || updated.Name != "Alice" {
		t.Errorf("unexpected profile %+v", updated)
	}
	if _, _, err := svc.Login(context.Background(), "alice@campus.edu", "newpass1"); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}

	if _, err := svc.UpdateProfile(context.Background(), requester, ports.ProfileUpdate{Name: ptr("")}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for empty name, got %v", err)
	}
	if _, err := svc.UpdateProfile(context.Background(), requester, ports.ProfileUpdate{Password: ptr(strings.Repeat("p", 80))}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for an 80-byte password, got %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc, _ := newTestAuthService()
	_, user, _ := svc.Register(context.Background(), validRegisterInput())

	me, err := svc.Me(context.Background(), domain.Requester{ID: user.ID, Role: user.Role})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if me.Email != "alice@campus.edu" {
		t.Errorf("unexpected user %+v", me)
	}
	if _, err := svc.Me(context.Background(), domain.Requester{ID: "ghost"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	svc, repo := newTestAuthService()

	if u, err := svc.EnsureAdmin(context.Background(), "", "", ""); err != nil || u != nil {
		t.Fatalf("expected no-op without credentials, got %v / %v", u, err)
	}

	admin, err := svc.EnsureAdmin(context.Background(), "Facilities", "ops@campus.edu", "adminpass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Errorf("expected admin role, got %s", admin.Role)
	}

	again, err := svc.EnsureAdmin(context.Background(), "Facilities", "ops@campus.edu", "adminpass")
	if err != nil || again.ID != admin.ID {
		t.Fatalf("expected idempotent bootstrap, got %v / %v", again, err)
	}
	if len(repo.byID) != 1 {
		t.Errorf("expected a single account, got %d", len(repo.byID))
	}
}

func TestAuthService_EnsureAdmin_PromotesExisting(t *testing.T) {
	svc, repo := newTestAuthService()
	_, student, _ := svc.Register(context.Background(), validRegisterInput())

	promoted, err := svc.EnsureAdmin(context.Background(), "", "alice@campus.edu", "whatever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if promoted.ID != student.ID || repo.byID[student.ID].Role != domain.RoleAdmin {
		t.Errorf("expected %s to be promoted, got %+v", student.ID, repo.byID[student.ID])
	}
}
