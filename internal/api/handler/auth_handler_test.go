package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

func sampleUser() *domain.User {
	return &domain.User{
		ID:           "u-student",
		Name:         "Alice",
		Email:        "alice@campus.edu",
		PasswordHash: "$2a$10$hash",
		Role:         domain.RoleStudent,
		CreatedAt:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (string, *domain.User, error) {
			if input.Name != "Alice" || input.Email != "alice@campus.edu" || input.Department != "Physics" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return "signed.jwt", sampleUser(), nil
		},
	}
	h := NewAuthHandler(stub)

	body := strings.NewReader(`{"name":"Alice","email":"alice@campus.edu","password":"secret1","department":"Physics"}`)
	c, rec := newContext(http.MethodPost, "/api/auth/register", body, domain.Requester{})

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "signed.jwt" {
		t.Errorf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatal("expected user in response")
	}
	if user["_id"] != "u-student" || user["role"] != "student" {
		t.Errorf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Error("password hash leaked into response")
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (string, *domain.User, error) {
			return "", nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"a@b.c"}`), domain.Requester{})

	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_MalformedBody(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	c, _ := newContext(http.MethodPost, "/api/auth/register", strings.NewReader(`{"name":`), domain.Requester{})

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if password != "secret1" {
				return "", nil, domain.ErrInvalidCredentials
			}
			return "signed.jwt", sampleUser(), nil
		},
	}
	h := NewAuthHandler(stub)

	t.Run("success", func(t *testing.T) {
		c, rec := newContext(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"alice@campus.edu","password":"secret1"}`), domain.Requester{})
		if err := h.Login(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"alice@campus.edu","password":"nope"}`), domain.Requester{})
		if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"alice@campus.edu"}`), domain.Requester{})
		err := h.Login(c)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if !strings.Contains(err.Error(), "password is required") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		meFn: func(ctx context.Context, requester domain.Requester) (*domain.User, error) {
			if requester != student {
				t.Fatalf("unexpected requester %+v", requester)
			}
			return sampleUser(), nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newContext(http.MethodGet, "/api/auth/me", nil, student)
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"email":"alice@campus.edu"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c, _ = newContext(http.MethodGet, "/api/auth/me", nil, domain.Requester{})
	var he *echo.HTTPError
	if err := h.Me(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without requester, got %v", err)
	}
}

func TestAuthHandler_UpdateProfile_OnlyPresentFields(t *testing.T) {
	stub := &stubAuthService{
		profileFn: func(ctx context.Context, requester domain.Requester, update ports.ProfileUpdate) (*domain.User, error) {
			if update.Name != nil || update.Password != nil {
				t.Fatalf("absent fields must stay nil: %+v", update)
			}
			if update.Department == nil || *update.Department != "" {
				t.Fatalf("expected explicit empty department, got %v", update.Department)
			}
			return sampleUser(), nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPut, "/api/auth/profile", strings.NewReader(`{"department":""}`), student)
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
