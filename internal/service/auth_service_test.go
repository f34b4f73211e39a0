package service

import (
	"context"
	"testing"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/repository/memory"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

func newTestAuthService() *AuthService {
	return NewAuthService(config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4}, memory.New().Users())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, token, signed, err := svc.Register(ctx, "Ada", " Ada@Example.com ", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "ada@example.com" || user.PasswordHash == "correct horse" {
		t.Errorf("unexpected user %+v", user)
	}
	if token.SubjectID != user.ID || signed == "" {
		t.Errorf("unexpected token %+v", token)
	}

	claims, err := svc.TokenManager().ParseToken(signed)
	if err != nil || claims.UserID != user.ID {
		t.Fatalf("issued token does not parse: %v %+v", err, claims)
	}

	if _, _, _, err := svc.Login(ctx, "ada@example.com", "correct horse"); err != nil {
		t.Errorf("Login failed: %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("wrong password should be Unauthorized, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "x"); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("unknown email should be Unauthorized, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()
	if _, _, _, err := svc.Register(ctx, "Ada", "ada@example.com", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, _, _, err := svc.Register(ctx, "Other", "ADA@example.com", "pw"); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT, got %v", err)
	}
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	svc := newTestAuthService()
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	if _, _, _, err := svc.Register(context.Background(), "Ada", "ada@example.com", string(long)); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_FAILED, got %v", err)
	}
}
