package service

import (
	"testing"

	"tavolo/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type fakeOwnerRepo struct {
	owner   *repository.Owner
	created []string
}

func (f *fakeOwnerRepo) GetByEmail(email string) (*repository.Owner, error) {
	if f.owner != nil && f.owner.Email == email {
		return f.owner, nil
	}
	return nil, nil
}

func (f *fakeOwnerRepo) CreateNewOwner(email, _ string) error {
	f.created = append(f.created, email)
	return nil
}

func TestOwnerLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	repo := &fakeOwnerRepo{owner: &repository.Owner{ID: 7, Email: "mario@example.com", PasswordHash: string(hash)}}
	svc := NewOwnerAuthService(repo)

	tokenString, err := svc.Login("mario@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("expected a valid token, got %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if id, ok := claims["owner_id"].(float64); !ok || int(id) != 7 {
		t.Fatalf("expected owner_id 7 in claims, got %v", claims["owner_id"])
	}

	if _, err := svc.Login("mario@example.com", "wrong password"); err == nil {
		t.Fatal("expected login with a wrong password to fail")
	}
	if _, err := svc.Login("nobody@example.com", "correct horse"); err == nil {
		t.Fatal("expected login for an unknown owner to fail")
	}
}

func TestCreateOwner(t *testing.T) {
	repo := &fakeOwnerRepo{}
	svc := NewOwnerAuthService(repo)

	if err := svc.CreateOwner("mario@example.com", "longenough"); err != nil {
		t.Fatalf("CreateOwner failed: %v", err)
	}
	if len(repo.created) != 1 || repo.created[0] != "mario@example.com" {
		t.Fatalf("expected one owner created, got %v", repo.created)
	}

	if err := svc.CreateOwner("", "longenough"); err == nil {
		t.Fatal("expected an empty email to fail")
	}
	if err := svc.CreateOwner("mario@example.com", "short"); err == nil {
		t.Fatal("expected a short password to fail")
	}
}
