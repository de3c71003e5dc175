package service

import (
	"errors"
	"os"
	"time"

	"tavolo/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type OwnerAuthService interface {
	Login(email, password string) (string, error)
	CreateOwner(email, password string) error
}

type ownerAuthService struct {
	repo repository.OwnerAuthRepository
}

func NewOwnerAuthService(repo repository.OwnerAuthRepository) OwnerAuthService {
	return &ownerAuthService{repo: repo}
}

func (s *ownerAuthService) Login(email, password string) (string, error) {
	owner, err := s.repo.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if owner == nil {
		return "", errors.New("invalid credentials")
	}

	err = bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(password))
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}

	claims := jwt.MapClaims{
		"owner_id": owner.ID,
		"email":    owner.Email,
		"exp":      time.Now().Add(time.Hour * 12).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *ownerAuthService) CreateOwner(email, password string) error {
	if email == "" || password == "" {
		return errors.New("email and password cannot be empty")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	err := s.repo.CreateNewOwner(email, password)
	if err != nil {
		return err
	}

	return nil
}
