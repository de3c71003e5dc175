package repository

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

type Owner struct {
	ID           int
	Email        string
	PasswordHash string
}

type OwnerAuthRepository interface {
	GetByEmail(email string) (*Owner, error)
	CreateNewOwner(email, password string) error
}

type ownerAuthRepository struct {
	db *sql.DB
}

func NewOwnerAuthRepository(db *sql.DB) OwnerAuthRepository {
	return &ownerAuthRepository{db: db}
}

func (r *ownerAuthRepository) GetByEmail(email string) (*Owner, error) {
	var owner Owner
	err := r.db.QueryRow("SELECT id, email, password_hash FROM owners WHERE email = $1", email).
		Scan(&owner.ID, &owner.Email, &owner.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &owner, nil
}

func (r *ownerAuthRepository) CreateNewOwner(email, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	query := "INSERT INTO owners (email, password_hash) VALUES ($1, $2)"
	_, err = r.db.Exec(query, email, hashedPassword)
	if err != nil {
		return err
	}

	return nil
}
