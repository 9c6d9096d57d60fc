package utils

import (
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/projektl/projekt-l-backend/internal/normalization"
	"github.com/projektl/projekt-l-backend/internal/types"
)

func NormalizeUserFields(user *types.User) {
	if user == nil {
		return
	}
	user.Email = normalization.ParseInputString(user.Email)
	user.FirstName = normalization.TrimInputString(user.FirstName)
	user.LastName = normalization.TrimInputString(user.LastName)
}

func ValidateRegistration(user *types.User) error {
	if user == nil {
		return fmt.Errorf("missing user")
	}
	if user.Email == "" || user.Password == "" {
		return fmt.Errorf("email and password are required")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return fmt.Errorf("invalid email address")
	}
	if len(user.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func HashPassword(user *types.User) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	return nil
}

func CheckPassword(hashed, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return fmt.Errorf("invalid credentials")
	}
	return nil
}

// NormalizeEmail is the login-path counterpart of NormalizeUserFields.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
