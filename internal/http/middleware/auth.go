package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// is returned when the admin password doesn't match.
var ErrInvalidCredentials = errors.New("invalid password")

// Admin is the authenticated operator behind a request.
type Admin struct {
	Subject string
}

// uses bcrypt to hash a plaintext password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// compares a bcrypt hash with the plaintext.
func CheckPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	return err == nil
}

// retrieves *Admin from Gin context (after JWTMiddleware has run).
func GetCurrentAdmin(c *gin.Context) (*Admin, bool) {
	a, exists := c.Get("currentAdmin")
	if !exists {
		return nil, false
	}
	admin, ok := a.(*Admin)
	return admin, ok
}
