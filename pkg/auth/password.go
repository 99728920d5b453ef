package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the hashing cost used when none is configured.
const DefaultBcryptCost = 12

// HashPassword hashes a password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the hash. A
// malformed hash simply fails the check.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckPasswordComplexity enforces the password policy: at least 6
// characters, at least one letter or digit, and at least one symbol.
func CheckPasswordComplexity(password string) error {
	if len([]rune(password)) < 6 {
		return ErrWeakPassword.WithMessage("password must be at least 6 characters")
	}

	var hasAlnum, hasSymbol bool
	for _, ch := range password {
		switch {
		case unicode.IsLetter(ch) || unicode.IsDigit(ch):
			hasAlnum = true
		default:
			hasSymbol = true
		}
	}
	if !hasAlnum || !hasSymbol {
		return ErrWeakPassword.WithMessage("password must contain a letter or digit and at least one symbol")
	}
	return nil
}
