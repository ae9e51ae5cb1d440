package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// OTP helpers

const otpSpace = 1000000

// KeyOTPRequests is the Redis key counting code requests for an email address
func KeyOTPRequests(email string) string {
	return "verify:otp:requests:" + strings.ToLower(strings.TrimSpace(email))
}

// GenOTPCode generates a uniformly random 6-digit code, 000000-999999, zero-padded
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpace))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashCode hashes an issued code with bcrypt so a live code is never held in clear
func HashCode(code string, cost int) ([]byte, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(code), cost)
}

// CompareCode compares a bcrypt hash with a submitted code
func CompareCode(hash []byte, code string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(code)) == nil
}
