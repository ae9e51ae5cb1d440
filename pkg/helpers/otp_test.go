package helpers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenOTPCode(t *testing.T) {
	sixDigits := regexp.MustCompile(`^[0-9]{6}$`)
	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 150)
}

func TestHashCode(t *testing.T) {
	hash, err := HashCode("004217", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotContains(t, string(hash), "004217")
	assert.True(t, CompareCode(hash, "004217"))
	assert.False(t, CompareCode(hash, "4217"))
	assert.False(t, CompareCode(hash, "004218"))
}

func TestKeyOTPRequests(t *testing.T) {
	assert.Equal(t, "verify:otp:requests:a@b.com", KeyOTPRequests("  A@B.com "))
}
