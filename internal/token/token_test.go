package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/songii00/random-push/internal/token"
)

func TestIssue_UniqueTokens(t *testing.T) {
	keygen := token.NewKeygen()
	now := time.Now()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		issued := keygen.Issue(now)
		assert.Len(t, issued, 26)
		assert.False(t, seen[issued], "token issued twice: %s", issued)
		seen[issued] = true
	}
}

func TestHashKey(t *testing.T) {
	keygen := token.NewKeygen()

	hashed := keygen.HashKey("some-token")
	assert.Len(t, hashed, 64)
	assert.Equal(t, hashed, keygen.HashKey("some-token"))
	assert.NotEqual(t, hashed, keygen.HashKey("other-token"))
	assert.NotEqual(t, "some-token", hashed)
}
