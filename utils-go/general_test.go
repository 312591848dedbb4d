package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, VerifyHash("correct horse battery staple", hash))
	assert.False(t, VerifyHash("wrong password", hash))
}

func TestVerifyHashRejectsMalformedHash(t *testing.T) {
	assert.False(t, VerifyHash("anything", "not-a-hash"))
	assert.False(t, VerifyHash("anything", "$argon2id$v=19$m=65536"))
}

func TestIsInList(t *testing.T) {
	list := []string{"user", "admin"}

	assert.Equal(t, 1, IsInList("admin", &list))
	assert.Equal(t, -1, IsInList("curator", &list))
}
