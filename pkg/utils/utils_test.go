package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUnusablePassword(t *testing.T) {
	h, err := UnusablePassword()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "!$2"))
	assert.LessOrEqual(t, len(h), 100)
	assert.False(t, CheckPassword("", h))
	assert.False(t, CheckPassword(h, h))

	h2, err := UnusablePassword()
	require.NoError(t, err)
	assert.NotEqual(t, h, h2)
}

func TestCheckPassword(t *testing.T) {
	b, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPassword("s3cret", string(b)))
	assert.False(t, CheckPassword("other", string(b)))
	assert.False(t, CheckPassword("s3cret", ""))
}

func TestNewTokenKey(t *testing.T) {
	a, b := NewTokenKey(), NewTokenKey()
	assert.Len(t, a, 40)
	assert.Regexp(t, "^[0-9a-f]{40}$", a)
	assert.NotEqual(t, a, b)
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}
