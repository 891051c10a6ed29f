package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherHashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	d1, err := h.Hash("secret123")
	require.NoError(t, err)
	d2, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", d1)
	assert.NotEqual(t, d1, d2, "salt must differ per hash")
	assert.True(t, h.Verify("secret123", d1))
	assert.True(t, h.Verify("secret123", d2))
	assert.False(t, h.Verify("secret124", d1))
	assert.False(t, h.Verify("secret123", "not-a-digest"))
	assert.False(t, h.Verify("secret123", ""))

	cost, err := bcrypt.Cost([]byte(d1))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestPasswordHasherLengthPolicy(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	max := strings.Repeat("a", MaxPasswordBytes)
	digest, err := h.Hash(max)
	require.NoError(t, err)
	assert.True(t, h.Verify(max, digest))

	over := max + "b"
	_, err = h.Hash(over)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, h.Verify(over, digest), "over-length candidate must not match its 72-byte prefix")

	_, err = h.Hash("")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, h.Verify("", digest))

	// 多字节字符按字节计数
	_, err = h.Hash(strings.Repeat("é", 37))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPasswordHasherCostClamp(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultBcryptCost},
		{1, bcrypt.MinCost},
		{10, 10},
		{99, bcrypt.MaxCost},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewPasswordHasher(tt.in).Cost(), "cost %d", tt.in)
	}
}

func TestPasswordHasherHashContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPasswordHasher(bcrypt.MinCost).HashContext(ctx, "secret123")
	assert.ErrorIs(t, err, context.Canceled)
}
