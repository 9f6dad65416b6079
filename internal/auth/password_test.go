package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(4)

	hash, err := hasher.Hash("senha-forte")
	require.NoError(t, err)
	assert.NotEqual(t, "senha-forte", hash)

	assert.True(t, hasher.Verify("senha-forte", hash))
	assert.False(t, hasher.Verify("senha-errada", hash))
}

func TestPasswordHasherCostOutOfRange(t *testing.T) {
	hasher := NewPasswordHasher(99)

	hash, err := hasher.Hash("qualquer")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("qualquer", hash))
}
