// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopii/internal/platform/sec"
)

func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("s3cret!")
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("s3cret!", hash))
	assert.False(t, sec.CheckPasswordHash("wrong", hash))
}

/*
TestSecureToken_HashIsStable verifies token generation and digest determinism.
*/
func TestSecureToken_HashIsStable(t *testing.T) {
	first, err := sec.GenerateSecureToken()
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)

	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.True(t, sec.EqualHash(sec.HashToken(first), sec.HashToken(first)))
	assert.False(t, sec.EqualHash(sec.HashToken(first), sec.HashToken(second)))

	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sec.HashToken("abc"))
}
