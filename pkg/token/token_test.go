package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMint(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		tok, err := Mint()
		require.NoError(t, err)
		require.NotEmpty(t, tok)
		// 32 字节 base64url（无填充）长度固定 43
		require.Len(t, tok, 43)
		_, dup := seen[tok]
		require.False(t, dup, "duplicate token minted")
		seen[tok] = struct{}{}
	}
}
