package address

import (
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/fedwallet/walletgate/core"
)

func randomKey(t *testing.T) [core.PublicKeySize]byte {
	t.Helper()
	var key [core.PublicKeySize]byte
	_, err := rand.Read(key[:])
	require.NoError(t, err)
	return key
}

func TestLocalpartRoundTrip(t *testing.T) {
	for i := 0; i < 50; i++ {
		key := randomKey(t)
		addr := Encode(key)

		localpart, err := ToLocalpart(addr)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(localpart, NamespaceTag))
		require.Len(t, localpart, len(NamespaceTag)+64)
		require.Equal(t, strings.ToLower(localpart), localpart)

		back, err := FromLocalpart(localpart)
		require.NoError(t, err)
		require.Equal(t, addr, back)
	}
}

func TestLocalpartNoCollisions(t *testing.T) {
	seen := make(map[string]string)
	for i := 0; i < 100; i++ {
		addr := Encode(randomKey(t))
		localpart, err := ToLocalpart(addr)
		require.NoError(t, err)

		if prev, ok := seen[localpart]; ok {
			require.Equal(t, prev, addr, "distinct addresses mapped to the same localpart")
		}
		seen[localpart] = addr
	}
	require.Len(t, seen, 100)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not base58": "0OIl+/=",
		"empty":      "",
		"too short":  base58.Encode([]byte{1, 2, 3}),
		"too long":   base58.Encode(make([]byte, 33)),
		"31 bytes":   base58.Encode(make([]byte, 31)),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(input)
			require.ErrorIs(t, err, core.ErrMalformedAddress)
		})
	}
}

func TestFromLocalpartRejectsBadInput(t *testing.T) {
	key := randomKey(t)
	good, err := ToLocalpart(Encode(key))
	require.NoError(t, err)

	t.Run("missing namespace", func(t *testing.T) {
		_, err := FromLocalpart(strings.TrimPrefix(good, NamespaceTag))
		require.ErrorIs(t, err, core.ErrUnknownNamespace)
	})

	t.Run("wrong namespace", func(t *testing.T) {
		_, err := FromLocalpart("eth_" + strings.TrimPrefix(good, NamespaceTag))
		require.ErrorIs(t, err, core.ErrUnknownNamespace)
	})

	t.Run("short body", func(t *testing.T) {
		_, err := FromLocalpart(good[:len(good)-2])
		require.ErrorIs(t, err, core.ErrMalformedIdentifier)
	})

	t.Run("non-hex body", func(t *testing.T) {
		_, err := FromLocalpart(NamespaceTag + strings.Repeat("zz", 32))
		require.ErrorIs(t, err, core.ErrMalformedIdentifier)
	})

	t.Run("uppercase hex", func(t *testing.T) {
		_, err := FromLocalpart(NamespaceTag + strings.Repeat("AB", 32))
		if !errors.Is(err, core.ErrMalformedIdentifier) {
			t.Fatalf("uppercase hex must be rejected, got %v", err)
		}
	})
}
