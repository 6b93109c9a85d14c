package sig

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyValidSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	message := []byte("Sign in to example.com\n\nNonce: abc123")
	signature := ed25519.Sign(priv, message)

	require.True(t, Verify(pub, message, signature))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	message := []byte("some message")
	signature := ed25519.Sign(priv, message)

	require.False(t, Verify(otherPub, message, signature))
}

func TestVerifyRejectsBitFlips(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	message := []byte("challenge text")
	signature := ed25519.Sign(priv, message)

	t.Run("flipped message bits", func(t *testing.T) {
		for i := range message {
			mutated := append([]byte(nil), message...)
			mutated[i] ^= 0x01
			require.False(t, Verify(pub, mutated, signature), "bit flip at message byte %d verified", i)
		}
	})

	t.Run("flipped signature bits", func(t *testing.T) {
		for i := range signature {
			mutated := append([]byte(nil), signature...)
			mutated[i] ^= 0x01
			require.False(t, Verify(pub, message, mutated), "bit flip at signature byte %d verified", i)
		}
	})
}

func TestVerifyRejectsWrongLengths(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	message := []byte("msg")
	signature := ed25519.Sign(priv, message)

	require.False(t, Verify(pub[:31], message, signature))
	require.False(t, Verify(append([]byte(nil), pub...)[:16], message, signature))
	require.False(t, Verify(pub, message, signature[:63]))
	require.False(t, Verify(pub, message, append(signature, 0)))
	require.False(t, Verify(nil, message, signature))
	require.False(t, Verify(pub, message, nil))
}
