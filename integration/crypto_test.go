package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	t.Parallel()
	key := DeriveKey("operator-passphrase")
	assert.Len(t, key, 32)
	// Deterministic: the reporter must derive the same key at unseal time.
	assert.Equal(t, key, DeriveKey("operator-passphrase"))
	assert.NotEqual(t, key, DeriveKey("other-passphrase"))
}

func TestSealedCredentialsRoundTrip(t *testing.T) {
	t.Parallel()
	key := DeriveKey("operator-passphrase")
	creds := map[string]string{
		"email":     "qa@example.com",
		"api_token": "jira-api-token",
	}

	sealed, err := EncryptCredentials(key, creds)
	require.NoError(t, err)
	assert.NotEmpty(t, sealed)

	opened, err := DecryptCredentials(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, creds, opened)
}

func TestDecryptWithWrongPassphrase(t *testing.T) {
	t.Parallel()
	sealed, err := EncryptCredentials(DeriveKey("right"), map[string]string{"token": "secret"})
	require.NoError(t, err)

	_, err = DecryptCredentials(DeriveKey("wrong"), sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	t.Parallel()
	key := DeriveKey("operator-passphrase")
	sealed, err := EncryptCredentials(key, map[string]string{"token": "secret"})
	require.NoError(t, err)

	// Flip one ciphertext bit; secretbox must refuse to open it.
	sealed[len(sealed)-1] ^= 0x01
	_, err = DecryptCredentials(key, sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptTooShortCiphertext(t *testing.T) {
	t.Parallel()
	_, err := DecryptCredentials(DeriveKey("operator-passphrase"), []byte("short"))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestEncryptEmptyCredentials(t *testing.T) {
	t.Parallel()
	key := DeriveKey("operator-passphrase")

	sealed, err := EncryptCredentials(key, map[string]string{})
	require.NoError(t, err)

	opened, err := DecryptCredentials(key, sealed)
	require.NoError(t, err)
	assert.Empty(t, opened)
}

func TestEncryptUsesFreshNonces(t *testing.T) {
	t.Parallel()
	key := DeriveKey("operator-passphrase")
	creds := map[string]string{"token": "value"}

	first, err := EncryptCredentials(key, creds)
	require.NoError(t, err)
	second, err := EncryptCredentials(key, creds)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
