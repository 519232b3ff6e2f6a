package integration

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrCiphertextTooShort is returned when sealed credentials are shorter
	// than the nonce prefix.
	ErrCiphertextTooShort = errors.New("sealed credentials too short")

	// ErrDecryptionFailed is returned when sealed credentials fail
	// authentication: wrong passphrase or tampered ciphertext.
	ErrDecryptionFailed = errors.New("failed to open sealed credentials")
)

const (
	keyLen    = 32
	nonceLen  = 24
	kdfRounds = 100_000
)

// kdfSalt is fixed so the same passphrase always derives the same key.
// Per-record salts would be stronger but would force a full re-seal on
// every passphrase rotation; for a single-operator deployment the
// passphrase itself is the secret.
var kdfSalt = []byte("qa-agent-integration-credentials")

// DeriveKey derives the sealing key from the operator passphrase.
func DeriveKey(passphrase string) [keyLen]byte {
	var key [keyLen]byte
	copy(key[:], pbkdf2.Key([]byte(passphrase), kdfSalt, kdfRounds, keyLen, sha256.New))
	return key
}

// EncryptCredentials seals a credential map: random nonce prefix followed
// by the secretbox ciphertext of the JSON encoding.
func EncryptCredentials(key [keyLen]byte, credentials map[string]string) ([]byte, error) {
	plaintext, err := json.Marshal(credentials)
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}

	var nonce [nonceLen]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return secretbox.Seal(nonce[:], plaintext, &nonce, &key), nil
}

// DecryptCredentials opens sealed credentials produced by
// EncryptCredentials.
func DecryptCredentials(key [keyLen]byte, sealed []byte) (map[string]string, error) {
	if len(sealed) < nonceLen {
		return nil, ErrCiphertextTooShort
	}

	var nonce [nonceLen]byte
	copy(nonce[:], sealed[:nonceLen])

	plaintext, ok := secretbox.Open(nil, sealed[nonceLen:], &nonce, &key)
	if !ok {
		return nil, ErrDecryptionFailed
	}

	credentials := map[string]string{}
	if err := json.Unmarshal(plaintext, &credentials); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	return credentials, nil
}
