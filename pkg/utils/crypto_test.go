package utils

import (
	"encoding/base32"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestHashPassword(t *testing.T) {
	password := "my-secure-password"
	hash, err := HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "my-secure-password"
	wrongPassword := "wrong-password"
	hash, _ := HashPassword(password)

	assert.True(t, CheckPasswordHash(password, hash))
	assert.False(t, CheckPasswordHash(wrongPassword, hash))
}

func TestEncryptDecrypt(t *testing.T) {
	plaintext := "JBSWY3DPEHPK3PXP"

	encrypted, err := Encrypt(plaintext, testKey)
	assert.NoError(t, err)
	assert.NotEqual(t, plaintext, encrypted)

	decrypted, err := Decrypt(encrypted, testKey)
	assert.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptFreshNonce(t *testing.T) {
	plaintext := "JBSWY3DPEHPK3PXP"

	first, err := Encrypt(plaintext, testKey)
	assert.NoError(t, err)
	second, err := Encrypt(plaintext, testKey)
	assert.NoError(t, err)

	// Same plaintext must never produce the same ciphertext twice
	assert.NotEqual(t, first, second)
}

func TestDecryptErrors(t *testing.T) {
	t.Run("Invalid base64", func(t *testing.T) {
		_, err := Decrypt("not-base64!!!", testKey)
		assert.Error(t, err)
	})

	t.Run("Wrong key", func(t *testing.T) {
		encrypted, _ := Encrypt("secret", testKey)
		otherKey := []byte("ffffffffffffffffffffffffffffffff")
		_, err := Decrypt(encrypted, otherKey)
		assert.Error(t, err)
	})

	t.Run("Truncated ciphertext", func(t *testing.T) {
		_, err := Decrypt("AAAA", testKey)
		assert.Error(t, err)
	})
}

func TestVerifyTOTP(t *testing.T) {
	secret, err := GenerateTOTPSecret()
	assert.NoError(t, err)

	now := time.Unix(1700000000, 0)

	key, _ := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	code := totpCode(key, uint64(now.Unix()/30))

	assert.True(t, VerifyTOTP(secret, code, now))
	assert.False(t, VerifyTOTP(secret, "000000", now))

	// Adjacent step accepted
	prev := totpCode(key, uint64(now.Unix()/30)-1)
	assert.True(t, VerifyTOTP(secret, prev, now))

	// Two steps away rejected
	old := totpCode(key, uint64(now.Unix()/30)-2)
	assert.False(t, VerifyTOTP(secret, old, now))
}

func TestVerifyTOTPBadSecret(t *testing.T) {
	assert.False(t, VerifyTOTP("not base32 at all!", "123456", time.Now()))
}
