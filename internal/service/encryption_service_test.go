package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid 32-byte key in hex (64 chars)
const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAESEncryptionService_NewInvalidKey(t *testing.T) {
	for _, key := range []string{"", "shortkey", "zz23456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"} {
		_, err := NewAESEncryptionService(key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestAESEncryptionService_RoundTripBankDetails(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	plaintext := `{"account_number":"0123456789","bank_name":"GTBank","account_name":"Ada Obi"}`
	ciphertext, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "0123456789")

	decrypted, err := svc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAESEncryptionService_DifferentNonces(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	c1, err := svc.Encrypt("same")
	require.NoError(t, err)
	c2, err := svc.Encrypt("same")
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2, "each encryption uses a fresh nonce")
}

func TestAESEncryptionService_DecryptFailures(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	valid, err := svc.Encrypt("payload")
	require.NoError(t, err)
	tampered := valid[:len(valid)-2] + "00"
	if tampered == valid {
		tampered = valid[:len(valid)-2] + "ff"
	}

	tests := []struct {
		name  string
		input string
	}{
		{"not hex", "xyz"},
		{"too short", "abcd"},
		{"tampered", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Decrypt(tt.input)
			assert.Error(t, err)
		})
	}
}
