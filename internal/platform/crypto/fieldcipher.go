package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
)

// CipherError reports ciphertext that cannot be decrypted.
type CipherError struct {
	Reason string
	Err    error
}

func (e *CipherError) Error() string {
	if e.Err != nil {
		return "field cipher: " + e.Reason + ": " + e.Err.Error()
	}
	return "field cipher: " + e.Reason
}

func (e *CipherError) Unwrap() error {
	return e.Err
}

var errBadPadding = errors.New("invalid padding")

// FieldCipher is AES-256-CBC with PKCS#7 padding under a fixed key and IV.
// Output is deterministic: the same plaintext always yields the same
// base64 ciphertext. There is no authentication tag, so tampering is only
// noticed when it breaks the padding.
type FieldCipher struct {
	block cipher.Block
	iv    []byte
}

func NewFieldCipher(key, iv []byte) (*FieldCipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("field cipher key must be 32 bytes, got %d", len(key))
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("field cipher iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &FieldCipher{block: block, iv: bytes.Clone(iv)}, nil
}

// NewFieldCipherFromConfig decodes key and iv the way DATA_ENCRYPTION_KEY is
// decoded: hex, base64 or raw bytes.
func NewFieldCipherFromConfig(key, iv string) (*FieldCipher, error) {
	rawKey, err := DecodeSecret(key, 32)
	if err != nil {
		return nil, fmt.Errorf("FIELD_CIPHER_KEY: %w", err)
	}
	rawIV, err := DecodeSecret(iv, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("FIELD_CIPHER_IV: %w", err)
	}
	return NewFieldCipher(rawKey, rawIV)
}

func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *FieldCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", &CipherError{Reason: "invalid encoding", Err: err}
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", &CipherError{Reason: fmt.Sprintf("invalid length %d", len(raw))}
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)
	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", &CipherError{Reason: "integrity check failed", Err: err}
	}
	return string(plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errBadPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errBadPadding
		}
	}
	return data[:len(data)-n], nil
}
