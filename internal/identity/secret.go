// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argonTime    = 1         // iterations
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4         // parallelism
	argonKeyLen  = 32        // output length in bytes
)

// Salt and code alphabets. The salt charset intentionally includes symbols;
// codes stay alphanumeric so they survive manual entry and URL embedding.
const (
	saltCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"abcdefghijklmnopqrstuvwxyz" +
		"0123456789)(*&^%$#@!~"
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"abcdefghijklmnopqrstuvwxyz" +
		"0123456789"
)

// SaltLength is the number of characters in a minted salt.
const SaltLength = 128

// MaxCodeLength caps minted codes; longer requests are truncated to this.
const MaxCodeLength = 64

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// SecretCodec produces all cryptographic material for the subsystem:
// salts, password hashes, and one-time codes. It is the only place
// algorithm choices live.
type SecretCodec interface {
	// MintSalt returns a fresh 128-character salt from a strong random source.
	MintSalt() (string, error)

	// Hash computes the password hash for (password, salt). Deterministic
	// for fixed inputs; the encoded representation is returned as bytes.
	Hash(password, salt string) ([]byte, error)

	// Verify reports whether candidate hashes to storedHash under salt,
	// using a constant-time comparison.
	Verify(candidate, salt string, storedHash []byte) bool

	// MintCode returns n random alphanumerics (n capped at MaxCodeLength).
	// If dashed, a '-' is inserted at every 4th position after index 2 to
	// aid human entry.
	MintCode(n int, dashed bool) (string, error)
}

// ArgonCodec implements SecretCodec using argon2id.
type ArgonCodec struct{}

// NewArgonCodec creates a new ArgonCodec.
func NewArgonCodec() *ArgonCodec {
	return &ArgonCodec{}
}

// MintSalt returns a fresh salt drawn uniformly from saltCharset.
func (c *ArgonCodec) MintSalt() (string, error) {
	s, err := randomString(SaltLength, saltCharset)
	if err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}
	return s, nil
}

// Hash computes the argon2id hash of password under salt and returns the
// PHC-encoded representation as bytes. The salt string's UTF-8 bytes are the
// argon2 salt, so the output is deterministic for fixed inputs.
func (c *ArgonCodec) Hash(password, salt string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if salt == "" {
		return nil, oops.Code("AUTH_HASH_FAILED").Errorf("salt cannot be empty")
	}

	key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)

	// PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString([]byte(salt)),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return []byte(encoded), nil
}

// Verify recomputes the hash for (candidate, salt) and compares it to
// storedHash in constant time.
func (c *ArgonCodec) Verify(candidate, salt string, storedHash []byte) bool {
	computed, err := c.Hash(candidate, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(computed, storedHash) == 1
}

// MintCode returns n random alphanumerics, optionally dash-formatted.
func (c *ArgonCodec) MintCode(n int, dashed bool) (string, error) {
	if n <= 0 {
		return "", oops.Code("AUTH_CODE_FAILED").Errorf("code length must be positive, got %d", n)
	}
	if n > MaxCodeLength {
		n = MaxCodeLength
	}

	s, err := randomString(n, codeCharset)
	if err != nil {
		return "", oops.Code("AUTH_CODE_FAILED").Wrap(err)
	}

	if dashed {
		b := []byte(s)
		for i := 0; i < n+n/4; i++ {
			if i > 2 && i%4 == 0 && i <= len(b) {
				b = append(b[:i], append([]byte{'-'}, b[i:]...)...)
			}
		}
		s = string(b)
	}

	return s, nil
}

// randomString draws length characters uniformly from charset using
// crypto/rand. rand.Int avoids modulo bias.
func randomString(length int, charset string) (string, error) {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b), nil
}

// Compile-time interface check.
var _ SecretCodec = (*ArgonCodec)(nil)
