// Package credential derives and verifies stored password credentials.
// Passwords are hashed with argon2id over a per-record random salt, so a
// stolen table cannot be brute-forced with a fast general-purpose digest.
package credential

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dpavlenko/newsboard/internal/common"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	keyLength    = 32
	saltLength   = 16

	prefix = "argon2id"
)

var ErrEmptyPassword = errors.New("refusing to hash empty password")

// Hash derives a stored credential from a plaintext password. The result is
// self-contained: "argon2id$<base64 salt>$<base64 key>".
func Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := common.GenerateRandByteArray(saltLength)
	key := derive([]byte(password), salt)

	encoded := prefix +
		"$" + base64.RawStdEncoding.EncodeToString(salt) +
		"$" + base64.RawStdEncoding.EncodeToString(key)
	return encoded, nil
}

// Verify recomputes the hash of candidate with the salt stored in encoded and
// compares in constant time. A malformed stored credential verifies false
// rather than erroring, so callers cannot distinguish it from a wrong password.
func Verify(encoded, candidate string) bool {
	salt, key, err := decode(encoded)
	if err != nil {
		// Still burn a derivation so the failure is not observable by timing.
		derive([]byte(candidate), make([]byte, saltLength))
		return false
	}

	candidateKey := derive([]byte(candidate), salt)
	return subtle.ConstantTimeCompare(key, candidateKey) == 1
}

func derive(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keyLength)
}

func decode(encoded string) (salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != prefix {
		return nil, nil, errors.New("malformed credential")
	}
	salt, err = base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, err
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, nil, err
	}
	if len(salt) == 0 || len(key) == 0 {
		return nil, nil, errors.New("malformed credential")
	}
	return salt, key, nil
}
