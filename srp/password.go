package srp

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

// Protocol selects the password key-derivation variant announced by the
// server during signin/init.
type Protocol string

const (
	ProtocolS2K   Protocol = "s2k"
	ProtocolS2KFO Protocol = "s2k_fo"
)

// ErrInvalidKeyMaterial reports that no key could be derived from the given
// password, salt and protocol.
var ErrInvalidKeyMaterial = errors.New("srp: invalid key material")

const derivedKeyLen = 32

// DerivePassword turns the plaintext password into the 32-byte SRP password
// key: SHA-256 of the password run through PBKDF2-HMAC-SHA256. The legacy
// s2k_fo protocol stretches the lower-case hex encoding of the digest
// instead of the raw digest bytes.
func DerivePassword(password string, salt []byte, iterations int, protocol Protocol) ([]byte, error) {
	if !utf8.ValidString(password) || iterations <= 0 {
		return nil, ErrInvalidKeyMaterial
	}
	digest := sha256.Sum256([]byte(password))
	var input []byte
	switch protocol {
	case ProtocolS2K:
		input = digest[:]
	case ProtocolS2KFO:
		input = []byte(hex.EncodeToString(digest[:]))
	default:
		return nil, ErrInvalidKeyMaterial
	}
	return pbkdf2.Key(input, salt, iterations, derivedKeyLen, sha256.New), nil
}
