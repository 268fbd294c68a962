package srp

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPassword = "xcodes-rocks"
	testSaltHex  = "8e112ee77d2d7a9b60c004a722e1d0c2"
	testRounds   = 1024
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDerivePasswordS2K(t *testing.T) {
	key, err := DerivePassword(testPassword, mustHex(t, testSaltHex), testRounds, ProtocolS2K)
	require.NoError(t, err)
	assert.Equal(t, "5f9b9ba9de8f125704b652608344adef8f6e5afe15ba52b203fa2d250010eb92", hex.EncodeToString(key))
}

func TestDerivePasswordS2KFO(t *testing.T) {
	key, err := DerivePassword(testPassword, mustHex(t, testSaltHex), testRounds, ProtocolS2KFO)
	require.NoError(t, err)
	assert.Equal(t, "08fdd50746f1319442c68e5437f60c7c55399a2ae641381471c243a5e175a981", hex.EncodeToString(key))
}

func TestDerivePasswordProtocolsDiffer(t *testing.T) {
	salt := mustHex(t, testSaltHex)
	s2k, err := DerivePassword(testPassword, salt, testRounds, ProtocolS2K)
	require.NoError(t, err)
	s2kFO, err := DerivePassword(testPassword, salt, testRounds, ProtocolS2KFO)
	require.NoError(t, err)
	assert.NotEqual(t, s2k, s2kFO)
}

func TestDerivePasswordRejectsUnknownProtocol(t *testing.T) {
	_, err := DerivePassword(testPassword, mustHex(t, testSaltHex), testRounds, Protocol("srp-rfc5054"))
	assert.ErrorIs(t, err, ErrInvalidKeyMaterial)
}

func TestDerivePasswordRejectsBadIterations(t *testing.T) {
	_, err := DerivePassword(testPassword, mustHex(t, testSaltHex), 0, ProtocolS2K)
	assert.ErrorIs(t, err, ErrInvalidKeyMaterial)

	_, err = DerivePassword(testPassword, mustHex(t, testSaltHex), -20136, ProtocolS2K)
	assert.ErrorIs(t, err, ErrInvalidKeyMaterial)
}

func TestDerivePasswordRejectsInvalidUTF8(t *testing.T) {
	_, err := DerivePassword(string([]byte{0xff, 0xfe}), mustHex(t, testSaltHex), testRounds, ProtocolS2K)
	assert.ErrorIs(t, err, ErrInvalidKeyMaterial)
}
