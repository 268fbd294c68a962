package srp

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// ErrInvalidPublicKey reports a server public key outside 1..N-1.
var ErrInvalidPublicKey = errors.New("srp: invalid server public key")

// KeyPair is one client ephemeral key pair. Public is A = g^a mod N padded
// to the group length; Private is the raw ephemeral secret a.
type KeyPair struct {
	Private []byte
	Public  []byte
}

// Client performs the client side of the SRP-6a exchange for a fixed group.
// It is stateless: every method derives its result from its arguments, so a
// single Client may serve any number of exchanges.
type Client struct {
	params *Params
}

func NewClient(params *Params) *Client {
	return &Client{params: params}
}

// GenerateKeys draws a fresh 32-byte ephemeral secret and computes the
// matching public key.
func (c *Client) GenerateKeys() KeyPair {
	a := make([]byte, 32)
	rand.Read(a)
	return c.KeyPairFrom(a)
}

// KeyPairFrom builds the key pair for a caller-supplied ephemeral secret.
// Exchanges with a fixed secret are only useful for tests.
func (c *Client) KeyPairFrom(private []byte) KeyPair {
	aInt := new(big.Int).SetBytes(private)
	return KeyPair{Private: private, Public: c.params.calculateA(aInt)}
}

// CalculateSharedSecret computes the premaster secret S from the derived
// password, the server salt and public key, and the client key pair.
func (c *Client) CalculateSharedSecret(password, salt []byte, clientKeys KeyPair, serverPublicKey []byte) ([]byte, error) {
	x := c.params.calculateX(salt, nil, password)
	A := new(big.Int).SetBytes(clientKeys.Public)
	B := new(big.Int).SetBytes(serverPublicKey)
	u := c.params.calculateU(A, B)
	k := c.params.getMultiplier()
	a := new(big.Int).SetBytes(clientKeys.Private)
	return c.params.calculateS(k, x, a, B, u)
}

// CalculateClientProof computes M1 over the session key K = H(S).
func (c *Client) CalculateClientProof(username string, salt, clientPublicKey, serverPublicKey, sharedSecret []byte) []byte {
	A := padTo(clientPublicKey, c.params.NLengthBits/8)
	B := padTo(serverPublicKey, c.params.NLengthBits/8)
	K := c.params.digest(sharedSecret)
	return c.params.calculateM1([]byte(username), salt, A, B, K)
}

// CalculateServerProof computes the expected server proof
// M2 = H(A | M1 | K).
func (c *Client) CalculateServerProof(clientPublicKey, clientProof, sharedSecret []byte) []byte {
	A := padTo(clientPublicKey, c.params.NLengthBits/8)
	K := c.params.digest(sharedSecret)
	return c.params.calculateM2(A, clientProof, K)
}
