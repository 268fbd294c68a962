package srp

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Vectors for one full exchange in the 2048-bit group: a fixed client
// ephemeral secret against a fixed server public key, using the s2k-derived
// password key from password_test.go.
const (
	testAccount    = "jappleseed@apple.com"
	testPrivateHex = "60975527035cf2ad1989806f0407210bc81edc04e2762a56afd529ddda2d4393"

	testClientPublicHex = "4b700f8d48e69c9aae40c684ac7c7c03121e2b7602eb4c3514804ccada0ed4019193a351ecc65a6f854ede91eb096e721b22d701c7adc64e9cedacd75f2e26bb2f5e45dd53dc8dbeafffe82aa49fca0573444691212537a73cf80e25039258205a7edf4749b30adaf25877c62fcd09d6613598bcd4baf2a9727a53706a278148992b2abb23ad5d512d269e16ca11bc0895b5a3b5ec4721cde40a8c39c796e94f0be86dbbeb33da7037018983921aba3f5053195d5ac1da4e567e3c0e75d9e0609f92e850657b2be4771f415b9cacc5c1ecedc30133bf6474f5022c6519d780760ca4d8d3b966b034bd73877c1b3b33f474b9c3c5299a1968f3e6cd3bfe84445a"

	testServerPublicHex = "15cf4ced5ed07d4421839ac086253b44747b48a4a7f018ba6c0907928149bb98f2aa3587a94b6db71ccbb8121eaf34038e5f5e8542a8a17a2de3ee2b483f4ddaff92faa2f0cb8cefce479917697f92fe7a43cb7a6241255e355956c40af7b5af5c510ee2b31b8fedb6ae55d5c7af555953bf6a934c0c1878e7ee116901fe6f4ef0577039f2c0a5ed7156654b3f9cdc3d7cfa86d6ad93abe373e74b8c9b8fec07cd963bae0b4366ed8b1b3bc202242fa9986e66f494e89bcb672a79ed4f3af03632c5e29fc45f73753e385fa1ce487d7a76be86393501fbabdb38c1c26283cfd6114b7a4d1b9c48a4a7d3569637c051e19e7f2e72369285dd6cf97249025f423b"

	testSharedSecretHex = "8647ef181a515d95ab9c8035eb65ec159df7ca4ed24a8b85cf93fef6563aedd92c74f294bf1fb5a821b93a97fb8866efa0a3b576ca4332cdbf3242cad5e154cd491be1a6b53ec177cb9ea7a85d5e8e968df99fffb412928f99f79c01c05f7499f7da2f8cbe7f35c3cc9705aba63cf582e40d2ed9bf43e16f237afcbebf2796b8de82f99b74ae29ca7b78c3ea8fff56aa4a6a2b10834087a9a6411fb61cdbc69ae3867e4a2056640f7c21ccfb65d001477ad58df1857864a09aac44fe19c23f83334c4dfa58c2784a6f57e4a5fda28ffff414427c638575c6d1ebfe9be394c30a6f71b9aac929920fc06d029d88a421082ec171987adac038097036d188eadc83"

	testDerivedKeyHex = "5f9b9ba9de8f125704b652608344adef8f6e5afe15ba52b203fa2d250010eb92"
	testM1Hex         = "ce3a4a372cd9095698b968ebdf61bb55eda51c028aa42025ee69bb3adbafe76b"
	testM2Hex         = "7af0ff40c20946385e148c106d29252769d18de10b31a3a509b998035c76a97f"
)

func testClient() *Client {
	return NewClient(GetParams(N_LEN_2048))
}

func TestKeyPairFrom(t *testing.T) {
	keys := testClient().KeyPairFrom(mustHex(t, testPrivateHex))
	assert.Equal(t, testClientPublicHex, hex.EncodeToString(keys.Public))
	assert.Len(t, keys.Public, 256)
}

func TestGenerateKeysProducesDistinctPairs(t *testing.T) {
	c := testClient()
	first := c.GenerateKeys()
	second := c.GenerateKeys()
	assert.NotEqual(t, first.Private, second.Private)
	assert.NotEqual(t, first.Public, second.Public)
	assert.Len(t, first.Public, 256)
}

func TestCalculateSharedSecret(t *testing.T) {
	c := testClient()
	keys := c.KeyPairFrom(mustHex(t, testPrivateHex))
	secret, err := c.CalculateSharedSecret(
		mustHex(t, testDerivedKeyHex), mustHex(t, testSaltHex), keys, mustHex(t, testServerPublicHex))
	require.NoError(t, err)
	assert.Equal(t, testSharedSecretHex, hex.EncodeToString(secret))
}

func TestCalculateSharedSecretRejectsZeroServerKey(t *testing.T) {
	c := testClient()
	keys := c.KeyPairFrom(mustHex(t, testPrivateHex))
	_, err := c.CalculateSharedSecret(
		mustHex(t, testDerivedKeyHex), mustHex(t, testSaltHex), keys, make([]byte, 256))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestCalculateClientProof(t *testing.T) {
	m1 := testClient().CalculateClientProof(testAccount,
		mustHex(t, testSaltHex),
		mustHex(t, testClientPublicHex),
		mustHex(t, testServerPublicHex),
		mustHex(t, testSharedSecretHex))
	assert.Equal(t, testM1Hex, hex.EncodeToString(m1))
}

func TestCalculateServerProof(t *testing.T) {
	m2 := testClient().CalculateServerProof(
		mustHex(t, testClientPublicHex),
		mustHex(t, testM1Hex),
		mustHex(t, testSharedSecretHex))
	assert.Equal(t, testM2Hex, hex.EncodeToString(m2))
}
