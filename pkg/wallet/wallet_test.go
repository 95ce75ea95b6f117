package wallet

import (
	"encoding/hex"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signPersonal produces the 64-byte r||s signature a wallet UI would
// return for message.
func signPersonal(t *testing.T, key *secp256k1.PrivateKey, message string) string {
	t.Helper()
	compact := ecdsa.SignCompact(key, personalHash([]byte(message)), false)
	// Compact form is [recovery, r..., s...]; drop the recovery byte.
	return hex.EncodeToString(compact[1:65])
}

func TestVerifySignature(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	pubHex := hex.EncodeToString(key.PubKey().SerializeCompressed())
	address := AddressFromPubKey(key.PubKey())
	const message = "Log in to openfeed at 2026-08-31T10:00:00Z"
	sig := signPersonal(t, key, message)

	assert.NoError(t, VerifySignature(address, message, pubHex, sig))

	// Case-insensitive address comparison.
	assert.NoError(t, VerifySignature("0x"+hex.EncodeToString(mustHex(t, address[2:])), message, pubHex, sig))
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestVerifySignatureRejectsTamperedMessage(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	pubHex := hex.EncodeToString(key.PubKey().SerializeCompressed())
	address := AddressFromPubKey(key.PubKey())
	sig := signPersonal(t, key, "original message")

	assert.ErrorIs(t, VerifySignature(address, "tampered message", pubHex, sig), ErrBadSignature)
}

func TestVerifySignatureRejectsForeignKey(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	other, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	const message = "hello"
	sig := signPersonal(t, key, message)
	pubHex := hex.EncodeToString(key.PubKey().SerializeCompressed())

	// Valid signature, but the claimed address belongs to another wallet.
	err = VerifySignature(AddressFromPubKey(other.PubKey()), message, pubHex, sig)
	assert.ErrorContains(t, err, "does not match address")
}

func TestVerifySignatureRejectsGarbage(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	pubHex := hex.EncodeToString(key.PubKey().SerializeCompressed())
	address := AddressFromPubKey(key.PubKey())

	assert.Error(t, VerifySignature(address, "msg", "nothex", "00"))
	assert.Error(t, VerifySignature(address, "msg", pubHex, "nothex"))
	assert.ErrorIs(t, VerifySignature(address, "msg", pubHex, "00ff"), ErrBadSignature)
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.False(t, ValidAddress("5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"), "prefix required")
	assert.False(t, ValidAddress("0x5aaeb6"), "too short")
	assert.False(t, ValidAddress("0xzzaeb6053f3e94c9b9a09f33669435e7ef1beaed"), "not hex")
}

func TestChecksumAddress(t *testing.T) {
	// Reference vectors from the EIP-55 text.
	cases := map[string]string{
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed": "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xFB6916095CA1DF60BB79CE92CE3EA74C37C5D359": "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	}
	for in, want := range cases {
		got, err := ChecksumAddress(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ChecksumAddress("not an address")
	assert.ErrorIs(t, err, ErrBadAddress)
}

func TestAddressFromPubKeyIsChecksummed(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	addr := AddressFromPubKey(key.PubKey())
	assert.True(t, ValidAddress(addr))

	again, err := ChecksumAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, addr, again)
}
