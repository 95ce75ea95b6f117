// Package wallet verifies EVM wallet signatures and derives checksummed
// addresses. It backs the signature login flow: prove control of a wallet
// key, get a session.
package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

var (
	ErrBadSignature = errors.New("wallet: invalid signature")
	ErrBadAddress   = errors.New("wallet: invalid address")
)

func keccak256(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}

// personalHash applies the eth_sign / personal_sign envelope before
// hashing, so signatures made by wallet UIs verify correctly.
func personalHash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return keccak256([]byte(prefix), message)
}

// ValidAddress reports whether s looks like a 0x-prefixed 20-byte hex
// address.
func ValidAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) != 42 {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// ChecksumAddress renders the EIP-55 mixed-case form of a hex address.
func ChecksumAddress(addr string) (string, error) {
	if !ValidAddress(addr) && !ValidAddress("0x"+addr) {
		return "", ErrBadAddress
	}
	lower := strings.ToLower(strings.TrimPrefix(addr, "0x"))
	hash := keccak256([]byte(lower))

	out := []byte(lower)
	for i, ch := range out {
		if ch < 'a' || ch > 'f' {
			continue
		}
		nibble := hash[i/2] >> 4
		if i%2 == 1 {
			nibble = hash[i/2] & 0x0f
		}
		if nibble >= 8 {
			out[i] = ch - 'a' + 'A'
		}
	}
	return "0x" + string(out), nil
}

// AddressFromPubKey derives the checksummed address of a public key:
// keccak of the uncompressed key body, last 20 bytes.
func AddressFromPubKey(pub *secp256k1.PublicKey) string {
	raw := pub.SerializeUncompressed()[1:]
	sum := keccak256(raw)
	addr, _ := ChecksumAddress(hex.EncodeToString(sum[12:]))
	return addr
}

// VerifySignature checks that signature (64-byte r||s hex) over the
// personal_sign envelope of message was made by pubKey, and that pubKey
// derives to address.
func VerifySignature(address, message, pubKeyHex, sigHex string) error {
	pubBytes, err := hex.DecodeString(strings.TrimPrefix(pubKeyHex, "0x"))
	if err != nil {
		return fmt.Errorf("wallet: can't decode public key: %w", err)
	}
	pubKey, err := secp256k1.ParsePubKey(pubBytes)
	if err != nil {
		return fmt.Errorf("wallet: can't parse public key: %w", err)
	}

	sigBytes, err := hex.DecodeString(strings.TrimPrefix(sigHex, "0x"))
	if err != nil {
		return fmt.Errorf("wallet: can't decode signature: %w", err)
	}
	if len(sigBytes) < 64 {
		return ErrBadSignature
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sigBytes[:32]); overflow {
		return ErrBadSignature
	}
	if overflow := s.SetByteSlice(sigBytes[32:64]); overflow {
		return ErrBadSignature
	}

	sig := ecdsa.NewSignature(&r, &s)
	if !sig.Verify(personalHash([]byte(message)), pubKey) {
		return ErrBadSignature
	}

	if !strings.EqualFold(AddressFromPubKey(pubKey), address) {
		return fmt.Errorf("wallet: signature key does not match address %s", address)
	}
	return nil
}
