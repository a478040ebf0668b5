package common

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"provault/errors"
)

// Addresses are base58-encoded 32-byte values: either an ed25519 public key
// (user accounts) or a sha256 digest of a derivation seed (program accounts).

// EncodeBytesToBase58 encodes bytes directly to base58
func EncodeBytesToBase58(bytes []byte) string {
	return base58.Encode(bytes)
}

// DecodeBase58ToBytes decodes base58 string to bytes
func DecodeBase58ToBytes(base58Str string) ([]byte, error) {
	bytes, err := base58.Decode(base58Str)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base58 string: %w", err)
	}
	return bytes, nil
}

// IsValidAddress checks that a string decodes to a 32-byte base58 value
func IsValidAddress(str string) bool {
	decoded, err := base58.Decode(str)
	return err == nil && len(decoded) == 32
}

// AddressFromPubKey returns the account address for an ed25519 public key
func AddressFromPubKey(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}

// PubKeyFromAddress decodes an account address back into an ed25519 public key
func PubKeyFromAddress(addr string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(addr)
	if err != nil {
		return nil, errors.NewError(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.NewError(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress)
	}
	return ed25519.PublicKey(decoded), nil
}

// DeriveAddress deterministically derives a program account address from seed
// parts. No private key exists for a derived address; the owning program is
// its only signing authority.
func DeriveAddress(parts ...string) string {
	digest := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return base58.Encode(digest[:])
}
