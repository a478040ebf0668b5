package vault

import (
	"crypto/ed25519"
	goerrors "errors"
	"fmt"
	"strings"

	"provault/common"
	"provault/logx"
)

var ErrUnsupportedKey = goerrors.New("vault: unsupported private key length")

// Limits to prevent DoS via oversized inputs
const (
	maxSignatureBase58Len  = 2048
	maxSignatureDecodedLen = 4096
	maxArgLen              = 256
)

// Envelope is a signed operation request. The signer's base58 public key is
// also its account address, so verifying the signature verifies the caller
// identity the role guard checks against.
type Envelope struct {
	Method       string   `json:"method"`
	Args         []string `json:"args"`
	SignerPubkey string   `json:"signer_pubkey"`
	Nonce        uint64   `json:"nonce"`
	Timestamp    uint64   `json:"timestamp"`
	Signature    string   `json:"signature,omitempty"`
}

// Serialize returns the canonical signing payload:
// method|arg1|...|argN|nonce|timestamp
func (e *Envelope) Serialize() []byte {
	parts := make([]string, 0, len(e.Args)+3)
	parts = append(parts, e.Method)
	parts = append(parts, e.Args...)
	parts = append(parts, fmt.Sprintf("%d", e.Nonce), fmt.Sprintf("%d", e.Timestamp))
	return []byte(strings.Join(parts, "|"))
}

// Sign signs the envelope with an ed25519 seed and fills in the signer fields
func Sign(e *Envelope, seed []byte) error {
	if len(seed) != ed25519.SeedSize {
		return ErrUnsupportedKey
	}
	privKey := ed25519.NewKeyFromSeed(seed)

	signature := ed25519.Sign(privKey, e.Serialize())
	e.SignerPubkey = common.AddressFromPubKey(privKey.Public().(ed25519.PublicKey))
	e.Signature = common.EncodeBytesToBase58(signature)
	return nil
}

// Verify checks the signature against the signer public key
func (e *Envelope) Verify() bool {
	if e.Signature == "" {
		logx.Error("ENVELOPE", "missing signature")
		return false
	}
	if len(e.Signature) > maxSignatureBase58Len {
		logx.Error("ENVELOPE", "signature too large")
		return false
	}
	for _, arg := range e.Args {
		if len(arg) > maxArgLen {
			logx.Error("ENVELOPE", "argument too large")
			return false
		}
	}

	pubKey, err := common.PubKeyFromAddress(e.SignerPubkey)
	if err != nil {
		logx.Error("ENVELOPE", "failed to decode signer pubkey: ", err)
		return false
	}

	signature, err := common.DecodeBase58ToBytes(e.Signature)
	if err != nil {
		logx.Error("ENVELOPE", "failed to decode signature: ", err)
		return false
	}
	if len(signature) > maxSignatureDecodedLen {
		logx.Error("ENVELOPE", "decoded signature too large")
		return false
	}

	return ed25519.Verify(pubKey, e.Serialize(), signature)
}

// Caller returns the verified caller identity carried by the envelope
func (e *Envelope) Caller() Caller {
	return Caller{Address: e.SignerPubkey, Nonce: e.Nonce}
}
