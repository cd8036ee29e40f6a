// Package crypto provides the signing and hashing primitives the matching
// core's collaborators rely on (§6): Ed25519 signatures over the canonical
// order/transaction encodings, and the auxiliary hash/encoding primitives
// (Keccak-256, Blake2b-256, SHA-256, base58, base64, Merkle proofs) other
// parts of the node are expected to share with this core.
package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
)

// PubKeySize and SignatureSize match spec §6's canonical encodings exactly:
// 32-byte public keys, 64-byte signatures.
const (
	PubKeySize    = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
)

// PubKey is a 32-byte Ed25519 public key, used both as sender/matcher
// identity and wherever the wire format calls for a 32-byte pubkey.
type PubKey [PubKeySize]byte

func (p PubKey) Bytes() []byte { return p[:] }
func (p PubKey) IsZero() bool  { return p == PubKey{} }

// Signature is a 64-byte Ed25519 signature.
type Signature [SignatureSize]byte

func (s Signature) Bytes() []byte { return s[:] }

// Signer manages an Ed25519 key pair for signing orders and transactions.
type Signer struct {
	priv ed25519.PrivateKey
	pub  PubKey
}

// GenerateKey creates a new random Ed25519 key pair.
func GenerateKey() (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	var pk PubKey
	copy(pk[:], pub)
	return &Signer{priv: priv, pub: pk}, nil
}

// FromSeed derives a Signer deterministically from a 32-byte seed.
// Useful for tests and for wallets that derive keys from a master seed.
func FromSeed(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	var pk PubKey
	copy(pk[:], pub)
	return &Signer{priv: priv, pub: pk}, nil
}

// PubKey returns the signer's public key.
func (s *Signer) PubKey() PubKey { return s.pub }

// Sign signs an arbitrary message (Ed25519 hashes internally; unlike
// ECDSA there is no separate digest step).
func (s *Signer) Sign(message []byte) Signature {
	sig := ed25519.Sign(s.priv, message)
	var out Signature
	copy(out[:], sig)
	return out
}

// Verify checks that signature was produced by pub over message.
func Verify(pub PubKey, message []byte, signature Signature) bool {
	return ed25519.Verify(pub[:], message, signature[:])
}

// VerifyBytes is the byte-slice-signature convenience form used when a
// signature arrives off the wire and hasn't been narrowed to a fixed array
// yet (e.g. decoded from hex or base58).
func VerifyBytes(pub PubKey, message []byte, signature []byte) bool {
	if len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(pub[:], message, signature)
}
