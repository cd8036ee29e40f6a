package crypto

import (
	"crypto/sha256"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"
)

// Hash32 is a generic 32-byte digest, used for transaction/order ids.
type Hash32 [32]byte

func (h Hash32) Bytes() []byte { return h[:] }

// Keccak256 hashes data with Keccak-256, the hash this node already
// standardizes on for on-chain identifiers.
func Keccak256(data ...[]byte) Hash32 {
	var out Hash32
	copy(out[:], ethcrypto.Keccak256(data...))
	return out
}

// Blake2b256 hashes data with Blake2b-256.
func Blake2b256(data []byte) Hash32 {
	return blake2b.Sum256(data)
}

// SHA256 hashes data with SHA-256. A single well-known primitive with no
// domain-specific tuning — stdlib is the idiomatic choice here (see
// DESIGN.md); no ecosystem wrapper in the pack adds anything over
// crypto/sha256.
func SHA256(data []byte) Hash32 {
	return sha256.Sum256(data)
}
