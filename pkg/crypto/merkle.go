package crypto

import "github.com/lucentlabs/dexmatcher/pkg/errs"

// MerkleProof is a serialized Merkle proof: a sequence of 32-byte sibling
// digests, one per level, plus a parallel byte slice of the same length
// giving each level's side (0 = sibling is on the left, anything else =
// right), per spec §6.
type MerkleProof struct {
	Siblings []Hash32
	Sides    []byte
}

// VerifyMerkleProof checks that leaf, combined up through proof, produces
// root. hashPair must match whatever hash function the tree was built
// with (Keccak256, Blake2b256, or SHA256 are all valid choices here — the
// verifier is hash-agnostic).
func VerifyMerkleProof(leaf Hash32, proof MerkleProof, root Hash32, hashPair func(a, b Hash32) Hash32) error {
	if len(proof.Siblings) != len(proof.Sides) {
		return errs.Newf(errs.DomainError, "merkle proof: %d siblings but %d sides", len(proof.Siblings), len(proof.Sides))
	}

	cur := leaf
	for i, sib := range proof.Siblings {
		if proof.Sides[i] == 0 {
			// sibling is on the left
			cur = hashPair(sib, cur)
		} else {
			cur = hashPair(cur, sib)
		}
	}

	if cur != root {
		return errs.New(errs.ValidationError, "merkle proof does not reconstruct the expected root")
	}
	return nil
}

// HashPairKeccak256 concatenates two digests and hashes the result with
// Keccak-256 — the default pairing function for VerifyMerkleProof.
func HashPairKeccak256(a, b Hash32) Hash32 {
	return Keccak256(a.Bytes(), b.Bytes())
}
