package crypto

import (
	"encoding/base64"

	"github.com/mr-tron/base58"

	"github.com/lucentlabs/dexmatcher/pkg/errs"
)

// DefaultMaxEncodedLen bounds base58/base64 decode input, guarding against
// unbounded allocation from a hostile peer (spec §6: "base58/base64 with a
// configurable max length").
const DefaultMaxEncodedLen = 1024

// Base58Encode encodes data as base58 (Bitcoin alphabet).
func Base58Encode(data []byte) string {
	return base58.Encode(data)
}

// Base58Decode decodes a base58 string, rejecting input longer than
// maxLen. Pass 0 for maxLen to use DefaultMaxEncodedLen.
func Base58Decode(s string, maxLen int) ([]byte, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxEncodedLen
	}
	if len(s) > maxLen {
		return nil, errs.Newf(errs.DomainError, "base58 input length %d exceeds max %d", len(s), maxLen)
	}
	out, err := base58.Decode(s)
	if err != nil {
		return nil, errs.Wrap(errs.DomainError, err, "invalid base58 input")
	}
	return out, nil
}

// Base64Encode encodes data as standard base64.
func Base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Base64Decode decodes a standard base64 string, rejecting input longer
// than maxLen. Pass 0 for maxLen to use DefaultMaxEncodedLen.
func Base64Decode(s string, maxLen int) ([]byte, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxEncodedLen
	}
	if len(s) > maxLen {
		return nil, errs.Newf(errs.DomainError, "base64 input length %d exceeds max %d", len(s), maxLen)
	}
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(errs.DomainError, err, "invalid base64 input")
	}
	return out, nil
}
