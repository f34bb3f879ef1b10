package core

import (
	"encoding/base64"

	"golang.org/x/crypto/blake2b"
	"lukechampine.com/blake3"

	"rubin.dev/plabble/bitio"
)

// BucketId is a 16-byte opaque identifier, textually representable in
// one of three forms: a `#`-prefixed string hashed with Blake2b-128, an
// `@`-prefixed string hashed with Blake3 (XOF truncated to 16 bytes),
// or a direct 22-character unpadded base64url encoding of the raw
// bytes.
type BucketId [16]byte

var b64 = base64.RawURLEncoding

// ParseBucketId parses one of the three textual forms.
func ParseBucketId(repr string) (BucketId, error) {
	if repr == "" {
		return BucketId{}, bitio.NewError(bitio.ErrInputParsingFailed, "empty bucket id")
	}

	switch repr[0] {
	case '#':
		return BucketId(Hash128(false, []byte(repr[1:]))), nil
	case '@':
		return BucketId(Hash128(true, []byte(repr[1:]))), nil
	default:
		decoded, err := b64.DecodeString(repr)
		if err != nil {
			return BucketId{}, bitio.NewError(bitio.ErrInputParsingFailed, "invalid base64url bucket id: "+err.Error())
		}
		if len(decoded) != 16 {
			return BucketId{}, bitio.NewError(bitio.ErrLengthMismatch, "bucket id must decode to 16 bytes")
		}
		var id BucketId
		copy(id[:], decoded)
		return id, nil
	}
}

// Hash128 hashes the concatenation of parts to 16 bytes, using Blake3's
// XOF when useBlake3 is true, or an unkeyed Blake2b with a 16-byte
// digest size otherwise.
func Hash128(useBlake3 bool, parts ...[]byte) [16]byte {
	var out [16]byte
	if useBlake3 {
		h := blake3.New(16, nil)
		for _, p := range parts {
			h.Write(p)
		}
		copy(out[:], h.Sum(nil))
		return out
	}

	h, err := blake2b.New(16, nil)
	if err != nil {
		panic(err) // 16 is always a valid Blake2b digest size
	}
	for _, p := range parts {
		h.Write(p)
	}
	copy(out[:], h.Sum(nil))
	return out
}

// String renders the direct (unprefixed) base64url form.
func (id BucketId) String() string {
	return b64.EncodeToString(id[:])
}

func (id BucketId) Bytes() []byte {
	return id[:]
}

func (id BucketId) IsZero() bool {
	return id == BucketId{}
}
