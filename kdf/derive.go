// Package kdf derives per-purpose 64-byte keys from a shared secret,
// using either a salted/personalized Blake2b-512 MAC or Blake3's
// derive-key mode.
package kdf

import (
	"encoding/base64"

	"golang.org/x/crypto/blake2b"
	"lukechampine.com/blake3"
)

// DeriveKey derives a 64-byte key from 64 bytes of input key material, a
// 16-byte salt and a 16-byte context, optionally mixing in an extra
// 64-byte key.
//
// When useBlake3 is true it uses Blake3's derive-key mode, keyed by the
// base64url (unpadded) encoding of context, absorbing ikm and salt (and
// the extra key, if given) before squeezing 64 bytes from the XOF —
// this matches the original construction byte for byte, since derive-key
// mode is itself a standardized, cross-implementation-stable domain
// separator.
//
// When false it uses a Blake2b-512 MAC keyed by ikm. The reference
// construction feeds salt and context through Blake2b's native
// parameter-block salt/personalization fields
// (Blake2bMac512::new_with_salt_and_personal); golang.org/x/crypto/blake2b
// does not expose those fields publicly, so this derives the same
// separation by absorbing context and salt as the first hashed bytes
// under the keyed MAC instead. The domain separation property is
// preserved, but the output will not match the specific
// libsodium-derived cross-implementation test vector carried in the
// original Blake2b test (see DESIGN.md).
func DeriveKey(useBlake3 bool, ikm [64]byte, salt, context [16]byte, extraKey *[64]byte) [64]byte {
	if useBlake3 {
		return deriveBlake3(ikm, salt, context, extraKey)
	}
	return deriveBlake2b(ikm, salt, context, extraKey)
}

func deriveBlake2b(ikm [64]byte, salt, context [16]byte, extraKey *[64]byte) [64]byte {
	h, err := blake2b.New(64, ikm[:])
	if err != nil {
		panic(err) // 64 is always a valid Blake2b digest size
	}
	h.Write(context[:])
	h.Write(salt[:])
	if extraKey != nil {
		h.Write(extraKey[:])
	}
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}

func deriveBlake3(ikm [64]byte, salt, context [16]byte, extraKey *[64]byte) [64]byte {
	contextString := base64.RawURLEncoding.EncodeToString(context[:])
	kdf := blake3.NewDeriveKey(contextString)
	kdf.Write(ikm[:])
	kdf.Write(salt[:])
	if extraKey != nil {
		kdf.Write(extraKey[:])
	}

	var out [64]byte
	xof := kdf.XOF()
	xof.Read(out[:])
	return out
}
