// Package signing implements the signature algorithms Plabble
// negotiates: Ed25519 and ML-DSA-44/65 are fully implemented; Falcon-1024
// and SLH-DSA-SHA128s are deliberately left unimplemented, mirroring the
// commented-out todo!() arms in the original source's own
// crypto/signatures.rs — this is intentional fidelity, not a dropped
// feature.
package signing

import (
	"crypto/ed25519"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/dilithium/mode2"
	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"rubin.dev/plabble/bitio"
)

// Algorithm identifies a signature scheme. The pinned canonical order
// used by multi_enum fields is Ed25519 < Dsa44 < Dsa65 < Falcon < SlhDsaSha128s.
type Algorithm int

const (
	Ed25519 Algorithm = iota
	Dsa44
	Dsa65
	Falcon
	SlhDsaSha128s
)

var CanonicalOrder = []Algorithm{Ed25519, Dsa44, Dsa65, Falcon, SlhDsaSha128s}

// KeyPair holds both halves of a generated signing key.
type KeyPair struct {
	Algorithm  Algorithm
	PublicKey  []byte
	PrivateKey []byte
}

func dilithiumScheme(a Algorithm) sign.Scheme {
	switch a {
	case Dsa44:
		return mode2.Scheme()
	case Dsa65:
		return mode3.Scheme()
	default:
		return nil
	}
}

// GenerateKeyPair creates a fresh key pair for the given algorithm.
// Returns an error for Falcon and SlhDsaSha128s, which are unsupported.
func GenerateKeyPair(algorithm Algorithm) (KeyPair, error) {
	switch algorithm {
	case Ed25519:
		pub, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			return KeyPair{}, err
		}
		return KeyPair{Algorithm: algorithm, PublicKey: pub, PrivateKey: priv}, nil

	case Dsa44, Dsa65:
		scheme := dilithiumScheme(algorithm)
		pk, sk, err := scheme.GenerateKey()
		if err != nil {
			return KeyPair{}, err
		}
		pkBytes, err := pk.MarshalBinary()
		if err != nil {
			return KeyPair{}, err
		}
		skBytes, err := sk.MarshalBinary()
		if err != nil {
			return KeyPair{}, err
		}
		return KeyPair{Algorithm: algorithm, PublicKey: pkBytes, PrivateKey: skBytes}, nil

	default:
		return KeyPair{}, bitio.NewError(bitio.ErrInputParsingFailed, "unsupported signing algorithm")
	}
}

// Sign produces a signature over message under privateKey for the
// given algorithm. Falcon and SlhDsaSha128s report ok=false, matching
// the original's fall-through to None for those two algorithms.
func Sign(algorithm Algorithm, privateKey, message []byte) (signature []byte, ok bool) {
	switch algorithm {
	case Ed25519:
		if len(privateKey) != ed25519.PrivateKeySize {
			return nil, false
		}
		return ed25519.Sign(ed25519.PrivateKey(privateKey), message), true

	case Dsa44, Dsa65:
		scheme := dilithiumScheme(algorithm)
		sk, err := scheme.UnmarshalBinaryPrivateKey(privateKey)
		if err != nil {
			return nil, false
		}
		return scheme.Sign(sk, message, nil), true

	default:
		return nil, false
	}
}

// Verify checks a signature over message under publicKey. Falcon and
// SlhDsaSha128s report ok=false unconditionally.
func Verify(algorithm Algorithm, publicKey, message, signature []byte) (ok bool) {
	switch algorithm {
	case Ed25519:
		if len(publicKey) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)

	case Dsa44, Dsa65:
		scheme := dilithiumScheme(algorithm)
		pk, err := scheme.UnmarshalBinaryPublicKey(publicKey)
		if err != nil {
			return false
		}
		return scheme.Verify(pk, message, signature, nil)

	default:
		return false
	}
}
