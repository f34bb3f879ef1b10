// Package kex implements the three key-exchange algorithms Plabble
// negotiates: classical X25519 Diffie-Hellman and the post-quantum
// ML-KEM-512/768 key encapsulation mechanisms.
package kex

import (
	"crypto/rand"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/kyber/kyber512"
	"github.com/cloudflare/circl/kem/kyber/kyber768"
	"golang.org/x/crypto/curve25519"

	"rubin.dev/plabble/bitio"
)

// Algorithm identifies which key-exchange primitive a request or
// response carries. The pinned canonical order used by multi_enum
// fields is X25519 < Kem512 < Kem768.
type Algorithm int

const (
	X25519 Algorithm = iota
	// Kem512 and Kem768 are the ML-KEM-512/768 slots, implemented with
	// circl's CRYSTALS-Kyber512/768 schemes.
	Kem512
	Kem768
)

// CanonicalOrder is the fixed multi_enum presentation order.
var CanonicalOrder = []Algorithm{X25519, Kem512, Kem768}

func kemScheme(a Algorithm) kem.Scheme {
	switch a {
	case Kem512:
		return kyber512.Scheme()
	case Kem768:
		return kyber768.Scheme()
	default:
		return nil
	}
}

// Request is the value an initiator sends: an X25519 public key or a
// KEM encapsulation (public) key.
type Request struct {
	Algorithm Algorithm
	Bytes     []byte
}

// Response is the value a responder sends back: an X25519 public key
// or a KEM ciphertext.
type Response struct {
	Algorithm Algorithm
	Bytes     []byte
}

// Exchange runs one side of a key exchange for a chosen algorithm. The
// zero value is ready to use as an initiator; call MakeRequest first.
type Exchange struct {
	algorithm Algorithm
	secret    []byte // X25519 scalar, or the KEM decapsulation key
}

func New(algorithm Algorithm) *Exchange {
	return &Exchange{algorithm: algorithm}
}

// MakeRequest generates fresh key material for the configured
// algorithm and returns the request to send to the peer.
func (e *Exchange) MakeRequest() (Request, error) {
	switch e.algorithm {
	case X25519:
		var scalar [32]byte
		if _, err := rand.Read(scalar[:]); err != nil {
			return Request{}, err
		}
		public, err := curve25519.X25519(scalar[:], curve25519.Basepoint)
		if err != nil {
			return Request{}, err
		}
		e.secret = scalar[:]
		return Request{Algorithm: X25519, Bytes: public}, nil

	case Kem512, Kem768:
		scheme := kemScheme(e.algorithm)
		pk, sk, err := scheme.GenerateKeyPair()
		if err != nil {
			return Request{}, err
		}
		skBytes, err := sk.MarshalBinary()
		if err != nil {
			return Request{}, err
		}
		pkBytes, err := pk.MarshalBinary()
		if err != nil {
			return Request{}, err
		}
		e.secret = skBytes
		return Request{Algorithm: e.algorithm, Bytes: pkBytes}, nil

	default:
		return Request{}, bitio.NewError(bitio.ErrInputParsingFailed, "unknown key exchange algorithm")
	}
}

// ProcessRequest handles an incoming request as the responder, returning
// the shared secret it computed and the response to send back.
func ProcessRequest(req Request) ([]byte, Response, error) {
	switch req.Algorithm {
	case X25519:
		var scalar [32]byte
		if _, err := rand.Read(scalar[:]); err != nil {
			return nil, Response{}, err
		}
		public, err := curve25519.X25519(scalar[:], curve25519.Basepoint)
		if err != nil {
			return nil, Response{}, err
		}
		shared, err := curve25519.X25519(scalar[:], req.Bytes)
		if err != nil {
			return nil, Response{}, err
		}
		return shared, Response{Algorithm: X25519, Bytes: public}, nil

	case Kem512, Kem768:
		scheme := kemScheme(req.Algorithm)
		pk, err := scheme.UnmarshalBinaryPublicKey(req.Bytes)
		if err != nil {
			return nil, Response{}, err
		}
		ct, ss, err := scheme.Encapsulate(pk)
		if err != nil {
			return nil, Response{}, err
		}
		return ss, Response{Algorithm: req.Algorithm, Bytes: ct}, nil

	default:
		return nil, Response{}, bitio.NewError(bitio.ErrInputParsingFailed, "unknown key exchange algorithm")
	}
}

// ProcessResponse consumes the secret generated by MakeRequest and the
// peer's response to compute the final shared secret. Returns an error
// if the response's algorithm doesn't match the one MakeRequest used.
func (e *Exchange) ProcessResponse(res Response) ([]byte, error) {
	if res.Algorithm != e.algorithm {
		return nil, bitio.NewError(bitio.ErrInputParsingFailed, "key exchange response algorithm mismatch")
	}

	switch e.algorithm {
	case X25519:
		return curve25519.X25519(e.secret, res.Bytes)

	case Kem512, Kem768:
		scheme := kemScheme(e.algorithm)
		sk, err := scheme.UnmarshalBinaryPrivateKey(e.secret)
		if err != nil {
			return nil, err
		}
		return scheme.Decapsulate(sk, res.Bytes)

	default:
		return nil, bitio.NewError(bitio.ErrInputParsingFailed, "unknown key exchange algorithm")
	}
}
