package packet

import (
	"crypto/ed25519"

	"github.com/cloudflare/circl/kem/kyber/kyber512"
	"github.com/cloudflare/circl/kem/kyber/kyber768"
	"github.com/cloudflare/circl/sign/dilithium/mode2"
	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/certificate"
	"rubin.dev/plabble/kex"
	"rubin.dev/plabble/schema"
	"rubin.dev/plabble/signing"
)

// Every multi_enum field in a packet body (key exchange requests and
// responses, signatures, verification keys) has no in-band
// discriminator: presence and order follow signing.CanonicalOrder or
// kex.CanonicalOrder, gated by a per-algorithm toggle on cfg, exactly
// as certificate.Encode/Decode already does for a certificate's own
// Keys/Signatures fields.

func sigToggleName(a signing.Algorithm) string {
	switch a {
	case signing.Ed25519:
		return "ed25519"
	case signing.Dsa44:
		return "dsa44"
	case signing.Dsa65:
		return "dsa65"
	case signing.Falcon:
		return "falcon"
	case signing.SlhDsaSha128s:
		return "slh_dsa_sha128s"
	default:
		return ""
	}
}

func signatureSize(a signing.Algorithm) (int, bool) {
	switch a {
	case signing.Ed25519:
		return ed25519.SignatureSize, true
	case signing.Dsa44:
		return mode2.SignatureSize, true
	case signing.Dsa65:
		return mode3.SignatureSize, true
	default:
		return 0, false
	}
}

func verificationKeySize(a signing.Algorithm) (int, bool) {
	switch a {
	case signing.Ed25519:
		return ed25519.PublicKeySize, true
	case signing.Dsa44:
		return mode2.PublicKeySize, true
	case signing.Dsa65:
		return mode3.PublicKeySize, true
	default:
		return 0, false
	}
}

func kexToggleName(a kex.Algorithm) string {
	switch a {
	case kex.X25519:
		return "x25519"
	case kex.Kem512:
		return "kem512"
	case kex.Kem768:
		return "kem768"
	default:
		return ""
	}
}

func kexRequestSize(a kex.Algorithm) int {
	switch a {
	case kex.X25519:
		return 32
	case kex.Kem512:
		return kyber512.PublicKeySize
	case kex.Kem768:
		return kyber768.PublicKeySize
	default:
		return 0
	}
}

func kexResponseSize(a kex.Algorithm) int {
	switch a {
	case kex.X25519:
		return 32
	case kex.Kem512:
		return kyber512.CiphertextSize
	case kex.Kem768:
		return kyber768.CiphertextSize
	default:
		return 0
	}
}

// EncodeCryptoSignatures writes the subset of signing.CanonicalOrder
// that cfg's per-algorithm toggles ("ed25519", "dsa44", ...) select.
func EncodeCryptoSignatures(w *bitio.Writer, sigs []certificate.KeyedValue, cfg *schema.Config) error {
	for _, algorithm := range signing.CanonicalOrder {
		name := sigToggleName(algorithm)
		if !cfg.Toggle(name) {
			continue
		}
		size, ok := signatureSize(algorithm)
		if !ok {
			return bitio.NewError(bitio.ErrInvalidDiscriminator, "unsupported signature algorithm toggled on")
		}
		kv, found := findKeyedValue(sigs, algorithm)
		if !found || len(kv.Bytes) != size {
			return bitio.NewError(bitio.ErrLengthMismatch, "missing or malformed signature for toggled algorithm: "+name)
		}
		w.WriteBytes(kv.Bytes)
	}
	return nil
}

func DecodeCryptoSignatures(r *bitio.Reader, cfg *schema.Config) ([]certificate.KeyedValue, error) {
	var out []certificate.KeyedValue
	for _, algorithm := range signing.CanonicalOrder {
		if !cfg.Toggle(sigToggleName(algorithm)) {
			continue
		}
		size, ok := signatureSize(algorithm)
		if !ok {
			return nil, bitio.NewError(bitio.ErrInvalidDiscriminator, "unsupported signature algorithm toggled on")
		}
		b, err := r.ReadBytes(size)
		if err != nil {
			return nil, err
		}
		out = append(out, certificate.KeyedValue{Algorithm: algorithm, Bytes: b})
	}
	return out, nil
}

// EncodeVerificationKeys writes a REGISTER request's freshly generated
// public keys, one per toggled signing algorithm.
func EncodeVerificationKeys(w *bitio.Writer, keys []certificate.KeyedValue, cfg *schema.Config) error {
	for _, algorithm := range signing.CanonicalOrder {
		name := sigToggleName(algorithm)
		if !cfg.Toggle(name) {
			continue
		}
		size, ok := verificationKeySize(algorithm)
		if !ok {
			return bitio.NewError(bitio.ErrInvalidDiscriminator, "unsupported verification key algorithm toggled on")
		}
		kv, found := findKeyedValue(keys, algorithm)
		if !found || len(kv.Bytes) != size {
			return bitio.NewError(bitio.ErrLengthMismatch, "missing or malformed verification key for toggled algorithm: "+name)
		}
		w.WriteBytes(kv.Bytes)
	}
	return nil
}

func DecodeVerificationKeys(r *bitio.Reader, cfg *schema.Config) ([]certificate.KeyedValue, error) {
	var out []certificate.KeyedValue
	for _, algorithm := range signing.CanonicalOrder {
		if !cfg.Toggle(sigToggleName(algorithm)) {
			continue
		}
		size, ok := verificationKeySize(algorithm)
		if !ok {
			return nil, bitio.NewError(bitio.ErrInvalidDiscriminator, "unsupported verification key algorithm toggled on")
		}
		b, err := r.ReadBytes(size)
		if err != nil {
			return nil, err
		}
		out = append(out, certificate.KeyedValue{Algorithm: algorithm, Bytes: b})
	}
	return out, nil
}

func findKeyedValue(values []certificate.KeyedValue, algorithm signing.Algorithm) (certificate.KeyedValue, bool) {
	for _, v := range values {
		if v.Algorithm == algorithm {
			return v, true
		}
	}
	return certificate.KeyedValue{}, false
}

// EncodeKeyExchangeRequests writes the subset of kex.CanonicalOrder
// that cfg's per-algorithm toggles ("x25519", "kem512", "kem768")
// select.
func EncodeKeyExchangeRequests(w *bitio.Writer, reqs []kex.Request, cfg *schema.Config) error {
	for _, algorithm := range kex.CanonicalOrder {
		name := kexToggleName(algorithm)
		if !cfg.Toggle(name) {
			continue
		}
		req, found := findKexRequest(reqs, algorithm)
		size := kexRequestSize(algorithm)
		if !found || len(req.Bytes) != size {
			return bitio.NewError(bitio.ErrLengthMismatch, "missing or malformed key exchange request for toggled algorithm: "+name)
		}
		w.WriteBytes(req.Bytes)
	}
	return nil
}

func DecodeKeyExchangeRequests(r *bitio.Reader, cfg *schema.Config) ([]kex.Request, error) {
	var out []kex.Request
	for _, algorithm := range kex.CanonicalOrder {
		if !cfg.Toggle(kexToggleName(algorithm)) {
			continue
		}
		b, err := r.ReadBytes(kexRequestSize(algorithm))
		if err != nil {
			return nil, err
		}
		out = append(out, kex.Request{Algorithm: algorithm, Bytes: b})
	}
	return out, nil
}

func EncodeKeyExchangeResponses(w *bitio.Writer, resps []kex.Response, cfg *schema.Config) error {
	for _, algorithm := range kex.CanonicalOrder {
		name := kexToggleName(algorithm)
		if !cfg.Toggle(name) {
			continue
		}
		resp, found := findKexResponse(resps, algorithm)
		size := kexResponseSize(algorithm)
		if !found || len(resp.Bytes) != size {
			return bitio.NewError(bitio.ErrLengthMismatch, "missing or malformed key exchange response for toggled algorithm: "+name)
		}
		w.WriteBytes(resp.Bytes)
	}
	return nil
}

func DecodeKeyExchangeResponses(r *bitio.Reader, cfg *schema.Config) ([]kex.Response, error) {
	var out []kex.Response
	for _, algorithm := range kex.CanonicalOrder {
		if !cfg.Toggle(kexToggleName(algorithm)) {
			continue
		}
		b, err := r.ReadBytes(kexResponseSize(algorithm))
		if err != nil {
			return nil, err
		}
		out = append(out, kex.Response{Algorithm: algorithm, Bytes: b})
	}
	return out, nil
}

func findKexRequest(reqs []kex.Request, algorithm kex.Algorithm) (kex.Request, bool) {
	for _, r := range reqs {
		if r.Algorithm == algorithm {
			return r, true
		}
	}
	return kex.Request{}, false
}

func findKexResponse(resps []kex.Response, algorithm kex.Algorithm) (kex.Response, bool) {
	for _, r := range resps {
		if r.Algorithm == algorithm {
			return r, true
		}
	}
	return kex.Response{}, false
}
