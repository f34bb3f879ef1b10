// Package certificate implements Plabble's identity certificates: an
// identity URI bound to zero or more verification keys, signed by an
// issuer (or self-signed, for a root certificate).
package certificate

import (
	"crypto/ed25519"

	"github.com/cloudflare/circl/sign/dilithium/mode2"
	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/core"
	"rubin.dev/plabble/schema"
	"rubin.dev/plabble/signing"
)

// KeyedValue pairs a signing algorithm with its raw key or signature
// bytes, used for both the Keys and Signatures multi_enum fields.
type KeyedValue struct {
	Algorithm signing.Algorithm
	Bytes     []byte
}

// Body is the certificate content present only on a full certificate.
type Body struct {
	ValidFrom  core.DateTime
	ValidUntil core.DateTime
	IssuerURI  *string // present iff !root_cert
	Data       string
	Keys       []KeyedValue
	Signatures []KeyedValue
}

// Certificate is a Plabble identity certificate.
type Certificate struct {
	FullCert bool
	RootCert bool
	Id       [16]byte
	Uri      string
	Body     *Body // present iff FullCert
}

// DeriveId computes the certificate ID: Blake2b-128 of valid_from,
// valid_until, the issuer URI (if any), and data, concatenated.
func DeriveId(validFrom, validUntil core.DateTime, issuerURI *string, data string) [16]byte {
	var fromBytes, untilBytes [4]byte
	putUint32(fromBytes[:], validFrom.Seconds())
	putUint32(untilBytes[:], validUntil.Seconds())

	parts := [][]byte{fromBytes[:], untilBytes[:]}
	if issuerURI != nil {
		parts = append(parts, []byte(*issuerURI))
	}
	parts = append(parts, []byte(data))
	return core.Hash128(false, parts...)
}

func putUint32(dst []byte, v uint32) {
	dst[0] = byte(v >> 24)
	dst[1] = byte(v >> 16)
	dst[2] = byte(v >> 8)
	dst[3] = byte(v)
}

// algorithmKeySize returns the fixed wire sizes for a signing
// algorithm's public key and signature. Falcon and SlhDsaSha128s are
// not supported (see signing package) and return ok=false.
func algorithmKeySize(a signing.Algorithm) (pubSize, sigSize int, ok bool) {
	switch a {
	case signing.Ed25519:
		return ed25519.PublicKeySize, ed25519.SignatureSize, true
	case signing.Dsa44:
		return mode2.PublicKeySize, mode2.SignatureSize, true
	case signing.Dsa65:
		return mode3.PublicKeySize, mode3.SignatureSize, true
	default:
		return 0, 0, false
	}
}

// toggleName returns the schema.Config toggle name gating this
// algorithm's presence in a multi_enum field.
func toggleName(a signing.Algorithm) string {
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

func findKeyedValue(values []KeyedValue, algorithm signing.Algorithm) (KeyedValue, bool) {
	for _, v := range values {
		if v.Algorithm == algorithm {
			return v, true
		}
	}
	return KeyedValue{}, false
}

// Encode serializes the certificate. cfg must already carry the
// per-algorithm toggles ("ed25519", "dsa44", ...) for any keys/
// signatures entries that should appear on the wire — the multi_enum
// fields have no in-band discriminator and rely entirely on cfg.
func Encode(w *bitio.Writer, cert *Certificate, cfg *schema.Config) error {
	w.WriteBool(cert.FullCert)
	w.WriteBool(cert.RootCert)
	w.WriteBits(0, 6) // pad the two flags to a whole byte
	cfg.SetToggle("full_cert", cert.FullCert)
	cfg.SetToggle("root_cert", cert.RootCert)

	w.WriteBytes(cert.Id[:])
	if err := w.WriteDynLength([]byte(cert.Uri)); err != nil {
		return err
	}

	if !cfg.MustToggledBy("full_cert") {
		return nil
	}
	if cert.Body == nil {
		return bitio.NewError(bitio.ErrLengthMismatch, "full_cert set but body missing")
	}
	body := cert.Body

	w.WriteFixedUint(uint64(body.ValidFrom.Seconds()), 32)
	w.WriteFixedUint(uint64(body.ValidUntil.Seconds()), 32)

	if !cert.RootCert {
		issuer := ""
		if body.IssuerURI != nil {
			issuer = *body.IssuerURI
		}
		if err := w.WriteDynLength([]byte(issuer)); err != nil {
			return err
		}
	}
	// root certificates are self-issued: no issuer_uri field on the wire.

	if err := w.WriteDynLength([]byte(body.Data)); err != nil {
		return err
	}

	for _, algorithm := range signing.CanonicalOrder {
		name := toggleName(algorithm)
		if !cfg.Toggle(name) {
			continue
		}
		kv, found := findKeyedValue(body.Keys, algorithm)
		if !found {
			return bitio.NewError(bitio.ErrLengthMismatch, "toggle set for key algorithm with no key present: "+name)
		}
		w.WriteBytes(kv.Bytes)
	}

	for _, algorithm := range signing.CanonicalOrder {
		name := toggleName(algorithm)
		if !cfg.Toggle(name) {
			continue
		}
		kv, found := findKeyedValue(body.Signatures, algorithm)
		if !found {
			return bitio.NewError(bitio.ErrLengthMismatch, "toggle set for signature algorithm with no signature present: "+name)
		}
		w.WriteBytes(kv.Bytes)
	}

	return nil
}

// Decode deserializes a certificate. cfg must carry the same
// per-algorithm toggles used when it was encoded.
func Decode(r *bitio.Reader, cfg *schema.Config) (*Certificate, error) {
	fullCert, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	rootCert, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadBits(6); err != nil {
		return nil, err
	}
	cfg.SetToggle("full_cert", fullCert)
	cfg.SetToggle("root_cert", rootCert)

	idBytes, err := r.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	uriBytes, err := r.ReadDynLength()
	if err != nil {
		return nil, err
	}

	cert := &Certificate{
		FullCert: fullCert,
		RootCert: rootCert,
		Uri:      string(uriBytes),
	}
	copy(cert.Id[:], idBytes)

	if !fullCert {
		return cert, nil
	}

	validFromSeconds, err := r.ReadFixedUint(32)
	if err != nil {
		return nil, err
	}
	validUntilSeconds, err := r.ReadFixedUint(32)
	if err != nil {
		return nil, err
	}

	body := &Body{
		ValidFrom:  core.FromSeconds(uint32(validFromSeconds)),
		ValidUntil: core.FromSeconds(uint32(validUntilSeconds)),
	}

	if !rootCert {
		issuerBytes, err := r.ReadDynLength()
		if err != nil {
			return nil, err
		}
		issuer := string(issuerBytes)
		body.IssuerURI = &issuer
	}

	dataBytes, err := r.ReadDynLength()
	if err != nil {
		return nil, err
	}
	body.Data = string(dataBytes)

	for _, algorithm := range signing.CanonicalOrder {
		if !cfg.Toggle(toggleName(algorithm)) {
			continue
		}
		pubSize, _, ok := algorithmKeySize(algorithm)
		if !ok {
			return nil, bitio.NewError(bitio.ErrInvalidDiscriminator, "unsupported verification key algorithm toggled on")
		}
		keyBytes, err := r.ReadBytes(pubSize)
		if err != nil {
			return nil, err
		}
		body.Keys = append(body.Keys, KeyedValue{Algorithm: algorithm, Bytes: keyBytes})
	}

	for _, algorithm := range signing.CanonicalOrder {
		if !cfg.Toggle(toggleName(algorithm)) {
			continue
		}
		_, sigSize, ok := algorithmKeySize(algorithm)
		if !ok {
			return nil, bitio.NewError(bitio.ErrInvalidDiscriminator, "unsupported signature algorithm toggled on")
		}
		sigBytes, err := r.ReadBytes(sigSize)
		if err != nil {
			return nil, err
		}
		body.Signatures = append(body.Signatures, KeyedValue{Algorithm: algorithm, Bytes: sigBytes})
	}

	cert.Body = body
	return cert, nil
}
