package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/certificate"
	"rubin.dev/plabble/schema"
)

// CertificateRequestBody queries for a certificate by ID, optionally
// demanding the server sign a fresh challenge to prove its identity.
type CertificateRequestBody struct {
	Id        *[16]byte // present iff header flag query_mode
	Challenge *[16]byte // present iff header flag challenge
}

func EncodeCertificateRequestBody(w *bitio.Writer, b *CertificateRequestBody, cfg *schema.Config) error {
	if cfg.MustToggledBy("query_mode") {
		if b.Id == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "query_mode set but id missing")
		}
		w.WriteBytes(b.Id[:])
	}
	if cfg.MustToggledBy("challenge") {
		if b.Challenge == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "challenge set but challenge value missing")
		}
		w.WriteBytes(b.Challenge[:])
	}
	return nil
}

func DecodeCertificateRequestBody(r *bitio.Reader, cfg *schema.Config) (*CertificateRequestBody, error) {
	b := &CertificateRequestBody{}
	if cfg.MustToggledBy("query_mode") {
		idBytes, err := r.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		var id [16]byte
		copy(id[:], idBytes)
		b.Id = &id
	}
	if cfg.MustToggledBy("challenge") {
		chBytes, err := r.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		var ch [16]byte
		copy(ch[:], chBytes)
		b.Challenge = &ch
	}
	return b, nil
}

// CertificateResponseBody answers a CERTIFICATE request: signatures
// over the challenge (if any) plus the full certificate chain, proving
// the server's identity and letting the client verify it.
type CertificateResponseBody struct {
	Signatures   []certificate.KeyedValue // multi_enum, algorithms per crypto_settings
	Certificates []certificate.Certificate
}

func EncodeCertificateResponseBody(w *bitio.Writer, b *CertificateResponseBody, cfg *schema.Config) error {
	if err := EncodeCryptoSignatures(w, b.Signatures, cfg); err != nil {
		return err
	}
	for i := range b.Certificates {
		certCfg := schema.NewConfig()
		if err := certificate.Encode(w, &b.Certificates[i], certCfg); err != nil {
			return err
		}
	}
	return nil
}

// DecodeCertificateResponseBody decodes signatures followed by
// certificates until input is exhausted: Certificates is the body's
// last field and carries no count prefix.
func DecodeCertificateResponseBody(r *bitio.Reader, cfg *schema.Config) (*CertificateResponseBody, error) {
	sigs, err := DecodeCryptoSignatures(r, cfg)
	if err != nil {
		return nil, err
	}
	b := &CertificateResponseBody{Signatures: sigs}
	for !r.AtEnd() {
		certCfg := schema.NewConfig()
		cert, err := certificate.Decode(r, certCfg)
		if err != nil {
			return nil, err
		}
		b.Certificates = append(b.Certificates, *cert)
	}
	return b, nil
}
