package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/certificate"
	"rubin.dev/plabble/core"
	"rubin.dev/plabble/schema"
)

// IdentifyRequestBody proves the caller's identity to the server,
// using a certificate obtained from an earlier REGISTER. The server
// checks the timestamp against an acceptable skew to reject replays.
type IdentifyRequestBody struct {
	Timestamp    core.DateTime
	Signatures   []certificate.KeyedValue // multi_enum, over timestamp+server id+session key
	Certificates []certificate.Certificate // last field: consumes to end
}

func EncodeIdentifyRequestBody(w *bitio.Writer, b *IdentifyRequestBody, cfg *schema.Config) error {
	w.WriteFixedUint(uint64(b.Timestamp.Seconds()), 32)
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

func DecodeIdentifyRequestBody(r *bitio.Reader, cfg *schema.Config) (*IdentifyRequestBody, error) {
	seconds, err := r.ReadFixedUint(32)
	if err != nil {
		return nil, err
	}
	sigs, err := DecodeCryptoSignatures(r, cfg)
	if err != nil {
		return nil, err
	}
	b := &IdentifyRequestBody{
		Timestamp:  core.FromSeconds(uint32(seconds)),
		Signatures: sigs,
	}
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
