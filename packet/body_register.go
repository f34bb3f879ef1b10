package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/certificate"
	"rubin.dev/plabble/schema"
)

// RegisterRequestBody registers a new identity with the server: fresh
// public keys for every algorithm in crypto_settings, plus semicolon-
// separated UTF-8 claims (e.g. "USERNAME=henk;AGE=24"). Claims is the
// body's last field and so consumes to the end of input.
type RegisterRequestBody struct {
	Keys   []certificate.KeyedValue // multi_enum, public keys only
	Claims string
}

func EncodeRegisterRequestBody(w *bitio.Writer, b *RegisterRequestBody, cfg *schema.Config) error {
	if err := EncodeVerificationKeys(w, b.Keys, cfg); err != nil {
		return err
	}
	w.WriteBytes([]byte(b.Claims))
	return nil
}

func DecodeRegisterRequestBody(r *bitio.Reader, cfg *schema.Config) (*RegisterRequestBody, error) {
	keys, err := DecodeVerificationKeys(r, cfg)
	if err != nil {
		return nil, err
	}
	claims, err := r.ReadBytes(r.RemainingBytes())
	if err != nil {
		return nil, err
	}
	return &RegisterRequestBody{Keys: keys, Claims: string(claims)}, nil
}
