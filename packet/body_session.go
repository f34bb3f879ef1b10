package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/certificate"
	"rubin.dev/plabble/kex"
	"rubin.dev/plabble/schema"
)

// SessionRequestBody opens (or resumes) a session: the client's
// key-exchange material for every algorithm negotiated in crypto
// settings, plus an optional request to persist the resulting key as a
// PSK and/or mix in a client-chosen salt.
type SessionRequestBody struct {
	PskExpiration *uint32  // present iff header flag persist_key
	Salt          *[16]byte // present iff header flag client_salt
	Keys          []kex.Request
}

func EncodeSessionRequestBody(w *bitio.Writer, b *SessionRequestBody, cfg *schema.Config) error {
	if cfg.MustToggledBy("persist_key") {
		if b.PskExpiration == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "persist_key set but psk_expiration missing")
		}
		w.WriteFixedUint(uint64(*b.PskExpiration), 32)
	}
	if cfg.MustToggledBy("client_salt") {
		if b.Salt == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "client_salt set but salt missing")
		}
		w.WriteBytes(b.Salt[:])
	}
	return EncodeKeyExchangeRequests(w, b.Keys, cfg)
}

func DecodeSessionRequestBody(r *bitio.Reader, cfg *schema.Config) (*SessionRequestBody, error) {
	b := &SessionRequestBody{}
	if cfg.MustToggledBy("persist_key") {
		v, err := r.ReadFixedUint(32)
		if err != nil {
			return nil, err
		}
		exp := uint32(v)
		b.PskExpiration = &exp
	}
	if cfg.MustToggledBy("client_salt") {
		saltBytes, err := r.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		var salt [16]byte
		copy(salt[:], saltBytes)
		b.Salt = &salt
	}
	keys, err := DecodeKeyExchangeRequests(r, cfg)
	if err != nil {
		return nil, err
	}
	b.Keys = keys
	return b, nil
}

// SessionResponseBody answers a SESSION request: the server's own
// key-exchange material, its half of any PSK identifier, and the
// signatures over the resulting session context, one per signing
// algorithm the crypto settings toggle on.
type SessionResponseBody struct {
	PskId      *[12]byte // present iff header flag key_persisted
	Salt       *[16]byte // present iff header flag server_salt
	Keys       []kex.Response
	Signatures []certificate.KeyedValue
}

func EncodeSessionResponseBody(w *bitio.Writer, b *SessionResponseBody, cfg *schema.Config) error {
	if cfg.MustToggledBy("key_persisted") {
		if b.PskId == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "key_persisted set but psk_id missing")
		}
		w.WriteBytes(b.PskId[:])
	}
	if cfg.MustToggledBy("server_salt") {
		if b.Salt == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "server_salt set but salt missing")
		}
		w.WriteBytes(b.Salt[:])
	}
	if err := EncodeKeyExchangeResponses(w, b.Keys, cfg); err != nil {
		return err
	}
	return EncodeCryptoSignatures(w, b.Signatures, cfg)
}

func DecodeSessionResponseBody(r *bitio.Reader, cfg *schema.Config) (*SessionResponseBody, error) {
	b := &SessionResponseBody{}
	if cfg.MustToggledBy("key_persisted") {
		idBytes, err := r.ReadBytes(12)
		if err != nil {
			return nil, err
		}
		var id [12]byte
		copy(id[:], idBytes)
		b.PskId = &id
	}
	if cfg.MustToggledBy("server_salt") {
		saltBytes, err := r.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		var salt [16]byte
		copy(salt[:], saltBytes)
		b.Salt = &salt
	}
	keys, err := DecodeKeyExchangeResponses(r, cfg)
	if err != nil {
		return nil, err
	}
	b.Keys = keys
	sigs, err := DecodeCryptoSignatures(r, cfg)
	if err != nil {
		return nil, err
	}
	b.Signatures = sigs
	return b, nil
}
