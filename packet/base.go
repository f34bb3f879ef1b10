package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/schema"
)

// Base is the first thing on the wire for every Plabble packet: the
// protocol version and the four session-wide flags that gate how the
// rest of the packet (header, crypto settings, body) is read.
type Base struct {
	Version uint8 // 4 bits

	FireAndForget         bool // no request_counter/response_to follows in the header
	PresharedKey          bool // session identified by a PSK id/salt rather than a live exchange
	UseEncryption         bool // header+body are keystream-wrapped
	SpecifyCryptoSettings bool // a CryptoSettings block follows before the header

	CryptoSettings *CryptoSettings // present iff SpecifyCryptoSettings

	PskId   []byte // 16 bytes, present iff PresharedKey
	PskSalt []byte // 16 bytes, present iff PresharedKey
}

// EncodeBase writes the version nibble and the four base flags, then
// (if set) the crypto settings block and PSK identifiers. It sets the
// toggles later header/body fields consult: "fire_and_forget",
// "preshared_key", "use_encryption", "specify_crypto_settings".
func EncodeBase(w *bitio.Writer, b *Base, cfg *schema.Config) error {
	w.WriteBits(uint64(b.Version), 4)
	w.WriteBool(b.FireAndForget)
	w.WriteBool(b.PresharedKey)
	w.WriteBool(b.UseEncryption)
	w.WriteBool(b.SpecifyCryptoSettings)

	cfg.SetToggle("fire_and_forget", b.FireAndForget)
	cfg.SetToggle("preshared_key", b.PresharedKey)
	cfg.SetToggle("use_encryption", b.UseEncryption)
	cfg.SetToggle("specify_crypto_settings", b.SpecifyCryptoSettings)

	if b.SpecifyCryptoSettings {
		if b.CryptoSettings == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "specify_crypto_settings set but crypto_settings missing")
		}
		if err := EncodeCryptoSettings(w, *b.CryptoSettings); err != nil {
			return err
		}
	}

	if b.PresharedKey {
		if len(b.PskId) != 16 || len(b.PskSalt) != 16 {
			return bitio.NewError(bitio.ErrLengthMismatch, "preshared_key set but psk_id/psk_salt wrong size")
		}
		w.WriteBytes(b.PskId)
		w.WriteBytes(b.PskSalt)
	}

	return nil
}

// DecodeBase reads a Base block previously written by EncodeBase.
func DecodeBase(r *bitio.Reader, cfg *schema.Config) (*Base, error) {
	version, err := r.ReadBits(4)
	if err != nil {
		return nil, err
	}
	b := &Base{Version: uint8(version)}

	if b.FireAndForget, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if b.PresharedKey, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if b.UseEncryption, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if b.SpecifyCryptoSettings, err = r.ReadBool(); err != nil {
		return nil, err
	}

	cfg.SetToggle("fire_and_forget", b.FireAndForget)
	cfg.SetToggle("preshared_key", b.PresharedKey)
	cfg.SetToggle("use_encryption", b.UseEncryption)
	cfg.SetToggle("specify_crypto_settings", b.SpecifyCryptoSettings)

	if b.SpecifyCryptoSettings {
		cs, err := DecodeCryptoSettings(r)
		if err != nil {
			return nil, err
		}
		b.CryptoSettings = &cs
	}

	if b.PresharedKey {
		if b.PskId, err = r.ReadBytes(16); err != nil {
			return nil, err
		}
		if b.PskSalt, err = r.ReadBytes(16); err != nil {
			return nil, err
		}
	}

	return b, nil
}
