// Package packet implements the Plabble wire packet: the common base,
// request/response headers, the full body variant set, and the
// encode/decode framing pipeline that threads crypto settings and a
// session context through them.
package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/schema"
)

// PostQuantumSettings selects which post-quantum algorithms a session
// negotiates, present only when CryptoSettings.UsePostQuantum is set.
type PostQuantumSettings struct {
	SignDsa44        bool
	SignDsa65        bool
	SignFalcon       bool
	SignSlhDsa       bool
	KeyExchangeKem512 bool
	KeyExchangeKem768 bool
	flag64           bool
	flag128          bool
}

// DefaultPostQuantumSettings returns the all-false zero value; every
// flag defaults to unset in the absence of an explicit choice.
func DefaultPostQuantumSettings() PostQuantumSettings {
	return PostQuantumSettings{}
}

func encodePostQuantumSettings(w *bitio.Writer, s PostQuantumSettings) {
	w.WriteBool(s.SignDsa44)
	w.WriteBool(s.SignDsa65)
	w.WriteBool(s.SignFalcon)
	w.WriteBool(s.SignSlhDsa)
	w.WriteBool(s.KeyExchangeKem512)
	w.WriteBool(s.KeyExchangeKem768)
	w.WriteBool(s.flag64)
	w.WriteBool(s.flag128)
}

func decodePostQuantumSettings(r *bitio.Reader) (PostQuantumSettings, error) {
	var s PostQuantumSettings
	var err error
	if s.SignDsa44, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.SignDsa65, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.SignFalcon, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.SignSlhDsa, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.KeyExchangeKem512, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.KeyExchangeKem768, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.flag64, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.flag128, err = r.ReadBool(); err != nil {
		return s, err
	}
	return s, nil
}

// CryptoSettings selects the algorithm suite a packet, session or
// certificate uses. The zero value is not the wire default — use
// DefaultCryptoSettings for the three fields that default true.
type CryptoSettings struct {
	EncryptWithChaCha20 bool
	EncryptWithAes      bool
	LargerHashes        bool
	UseBlake3           bool
	SignEd25519         bool
	KeyExchangeX25519   bool
	flag64              bool
	UsePostQuantum      bool
	PostQuantum         *PostQuantumSettings // present iff UsePostQuantum
}

// DefaultCryptoSettings matches the original's Default impl: ChaCha20
// encryption, Ed25519 signing, X25519 key exchange, everything else off.
func DefaultCryptoSettings() CryptoSettings {
	return CryptoSettings{
		EncryptWithChaCha20: true,
		SignEd25519:         true,
		KeyExchangeX25519:   true,
	}
}

// EncodeCryptoSettings writes the one- or two-byte settings block, each
// field a single bit in declaration order.
func EncodeCryptoSettings(w *bitio.Writer, s CryptoSettings) error {
	w.WriteBool(s.EncryptWithChaCha20)
	w.WriteBool(s.EncryptWithAes)
	w.WriteBool(s.LargerHashes)
	w.WriteBool(s.UseBlake3)
	w.WriteBool(s.SignEd25519)
	w.WriteBool(s.KeyExchangeX25519)
	w.WriteBool(s.flag64)
	w.WriteBool(s.UsePostQuantum)
	if s.UsePostQuantum {
		if s.PostQuantum == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "use_post_quantum set but post_quantum_settings missing")
		}
		encodePostQuantumSettings(w, *s.PostQuantum)
	}
	return nil
}

// DecodeCryptoSettings reads a CryptoSettings block previously written
// by EncodeCryptoSettings.
func DecodeCryptoSettings(r *bitio.Reader) (CryptoSettings, error) {
	var s CryptoSettings
	var err error
	if s.EncryptWithChaCha20, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.EncryptWithAes, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.LargerHashes, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.UseBlake3, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.SignEd25519, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.KeyExchangeX25519, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.flag64, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.UsePostQuantum, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.UsePostQuantum {
		pqc, err := decodePostQuantumSettings(r)
		if err != nil {
			return s, err
		}
		s.PostQuantum = &pqc
	}
	return s, nil
}

// ApplyToggles sets every per-algorithm toggle a multi_enum field
// downstream (certificate keys/signatures, session key exchange,
// packet signatures) consults: "ed25519", "dsa44", "dsa65", "falcon",
// "slh_dsa_sha128s", "x25519", "kem512", "kem768", plus the stream/hash
// choices "chacha20",
// "aes_ctr", "larger_hashes" and "blake3". Called once per packet
// right after the base's CryptoSettings (or the default) is known, so
// every later field in the record sees a fully populated toggle map.
func (s CryptoSettings) ApplyToggles(cfg *schema.Config) {
	cfg.SetToggle("chacha20", s.EncryptWithChaCha20)
	cfg.SetToggle("aes_ctr", s.EncryptWithAes)
	cfg.SetToggle("larger_hashes", s.LargerHashes)
	cfg.SetToggle("blake3", s.UseBlake3)
	cfg.SetToggle("ed25519", s.SignEd25519)
	cfg.SetToggle("x25519", s.KeyExchangeX25519)

	var pq PostQuantumSettings
	if s.UsePostQuantum && s.PostQuantum != nil {
		pq = *s.PostQuantum
	}
	cfg.SetToggle("dsa44", pq.SignDsa44)
	cfg.SetToggle("dsa65", pq.SignDsa65)
	cfg.SetToggle("falcon", pq.SignFalcon)
	cfg.SetToggle("slh_dsa_sha128s", pq.SignSlhDsa)
	cfg.SetToggle("kem512", pq.KeyExchangeKem512)
	cfg.SetToggle("kem768", pq.KeyExchangeKem768)
}
