package textfmt

import "rubin.dev/plabble/packet"

type postQuantumSettingsDoc struct {
	SignDsa44         bool `toml:"sign_dsa44,omitempty"`
	SignDsa65         bool `toml:"sign_dsa65,omitempty"`
	SignFalcon        bool `toml:"sign_falcon,omitempty"`
	SignSlhDsa        bool `toml:"sign_slh_dsa,omitempty"`
	KeyExchangeKem512 bool `toml:"kex_kem512,omitempty"`
	KeyExchangeKem768 bool `toml:"kex_kem768,omitempty"`
}

type cryptoSettingsDoc struct {
	ChaCha20     bool                    `toml:"chacha20,omitempty"`
	Aes          bool                    `toml:"aes_ctr,omitempty"`
	LargerHashes bool                    `toml:"larger_hashes,omitempty"`
	Blake3       bool                    `toml:"blake3,omitempty"`
	Ed25519      bool                    `toml:"ed25519,omitempty"`
	X25519       bool                    `toml:"x25519,omitempty"`
	PostQuantum  *postQuantumSettingsDoc `toml:"post_quantum,omitempty"`
}

func cryptoSettingsToDoc(s packet.CryptoSettings) cryptoSettingsDoc {
	doc := cryptoSettingsDoc{
		ChaCha20: s.EncryptWithChaCha20, Aes: s.EncryptWithAes,
		LargerHashes: s.LargerHashes, Blake3: s.UseBlake3,
		Ed25519: s.SignEd25519, X25519: s.KeyExchangeX25519,
	}
	if s.UsePostQuantum && s.PostQuantum != nil {
		pq := s.PostQuantum
		doc.PostQuantum = &postQuantumSettingsDoc{
			SignDsa44: pq.SignDsa44, SignDsa65: pq.SignDsa65, SignFalcon: pq.SignFalcon,
			SignSlhDsa: pq.SignSlhDsa, KeyExchangeKem512: pq.KeyExchangeKem512, KeyExchangeKem768: pq.KeyExchangeKem768,
		}
	}
	return doc
}

func cryptoSettingsFromDoc(doc cryptoSettingsDoc) packet.CryptoSettings {
	s := packet.CryptoSettings{
		EncryptWithChaCha20: doc.ChaCha20, EncryptWithAes: doc.Aes,
		LargerHashes: doc.LargerHashes, UseBlake3: doc.Blake3,
		SignEd25519: doc.Ed25519, KeyExchangeX25519: doc.X25519,
	}
	if doc.PostQuantum != nil {
		s.UsePostQuantum = true
		s.PostQuantum = &packet.PostQuantumSettings{
			SignDsa44: doc.PostQuantum.SignDsa44, SignDsa65: doc.PostQuantum.SignDsa65,
			SignFalcon: doc.PostQuantum.SignFalcon, SignSlhDsa: doc.PostQuantum.SignSlhDsa,
			KeyExchangeKem512: doc.PostQuantum.KeyExchangeKem512, KeyExchangeKem768: doc.PostQuantum.KeyExchangeKem768,
		}
	}
	return s
}

type baseDoc struct {
	Version        uint8              `toml:"version"`
	FireAndForget  bool               `toml:"fire_and_forget,omitempty"`
	PresharedKey   bool               `toml:"preshared_key,omitempty"`
	UseEncryption  bool               `toml:"use_encryption,omitempty"`
	CryptoSettings *cryptoSettingsDoc `toml:"crypto_settings,omitempty"`
	PskId          *string            `toml:"psk_id,omitempty"`
	PskSalt        *string            `toml:"psk_salt,omitempty"`
}

func baseToDoc(b *packet.Base) baseDoc {
	doc := baseDoc{
		Version: b.Version, FireAndForget: b.FireAndForget,
		PresharedKey: b.PresharedKey, UseEncryption: b.UseEncryption,
	}
	if b.SpecifyCryptoSettings && b.CryptoSettings != nil {
		cs := cryptoSettingsToDoc(*b.CryptoSettings)
		doc.CryptoSettings = &cs
	}
	if b.PresharedKey {
		id, salt := byteString(b.PskId), byteString(b.PskSalt)
		doc.PskId, doc.PskSalt = &id, &salt
	}
	return doc
}

func baseFromDoc(doc baseDoc) (*packet.Base, error) {
	b := &packet.Base{
		Version: doc.Version, FireAndForget: doc.FireAndForget,
		PresharedKey: doc.PresharedKey, UseEncryption: doc.UseEncryption,
	}
	if doc.CryptoSettings != nil {
		b.SpecifyCryptoSettings = true
		cs := cryptoSettingsFromDoc(*doc.CryptoSettings)
		b.CryptoSettings = &cs
	}
	if b.PresharedKey {
		if doc.PskId == nil || doc.PskSalt == nil {
			return nil, errLength(16, 0)
		}
		id, err := parseBytesN(*doc.PskId, 16)
		if err != nil {
			return nil, err
		}
		salt, err := parseBytesN(*doc.PskSalt, 16)
		if err != nil {
			return nil, err
		}
		b.PskId, b.PskSalt = id, salt
	}
	return b, nil
}
