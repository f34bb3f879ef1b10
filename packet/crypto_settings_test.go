package packet

import (
	"bytes"
	"testing"

	"rubin.dev/plabble/bitio"
)

func TestCryptoSettingsEncodeWithPostQuantum(t *testing.T) {
	s := CryptoSettings{
		EncryptWithChaCha20: true,
		EncryptWithAes:      false,
		LargerHashes:        true,
		UseBlake3:           false,
		SignEd25519:         true,
		KeyExchangeX25519:   true,
		UsePostQuantum:      true,
		PostQuantum: &PostQuantumSettings{
			SignDsa44:         true,
			SignDsa65:         false,
			SignFalcon:        true,
			SignSlhDsa:        false,
			KeyExchangeKem512: true,
			KeyExchangeKem768: false,
		},
	}

	w := bitio.NewWriter()
	if err := EncodeCryptoSettings(w, s); err != nil {
		t.Fatalf("EncodeCryptoSettings: %v", err)
	}
	got := w.Bytes()
	want := []byte{0b1011_0101, 0b0001_0101}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %08b %08b, want %08b %08b", got[0], got[1], want[0], want[1])
	}

	r := bitio.NewReader(got)
	decoded, err := DecodeCryptoSettings(r)
	if err != nil {
		t.Fatalf("DecodeCryptoSettings: %v", err)
	}
	if decoded != s {
		// PostQuantum is a pointer; compare by value.
		if decoded.PostQuantum == nil || *decoded.PostQuantum != *s.PostQuantum {
			t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, s)
		}
	}
}

func TestCryptoSettingsEncodeDefaultsWithoutPostQuantum(t *testing.T) {
	s := DefaultCryptoSettings()
	s.EncryptWithAes = true
	s.UseBlake3 = true

	w := bitio.NewWriter()
	if err := EncodeCryptoSettings(w, s); err != nil {
		t.Fatalf("EncodeCryptoSettings: %v", err)
	}
	got := w.Bytes()
	want := []byte{0b0011_1011}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %08b, want %08b", got[0], want[0])
	}

	r := bitio.NewReader(got)
	decoded, err := DecodeCryptoSettings(r)
	if err != nil {
		t.Fatalf("DecodeCryptoSettings: %v", err)
	}
	if !decoded.EncryptWithChaCha20 || !decoded.SignEd25519 || !decoded.KeyExchangeX25519 {
		t.Fatalf("defaults not preserved: %+v", decoded)
	}
}
