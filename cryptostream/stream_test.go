package cryptostream

import (
	"bytes"
	"testing"
)

func xorAll(s Stream, data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ s.NextByte()
	}
	return out
}

func TestChaCha20RoundTrip(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = 10
	}
	var nonce [12]byte

	plaintext := []byte("Hello world!!")

	enc, err := NewChaCha20(key, nonce)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ciphertext := xorAll(enc, plaintext)

	dec, err := NewChaCha20(key, nonce)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := xorAll(dec, ciphertext)
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("got %q want %q", got, plaintext)
	}
}

func TestAesCtrRoundTrip(t *testing.T) {
	key := []byte("0000000000000000")[:16]
	iv := make([]byte, 16)
	copy(iv, key)

	plaintext := []byte("Hello world!!")

	enc, err := NewAesCtr(key, iv)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ciphertext := xorAll(enc, plaintext)

	dec, err := NewAesCtr(key, iv)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := xorAll(dec, ciphertext)
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("got %q want %q", got, plaintext)
	}
}

func TestComposedLayersAreReversibleInEitherOrder(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = 5
	}
	var nonce [12]byte
	aesKey := make([]byte, 16)
	for i := range aesKey {
		aesKey[i] = 6
	}
	aesIV := make([]byte, 16)

	plaintext := []byte("composed layers roundtrip!!")

	chacha, _ := NewChaCha20(key, nonce)
	aesCtr, _ := NewAesCtr(aesKey, aesIV)
	enc := NewComposed(chacha, aesCtr)
	ciphertext := xorAll(enc, plaintext)

	chacha2, _ := NewChaCha20(key, nonce)
	aesCtr2, _ := NewAesCtr(aesKey, aesIV)
	dec := NewComposed(aesCtr2, chacha2)
	got := xorAll(dec, ciphertext)

	if !bytes.Equal(got, plaintext) {
		t.Fatalf("got %q want %q", got, plaintext)
	}
}

func TestKeyWrapRoundTrip(t *testing.T) {
	kek := bytes.Repeat([]byte{0x11}, 32)
	keyIn := bytes.Repeat([]byte{0x22}, 32)

	wrapped, err := WrapKey(kek, keyIn)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	unwrapped, err := UnwrapKey(kek, wrapped)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if !bytes.Equal(unwrapped, keyIn) {
		t.Fatalf("got %x want %x", unwrapped, keyIn)
	}
}

func TestKeyWrapDetectsTampering(t *testing.T) {
	kek := bytes.Repeat([]byte{0x11}, 32)
	keyIn := bytes.Repeat([]byte{0x22}, 32)

	wrapped, err := WrapKey(kek, keyIn)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	wrapped[0] ^= 0xFF

	if _, err := UnwrapKey(kek, wrapped); err == nil {
		t.Fatalf("expected integrity failure for tampered blob")
	}
}
