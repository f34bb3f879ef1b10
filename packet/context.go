package packet

import (
	"crypto/subtle"
	"io"
	"log/slog"

	"golang.org/x/crypto/blake2b"
	"lukechampine.com/blake3"

	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/core"
	"rubin.dev/plabble/cryptostream"
	"rubin.dev/plabble/kdf"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// protocolSalt is the salt used for key derivation while a live session
// key is available, as opposed to PSK mode where the packet's own
// psk_salt is used instead.
var protocolSalt = [16]byte{'P', 'L', 'A', 'B', 'B', 'L', 'E', '.', 'P', 'R', 'O', 'T', 'O', 'C', 'O', 'L'}

// BucketKeyLookup resolves the symmetric key a bucket was created
// with, for packet types that encrypt against a bucket key rather than
// a session.
type BucketKeyLookup func(id core.BucketId) (*[32]byte, bool)

// PresharedKeyLookup resolves a 64-byte pre-shared key by its 16-byte
// id, for packets establishing or continuing a PSK-mode session
// without a prior key exchange.
type PresharedKeyLookup func(pskId [16]byte) (*[64]byte, bool)

// Context carries everything the framing pipeline needs beyond the
// packet bytes themselves: the session key (once a key exchange has
// completed), the per-direction packet counters that feed key
// derivation, and the lookups for a PSK or bucket key. GetPsk resolves
// the key when no session key is in use; GetBucketKey is stored but no
// framing step consults it.
type Context struct {
	GetBucketKey BucketKeyLookup
	GetPsk       PresharedKeyLookup

	SessionKey *[64]byte

	ClientCounter uint16
	ServerCounter uint16

	// Logger receives framing-pipeline diagnostics (MAC failures,
	// decryption failures); nil falls back to a discard sink.
	Logger *slog.Logger
}

func (c *Context) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return discardLogger
	}
	return c.Logger
}

// NewContext returns a context with no session key yet. Without a
// session key, every packet framed through it must set pre_shared_key
// with a PskId that getPsk resolves; otherwise key derivation fails.
func NewContext(getBucketKey BucketKeyLookup, getPsk PresharedKeyLookup) *Context {
	return &Context{GetBucketKey: getBucketKey, GetPsk: getPsk}
}

// createKey derives the 64-byte key for one packet's direction. altKey
// selects 0x77 instead of 0x11 as the context's trailing byte, giving
// an independent second key from the same counter — used to key a
// second composed cipher layer when both ChaCha20 and AES-CTR are
// negotiated, so the two layers are never driven by identical
// keystream input.
func (c *Context) createKey(base *Base, settings CryptoSettings, altKey, isRequest bool) (*[64]byte, error) {
	var sessionKey [64]byte
	var salt [16]byte

	if c.SessionKey != nil && !base.PresharedKey {
		sessionKey = *c.SessionKey
		salt = protocolSalt
	} else {
		if base.PskId == nil || c.GetPsk == nil {
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "no session key and no pre-shared key available")
		}
		var pskId [16]byte
		copy(pskId[:], base.PskId)
		psk, ok := c.GetPsk(pskId)
		if !ok {
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "unknown pre-shared key id")
		}
		sessionKey = *psk
		if base.PskSalt == nil {
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "pre_shared_key set but psk_salt missing")
		}
		copy(salt[:], base.PskSalt)
	}

	var ctx [16]byte
	if isRequest {
		copy(ctx[:13], []byte("plabble.req.c"))
		ctx[13] = byte(c.ClientCounter >> 8)
		ctx[14] = byte(c.ClientCounter)
	} else {
		copy(ctx[:13], []byte("plabble.res.c"))
		ctx[13] = byte(c.ServerCounter >> 8)
		ctx[14] = byte(c.ServerCounter)
	}
	if altKey {
		ctx[15] = 0x77
	} else {
		ctx[15] = 0x11
	}

	key := kdf.DeriveKey(settings.UseBlake3, sessionKey, salt, ctx, nil)
	return &key, nil
}

// packetStream builds the composed keystream for one packet direction
// from the negotiated CryptoSettings: ChaCha20 alone, AES-CTR alone, or
// both layered (keyed independently via altKey on the second layer) when
// a packet negotiates both.
func (c *Context) packetStream(base *Base, settings CryptoSettings, isRequest bool) (bitio.CryptoStream, error) {
	if !settings.EncryptWithChaCha20 && !settings.EncryptWithAes {
		return nil, bitio.NewError(bitio.ErrLengthMismatch, "use_encryption set but no cipher negotiated")
	}

	var layers []cryptostream.Stream

	if settings.EncryptWithChaCha20 {
		key, err := c.createKey(base, settings, false, isRequest)
		if err != nil {
			return nil, err
		}
		var chachaKey [32]byte
		var nonce [12]byte
		copy(chachaKey[:], key[:32])
		copy(nonce[:], key[32:44])
		s, err := cryptostream.NewChaCha20(chachaKey, nonce)
		if err != nil {
			return nil, err
		}
		layers = append(layers, s)
	}

	if settings.EncryptWithAes {
		key, err := c.createKey(base, settings, settings.EncryptWithChaCha20, isRequest)
		if err != nil {
			return nil, err
		}
		s, err := cryptostream.NewAesCtr(key[:32], key[32:48])
		if err != nil {
			return nil, err
		}
		layers = append(layers, s)
	}

	return cryptostream.NewComposed(layers...), nil
}

// macKey derives the key used to authenticate an unencrypted packet,
// using the same per-direction derivation as packetStream but without
// alt_key (a MAC packet never also runs a cipher layer to share the
// key space with).
func (c *Context) macKey(base *Base, settings CryptoSettings, isRequest bool) (*[64]byte, error) {
	return c.createKey(base, settings, false, isRequest)
}

// computeMAC authenticates an unencrypted packet's base+header+body
// bytes with the derived per-direction key, selecting keyed Blake2b or
// Blake3 per settings.UseBlake3 (mirroring the same choice DeriveKey
// makes). Either hash is keyed with the first 32 bytes of the derived
// key and produces the 16-byte tag the base layer reserves directly.
func computeMAC(ctx *Context, base *Base, settings CryptoSettings, isRequest bool, data []byte) ([]byte, error) {
	key, err := ctx.macKey(base, settings, isRequest)
	if err != nil {
		return nil, err
	}

	if settings.UseBlake3 {
		h := blake3.New(16, key[:32])
		h.Write(data)
		return h.Sum(nil), nil
	}

	h, err := blake2b.New(16, key[:32])
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

func macEqual(want, got []byte) bool {
	return subtle.ConstantTimeCompare(want, got) == 1
}
