// Package textfmt parses and renders the human-readable TOML packet
// representation exercised throughout the original project's own test
// suite (every packet test there round-trips through toml::from_str)
// into and out of the packet package's binary Request/Response types.
package textfmt

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/core"
)

// byteString renders raw bytes as the unpadded base64url form used
// throughout the textual surface for keys, signatures, ids and opaque
// payloads alike. The original project mixes this with plain
// TOML integer arrays for a handful of "raw data" fields
// (CustomBody.Data, for instance); this implementation standardizes on
// base64 everywhere instead, trading that one piece of textual
// fidelity for a single, uniform encoding rule across every body
// variant.
func byteString(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func parseBytes(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

func parseBytesN(s string, n int) ([]byte, error) {
	b, err := parseBytes(s)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, errLength(n, len(b))
	}
	return b, nil
}

func errLength(want, got int) error {
	return bitio.NewError(bitio.ErrLengthMismatch, fmt.Sprintf("expected %d bytes, got %d", want, got))
}

func errUnknownType(name string) error {
	return bitio.NewError(bitio.ErrInvalidDiscriminator, fmt.Sprintf("unknown packet type: %q", name))
}

// u16key/parseU16Key render a numeric bucket slot as a TOML map key,
// which must be a string.
func u16key(v uint16) string {
	return strconv.FormatUint(uint64(v), 10)
}

func parseU16Key(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, bitio.NewError(bitio.ErrLengthMismatch, "invalid numeric slot key: "+s)
	}
	return uint16(v), nil
}

func parseBucketID(s string) (core.BucketId, error) {
	return core.ParseBucketId(s)
}
