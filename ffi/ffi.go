// Package ffi is the foreign-function surface: parsing and rendering
// packets between their textual and binary forms for callers that
// cannot link the packet/textfmt packages directly. The pure Go API
// lives here; export.go wraps it with the cgo-exported C ABI.
package ffi

import (
	"crypto/rand"
	"fmt"

	"rubin.dev/plabble/packet"
	"rubin.dev/plabble/textfmt"
)

// Version is the implementation's semantic version, returned by the
// version() FFI entry point.
const Version = "0.1.0"

// Status mirrors the FFI surface's result discriminator.
type Status int

const (
	StatusOk Status = iota
	StatusNullPointer
	StatusInvalidInput
	StatusInputParsingFailed
	StatusError
)

// diagnosticContext gives encode/decode a working session so the
// unencrypted-packet MAC invariant and encrypted-packet keystream
// derivation both have key material to draw on, even though this
// surface has no notion of an established session of its own. This is
// not grounded in the retrieved source — the spec names the FFI entry
// points but not how they source cryptographic material for a packet
// that specifies use_encryption or omits it — so a fixed, well-known
// session key is used purely to make round-tripping through this
// surface exercise the codec, never a substitute for a real session.
var diagnosticContext = newDiagnosticContext()

func newDiagnosticContext() *packet.Context {
	var key [64]byte
	copy(key[:], []byte("plabble ffi diagnostic session key, not for live traffic use"))
	return &packet.Context{SessionKey: &key}
}

// EncodePacket parses the textual packet representation and encodes
// it to wire bytes.
func EncodePacket(input string, isRequest bool) ([]byte, Status, error) {
	if isRequest {
		req, err := textfmt.ParseRequest([]byte(input))
		if err != nil {
			return nil, StatusInputParsingFailed, err
		}
		out, err := packet.EncodeRequest(diagnosticContext, req)
		if err != nil {
			return nil, StatusError, err
		}
		return out, StatusOk, nil
	}
	resp, err := textfmt.ParseResponse([]byte(input))
	if err != nil {
		return nil, StatusInputParsingFailed, err
	}
	out, err := packet.EncodeResponse(diagnosticContext, resp)
	if err != nil {
		return nil, StatusError, err
	}
	return out, StatusOk, nil
}

// DecodePacket decodes wire bytes and renders the textual packet
// representation.
func DecodePacket(data []byte, isRequest bool) (string, Status, error) {
	if isRequest {
		req, err := packet.DecodeRequest(diagnosticContext, data)
		if err != nil {
			return "", StatusError, err
		}
		out, err := textfmt.RenderRequest(req)
		if err != nil {
			return "", StatusError, err
		}
		return string(out), StatusOk, nil
	}
	resp, err := packet.DecodeResponse(diagnosticContext, data)
	if err != nil {
		return "", StatusError, err
	}
	out, err := textfmt.RenderResponse(resp)
	if err != nil {
		return "", StatusError, err
	}
	return string(out), StatusOk, nil
}

// newSessionKey returns a fresh random 64-byte session key. It is
// unexported; within this package only the tests call it.
func newSessionKey() (*[64]byte, error) {
	var key [64]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("ffi: generate session key: %w", err)
	}
	return &key, nil
}
