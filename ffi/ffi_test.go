package ffi

import (
	"bytes"
	"testing"

	"rubin.dev/plabble/packet"
	"rubin.dev/plabble/textfmt"
)

func customRequest() *packet.Request {
	return &packet.Request{
		Base:   packet.Base{FireAndForget: true},
		Header: packet.RequestHeader{Type: packet.ReqCustom},
		Body:   packet.RequestBody{Custom: &packet.CustomBody{Protocol: 7, Data: []byte("hello")}},
	}
}

func TestEncodeDecodePacketRoundTrip(t *testing.T) {
	doc, err := textfmt.RenderRequest(customRequest())
	if err != nil {
		t.Fatalf("RenderRequest: %v", err)
	}

	wire, status, err := EncodePacket(string(doc), true)
	if err != nil {
		t.Fatalf("EncodePacket: %v", err)
	}
	if status != StatusOk {
		t.Fatalf("status = %d, want StatusOk", status)
	}

	rendered, status, err := DecodePacket(wire, true)
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	if status != StatusOk {
		t.Fatalf("status = %d, want StatusOk", status)
	}
	if !bytes.Equal([]byte(rendered), doc) {
		t.Fatalf("round trip mismatch:\ngot:  %s\nwant: %s", rendered, doc)
	}
}

func TestEncodePacketRejectsMalformedInput(t *testing.T) {
	_, status, err := EncodePacket("not = [valid", true)
	if err == nil {
		t.Fatalf("expected error")
	}
	if status != StatusInputParsingFailed {
		t.Fatalf("status = %d, want StatusInputParsingFailed", status)
	}
}

func TestDecodePacketRejectsGarbageBytes(t *testing.T) {
	_, status, err := DecodePacket([]byte{0xff, 0xff, 0xff}, true)
	if err == nil {
		t.Fatalf("expected error")
	}
	if status != StatusError {
		t.Fatalf("status = %d, want StatusError", status)
	}
}

func TestNewSessionKeyProducesDistinctKeys(t *testing.T) {
	a, err := newSessionKey()
	if err != nil {
		t.Fatalf("newSessionKey: %v", err)
	}
	b, err := newSessionKey()
	if err != nil {
		t.Fatalf("newSessionKey: %v", err)
	}
	if *a == *b {
		t.Fatalf("expected distinct keys")
	}
}
