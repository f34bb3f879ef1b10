package packet

import (
	"context"
	"log/slog"
	"testing"
)

func testContext() *Context {
	var key [64]byte
	for i := range key {
		key[i] = byte(i)
	}
	return &Context{SessionKey: &key}
}

func TestEncodeDecodeRequestRoundTrip(t *testing.T) {
	ctx := testContext()
	req := &Request{
		Base:   Base{FireAndForget: true},
		Header: RequestHeader{Type: ReqCustom},
		Body:   RequestBody{Custom: &CustomBody{Protocol: 42, Data: []byte("hello")}},
	}

	wire, err := EncodeRequest(ctx, req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}

	decoded, err := DecodeRequest(ctx, wire)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if decoded.Header.Type != ReqCustom {
		t.Fatalf("header type = %v, want ReqCustom", decoded.Header.Type)
	}
	if decoded.Body.Custom.Protocol != 42 || string(decoded.Body.Custom.Data) != "hello" {
		t.Fatalf("body mismatch: %+v", decoded.Body.Custom)
	}
}

type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestDecodeRequestLogsMACMismatch(t *testing.T) {
	ctx := testContext()
	req := &Request{
		Base:   Base{FireAndForget: true},
		Header: RequestHeader{Type: ReqCustom},
		Body:   RequestBody{Custom: &CustomBody{Protocol: 1, Data: []byte("x")}},
	}
	wire, err := EncodeRequest(ctx, req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	wire[len(wire)-1] ^= 0xff // corrupt the trailing MAC byte

	h := &recordingHandler{}
	ctx.Logger = slog.New(h)

	if _, err := DecodeRequest(ctx, wire); err == nil {
		t.Fatalf("expected MAC mismatch error")
	}
	if len(h.records) != 1 {
		t.Fatalf("got %d log records, want 1", len(h.records))
	}
	if h.records[0].Message != "request packet authentication tag mismatch" {
		t.Fatalf("unexpected log message: %q", h.records[0].Message)
	}
}
