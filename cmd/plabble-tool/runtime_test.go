package main

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"rubin.dev/plabble/ffi"
	"rubin.dev/plabble/packet"
	"rubin.dev/plabble/textfmt"
)

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	if strings.TrimSpace(stdout.String()) != ffi.Version {
		t.Fatalf("stdout = %q, want %q", stdout.String(), ffi.Version)
	}
}

func TestRunUnknownSubcommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"bogus"}, strings.NewReader(""), &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestRunEncodeThenDecodeRoundTrip(t *testing.T) {
	req := &packet.Request{
		Base:   packet.Base{FireAndForget: true},
		Header: packet.RequestHeader{Type: packet.ReqCustom},
		Body:   packet.RequestBody{Custom: &packet.CustomBody{Protocol: 3, Data: []byte("payload")}},
	}
	doc, err := textfmt.RenderRequest(req)
	if err != nil {
		t.Fatalf("RenderRequest: %v", err)
	}

	var encodedOut, stderr bytes.Buffer
	code := run([]string{"encode"}, bytes.NewReader(doc), &encodedOut, &stderr)
	if code != 0 {
		t.Fatalf("encode exit code = %d, stderr = %s", code, stderr.String())
	}

	wire, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encodedOut.String()))
	if err != nil {
		t.Fatalf("decode base64 stdout: %v", err)
	}

	var decodedOut bytes.Buffer
	stderr.Reset()
	code = run([]string{"decode"}, bytes.NewReader(wire), &decodedOut, &stderr)
	if code != 0 {
		t.Fatalf("decode exit code = %d, stderr = %s", code, stderr.String())
	}
	if decodedOut.String() != string(doc) {
		t.Fatalf("round trip mismatch:\ngot:  %s\nwant: %s", decodedOut.String(), doc)
	}
}

func TestRunEncodeRejectsBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"encode", "-bogus-flag"}, strings.NewReader(""), &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}
