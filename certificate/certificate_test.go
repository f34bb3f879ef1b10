package certificate

import (
	"bytes"
	"testing"

	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/core"
	"rubin.dev/plabble/schema"
	"rubin.dev/plabble/signing"
)

func TestNonFullCertificateWireForm(t *testing.T) {
	cert := &Certificate{
		FullCert: false,
		Uri:      "https://certs.plabble.org/{id}.crt",
	}

	w := bitio.NewWriter()
	cfg := schema.NewConfig()
	if err := Encode(w, cert, cfg); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := w.Bytes()

	want := []byte{0x00}
	want = append(want, make([]byte, 16)...)
	want = append(want, 34)
	want = append(want, []byte("https://certs.plabble.org/{id}.crt")...)

	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	r := bitio.NewReader(got)
	decodeCfg := schema.NewConfig()
	decoded, err := Decode(r, decodeCfg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.FullCert || decoded.Uri != cert.Uri {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if decoded.Body != nil {
		t.Fatalf("expected no body on a non-full certificate")
	}
}

func TestFullCertificateRoundTrip(t *testing.T) {
	issuer := "https://certs.plabble.org/root.crt"
	body := &Body{
		ValidFrom:  core.FromSeconds(12_486_600),
		ValidUntil: core.FromSeconds(0xffffffff),
		IssuerURI:  &issuer,
		Data:       "CA=P;CN=tst",
		Keys: []KeyedValue{
			{Algorithm: signing.Ed25519, Bytes: make([]byte, 32)},
		},
		Signatures: []KeyedValue{
			{Algorithm: signing.Ed25519, Bytes: make([]byte, 64)},
		},
	}
	cert := &Certificate{
		FullCert: true,
		RootCert: false,
		Uri:      "https://certs.plabble.org/{id}.crt",
		Body:     body,
	}

	w := bitio.NewWriter()
	cfg := schema.NewConfig()
	cfg.SetToggle("ed25519", true)
	if err := Encode(w, cert, cfg); err != nil {
		t.Fatalf("encode: %v", err)
	}

	r := bitio.NewReader(w.Bytes())
	decodeCfg := schema.NewConfig()
	decodeCfg.SetToggle("ed25519", true)
	decoded, err := Decode(r, decodeCfg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Body == nil {
		t.Fatalf("expected a body on a full certificate")
	}
	if decoded.Body.Data != body.Data {
		t.Fatalf("got %q want %q", decoded.Body.Data, body.Data)
	}
	if decoded.Body.IssuerURI == nil || *decoded.Body.IssuerURI != issuer {
		t.Fatalf("issuer mismatch: %+v", decoded.Body.IssuerURI)
	}
	if len(decoded.Body.Keys) != 1 || len(decoded.Body.Signatures) != 1 {
		t.Fatalf("expected one key and one signature, got %d/%d", len(decoded.Body.Keys), len(decoded.Body.Signatures))
	}
}

func TestRootCertificateOmitsIssuerURI(t *testing.T) {
	body := &Body{
		ValidFrom:  core.FromSeconds(0),
		ValidUntil: core.FromSeconds(100),
		Data:       "CA=P;CN=root",
	}
	cert := &Certificate{
		FullCert: true,
		RootCert: true,
		Uri:      "https://certs.plabble.org/root.crt",
		Body:     body,
	}

	w := bitio.NewWriter()
	cfg := schema.NewConfig()
	if err := Encode(w, cert, cfg); err != nil {
		t.Fatalf("encode: %v", err)
	}

	r := bitio.NewReader(w.Bytes())
	decodeCfg := schema.NewConfig()
	decoded, err := Decode(r, decodeCfg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Body.IssuerURI != nil {
		t.Fatalf("root certificate should have no issuer_uri, got %v", *decoded.Body.IssuerURI)
	}
	if decoded.Body.Data != body.Data {
		t.Fatalf("got %q want %q", decoded.Body.Data, body.Data)
	}
}

func TestDeriveIdIsDeterministic(t *testing.T) {
	from := core.FromSeconds(1000)
	until := core.FromSeconds(2000)
	issuer := "https://certs.plabble.org/root.crt"

	a := DeriveId(from, until, &issuer, "CA=P;CN=tst")
	b := DeriveId(from, until, &issuer, "CA=P;CN=tst")
	if a != b {
		t.Fatalf("expected deterministic id")
	}

	c := DeriveId(from, until, nil, "CA=P;CN=tst")
	if a == c {
		t.Fatalf("expected issuer_uri to affect the derived id")
	}
}
