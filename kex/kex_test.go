package kex

import (
	"bytes"
	"testing"
)

func runExchange(t *testing.T, algorithm Algorithm) {
	t.Helper()
	alice := New(algorithm)
	bob := New(algorithm)

	req, err := alice.MakeRequest()
	if err != nil {
		t.Fatalf("make request: %v", err)
	}

	ssBob, res, err := ProcessRequest(req)
	if err != nil {
		t.Fatalf("process request: %v", err)
	}

	ssAlice, err := alice.ProcessResponse(res)
	if err != nil {
		t.Fatalf("process response: %v", err)
	}

	if !bytes.Equal(ssAlice, ssBob) {
		t.Fatalf("shared secrets differ: alice=%x bob=%x", ssAlice, ssBob)
	}
}

func TestX25519SharedSecret(t *testing.T) {
	runExchange(t, X25519)
}

func TestKem512SharedSecret(t *testing.T) {
	runExchange(t, Kem512)
}

func TestKem768SharedSecret(t *testing.T) {
	runExchange(t, Kem768)
}

func TestIncompatibleAlgorithmsMismatch(t *testing.T) {
	alice := New(X25519)
	req, err := alice.MakeRequest()
	if err != nil {
		t.Fatalf("make request: %v", err)
	}

	_, res, err := ProcessRequest(req)
	if err != nil {
		t.Fatalf("process request: %v", err)
	}
	res.Algorithm = Kem768

	if _, err := alice.ProcessResponse(res); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestCanonicalOrder(t *testing.T) {
	want := []Algorithm{X25519, Kem512, Kem768}
	for i, a := range want {
		if CanonicalOrder[i] != a {
			t.Fatalf("index %d: got %v want %v", i, CanonicalOrder[i], a)
		}
	}
}
