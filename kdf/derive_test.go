package kdf

import "testing"

func TestDeriveKeyBlake2bIsDeterministicAndSeparated(t *testing.T) {
	var ikm [64]byte
	for i := range ikm {
		ikm[i] = 1
	}
	var salt [16]byte
	for i := range salt {
		salt[i] = 3
	}
	var context [16]byte
	for i := range context {
		context[i] = 2
	}

	a := DeriveKey(false, ikm, salt, context, nil)
	b := DeriveKey(false, ikm, salt, context, nil)
	if a != b {
		t.Fatalf("expected deterministic output")
	}

	var otherContext [16]byte
	for i := range otherContext {
		otherContext[i] = 9
	}
	c := DeriveKey(false, ikm, salt, otherContext, nil)
	if a == c {
		t.Fatalf("expected different context to change output")
	}
}

func TestDeriveKeyBlake2bExtraKeyChangesOutput(t *testing.T) {
	var ikm [64]byte
	var salt, context [16]byte
	base := DeriveKey(false, ikm, salt, context, nil)

	var extra [64]byte
	extra[0] = 1
	withExtra := DeriveKey(false, ikm, salt, context, &extra)
	if base == withExtra {
		t.Fatalf("expected extra key to change output")
	}
}

func TestDeriveKeyBlake3MatchesDomainSeparation(t *testing.T) {
	var ikm [64]byte
	for i := range ikm {
		ikm[i] = 1
	}
	var salt [16]byte
	for i := range salt {
		salt[i] = 3
	}
	var context [16]byte
	for i := range context {
		context[i] = 2
	}

	a := DeriveKey(true, ikm, salt, context, nil)
	b := DeriveKey(true, ikm, salt, context, nil)
	if a != b {
		t.Fatalf("expected deterministic output")
	}

	var otherSalt [16]byte
	for i := range otherSalt {
		otherSalt[i] = 4
	}
	c := DeriveKey(true, ikm, otherSalt, context, nil)
	if a == c {
		t.Fatalf("expected different salt to change output")
	}
}
