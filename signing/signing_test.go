package signing

import "testing"

func testSignVerifyRoundTrip(t *testing.T, algorithm Algorithm) {
	t.Helper()
	kp, err := GenerateKeyPair(algorithm)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	message := []byte("plabble signing round trip")
	sig, ok := Sign(algorithm, kp.PrivateKey, message)
	if !ok {
		t.Fatalf("sign reported not ok")
	}

	if !Verify(algorithm, kp.PublicKey, message, sig) {
		t.Fatalf("verify failed for a correctly produced signature")
	}

	tampered := append([]byte{}, message...)
	tampered[0] ^= 0xFF
	if Verify(algorithm, kp.PublicKey, tampered, sig) {
		t.Fatalf("verify should fail for a tampered message")
	}
}

func TestEd25519RoundTrip(t *testing.T) {
	testSignVerifyRoundTrip(t, Ed25519)
}

func TestDsa44RoundTrip(t *testing.T) {
	testSignVerifyRoundTrip(t, Dsa44)
}

func TestDsa65RoundTrip(t *testing.T) {
	testSignVerifyRoundTrip(t, Dsa65)
}

func TestFalconUnsupported(t *testing.T) {
	if _, err := GenerateKeyPair(Falcon); err == nil {
		t.Fatalf("expected error generating a Falcon key pair")
	}
	if _, ok := Sign(Falcon, nil, []byte("x")); ok {
		t.Fatalf("expected Sign to report ok=false for Falcon")
	}
	if Verify(Falcon, nil, []byte("x"), nil) {
		t.Fatalf("expected Verify to report false for Falcon")
	}
}

func TestSlhDsaSha128sUnsupported(t *testing.T) {
	if _, err := GenerateKeyPair(SlhDsaSha128s); err == nil {
		t.Fatalf("expected error generating an SLH-DSA key pair")
	}
	if _, ok := Sign(SlhDsaSha128s, nil, []byte("x")); ok {
		t.Fatalf("expected Sign to report ok=false for SLH-DSA")
	}
}

func TestCanonicalOrder(t *testing.T) {
	want := []Algorithm{Ed25519, Dsa44, Dsa65, Falcon, SlhDsaSha128s}
	for i, a := range want {
		if CanonicalOrder[i] != a {
			t.Fatalf("index %d: got %v want %v", i, CanonicalOrder[i], a)
		}
	}
}
