package textfmt

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/kex"
	"rubin.dev/plabble/signing"
)

// Algorithm names on the textual surface mirror the schema.Config
// toggle names packet/crypto_multienum.go already uses on the wire,
// so a document's [body.keys]/[body.signatures] tables read the same
// vocabulary an engineer would see in DESIGN.md or the wire-level
// toggle names.

func signingAlgorithmName(a signing.Algorithm) string {
	switch a {
	case signing.Ed25519:
		return "ed25519"
	case signing.Dsa44:
		return "dsa44"
	case signing.Dsa65:
		return "dsa65"
	case signing.Falcon:
		return "falcon"
	case signing.SlhDsaSha128s:
		return "slh_dsa_sha128s"
	default:
		return ""
	}
}

func parseSigningAlgorithm(name string) (signing.Algorithm, error) {
	for _, a := range signing.CanonicalOrder {
		if signingAlgorithmName(a) == name {
			return a, nil
		}
	}
	return 0, bitio.NewError(bitio.ErrInvalidDiscriminator, "unknown signing algorithm: "+name)
}

func kexAlgorithmName(a kex.Algorithm) string {
	switch a {
	case kex.X25519:
		return "x25519"
	case kex.Kem512:
		return "kem512"
	case kex.Kem768:
		return "kem768"
	default:
		return ""
	}
}

func parseKexAlgorithm(name string) (kex.Algorithm, error) {
	for _, a := range kex.CanonicalOrder {
		if kexAlgorithmName(a) == name {
			return a, nil
		}
	}
	return 0, bitio.NewError(bitio.ErrInvalidDiscriminator, "unknown key exchange algorithm: "+name)
}
