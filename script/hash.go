package script

import "golang.org/x/crypto/blake2b"

// hash256 is HASH's pure hashing function: Blake2b-256, the same
// family the rest of the protocol uses for bucket IDs and key
// derivation, just at the wider digest size a general-purpose script
// opcode calls for.
func hash256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}
