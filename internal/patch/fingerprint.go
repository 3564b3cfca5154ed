package patch

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("hyinit-registry-fingerprint-key!")

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("patch: cbor enc mode: %v", err))
	}
	encMode = em
}

// Fingerprint hashes the registry contents in plan order. Two registries
// holding the same patches registered in the same order have the same
// fingerprint, which makes it usable as a cache key component.
func (r *Registry) Fingerprint() (string, error) {
	data, err := encMode.Marshal(r.All())
	if err != nil {
		return "", fmt.Errorf("patch: fingerprint: %w", err)
	}
	return Hash(data)
}

// Hash returns the 64-bit HighwayHash of data in hex.
func Hash(data []byte) (string, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
