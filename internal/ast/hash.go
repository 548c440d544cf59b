package ast

import (
	"fmt"
	"hash/fnv"
)

// ShortHash produces a deterministic 8-digit hex digest of the given
// strings. It is the suffix used for generated identifiers, so it must be
// stable across runs and platforms.
func ShortHash(parts ...string) string {
	h := fnv.New32a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%08x", h.Sum32())
}
