// Package hash provides stable 64-bit identifiers for dataset and message
// names. Registries key their entries by these IDs instead of raw strings.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}
