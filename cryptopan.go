// Package cryptopan implements Crypto-PAn, the Cryptography-based
// Prefix-preserving Anonymization of IP addresses.
//
// Crypto-PAn maps an address to another address of the same family so that
// two addresses sharing a prefix of length L are mapped to addresses sharing
// a prefix of exactly length L. Subnet structure survives the transform,
// which makes anonymized traces usable for research.
//
// The transform is keyed with 32 bytes: an AES-128 key followed by a padding
// seed. The same key always yields the same mapping.
//
// Example usage:
//
//	key := make([]byte, 32) // load from your key management system
//
//	anonymizer, err := cryptopan.NewAnonymizer(key)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	anon := anonymizer.Anonymize(netip.MustParseAddr("192.0.2.1"))
//	orig := anonymizer.Deanonymize(anon)
//	// orig is 192.0.2.1 again
package cryptopan

import (
	"net/netip"

	"github.com/vdparikh/cryptopan/subtle"
)

// KeySize is the required key length in bytes.
const KeySize = subtle.KeySize

// KeyLengthError is returned by NewAnonymizer when the key is not exactly
// KeySize bytes long.
type KeyLengthError = subtle.KeyLengthError

// Anonymizer applies Crypto-PAn with a fixed key. It is built once per key
// and is safe for concurrent use by multiple goroutines.
type Anonymizer struct {
	ctx *subtle.KeyedContext
}

// NewAnonymizer creates an Anonymizer from a 32-byte key. Any other length
// fails with a KeyLengthError.
func NewAnonymizer(key []byte) (*Anonymizer, error) {
	ctx, err := subtle.NewKeyedContext(key)
	if err != nil {
		return nil, err
	}
	return &Anonymizer{ctx: ctx}, nil
}

// NewAnonymizerFromContext wraps an already derived KeyedContext, as
// produced by a Tink KeyManager.
func NewAnonymizerFromContext(ctx *subtle.KeyedContext) *Anonymizer {
	return &Anonymizer{ctx: ctx}
}

// Anonymize returns the anonymized counterpart of addr. IPv4 addresses stay
// IPv4 and IPv6 addresses stay IPv6 (the zone, if any, is kept). The zero
// Addr is returned unchanged.
func (a *Anonymizer) Anonymize(addr netip.Addr) netip.Addr {
	if !addr.IsValid() {
		return addr
	}
	value, bits := addrToUint128(addr)
	return uint128ToAddr(a.ctx.Anonymize(value, bits), bits, addr.Zone())
}

// Deanonymize recovers the original address from an address returned by
// Anonymize with the same key.
func (a *Anonymizer) Deanonymize(addr netip.Addr) netip.Addr {
	if !addr.IsValid() {
		return addr
	}
	value, bits := addrToUint128(addr)
	return uint128ToAddr(a.ctx.Deanonymize(value, bits), bits, addr.Zone())
}

// Verify that Anonymizer implements IPAnonymizer
var _ IPAnonymizer = (*Anonymizer)(nil)
