// This file defines the primitive interface shared with the Tink integration.
// For Tink integration, see the tinkcryptopan package.

package cryptopan

import "net/netip"

// IPAnonymizer is a Tink-compatible interface for prefix-preserving IP
// anonymization. It follows Tink's primitive pattern: implementations are
// deterministic and safe for concurrent use.
type IPAnonymizer interface {
	// Anonymize maps addr to an address of the same family, preserving the
	// length of the prefix shared with any other address.
	Anonymize(addr netip.Addr) netip.Addr

	// Deanonymize is the inverse of Anonymize.
	Deanonymize(addr netip.Addr) netip.Addr
}
