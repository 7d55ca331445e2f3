// Package tinkcryptopan provides Tink integration for Crypto-PAn.
// This file contains the factory function for creating anonymizers from Tink keyset handles.
package tinkcryptopan

import (
	"fmt"

	"github.com/google/tink/go/keyset"
	"github.com/vdparikh/cryptopan"
	"github.com/vdparikh/cryptopan/subtle"
)

// New creates a Crypto-PAn primitive from a Tink keyset handle. The
// KeyManager is registered with Tink's registry on first use.
//
// Example:
//
//	handle, err := keyset.NewHandle(tinkcryptopan.KeyTemplate())
//	if err != nil {
//	    return err
//	}
//	anonymizer, err := tinkcryptopan.New(handle)
//	if err != nil {
//	    return err
//	}
//	anon := anonymizer.Anonymize(netip.MustParseAddr("192.0.2.1"))
func New(handle *keyset.Handle) (cryptopan.IPAnonymizer, error) {
	if handle == nil {
		return nil, fmt.Errorf("keyset handle cannot be nil")
	}
	if err := Register(); err != nil {
		return nil, err
	}

	primitives, err := handle.Primitives()
	if err != nil {
		return nil, fmt.Errorf("failed to get primitives from handle: %w", err)
	}
	primary := primitives.Primary
	if primary == nil {
		return nil, fmt.Errorf("no primary key found in keyset")
	}

	ctx, ok := primary.Primitive.(*subtle.KeyedContext)
	if !ok {
		return nil, fmt.Errorf("primary key %d is not a Crypto-PAn key (got %T)", primary.KeyID, primary.Primitive)
	}
	return cryptopan.NewAnonymizerFromContext(ctx), nil
}
