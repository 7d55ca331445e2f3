package tinkcryptopan

import (
	"fmt"
	"sync"

	"github.com/google/tink/go/core/registry"
)

var registerMu sync.Mutex

// Register adds the Crypto-PAn KeyManager to Tink's registry. It is safe to
// call multiple times and from multiple goroutines.
func Register() error {
	registerMu.Lock()
	defer registerMu.Unlock()

	// Tink doesn't provide a way to check registration besides a lookup.
	if _, err := registry.GetKeyManager(CryptoPAnKeyTypeURL); err == nil {
		return nil
	}
	if err := registry.RegisterKeyManager(NewKeyManager()); err != nil {
		return fmt.Errorf("failed to register Crypto-PAn KeyManager: %w", err)
	}
	return nil
}
