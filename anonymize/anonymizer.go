// Package anonymize applies Crypto-PAn to addresses found in flows and
// traces. Results are kept in an LRU cache since traces tend to repeat the
// same addresses.
package anonymize

import (
	"fmt"
	"net/netip"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/vdparikh/cryptopan"
)

// Anonymizer wraps Crypto-PAn and an LRU cache. It is safe for concurrent use.
type Anonymizer struct {
	r     zerolog.Logger
	cp    *cryptopan.Anonymizer
	cache *lru.Cache[netip.Addr, netip.Addr]
}

// New builds an Anonymizer from the provided configuration. The anonymizer is
// disabled (addresses are returned unchanged) when the configuration says so
// or when no key is available.
func New(r zerolog.Logger, config Configuration) (*Anonymizer, error) {
	a := &Anonymizer{r: r}
	if !config.Enabled {
		r.Info().Msg("anonymization disabled")
		return a, nil
	}

	keyStr := config.Key
	if keyStr == "" {
		keyStr = os.Getenv(KeyEnvironmentVariable)
	}
	if keyStr == "" {
		r.Warn().Str("variable", KeyEnvironmentVariable).Msg("no Crypto-PAn key, anonymization disabled")
		return a, nil
	}

	cp, err := cryptopan.NewAnonymizer(decodeKey(keyStr))
	if err != nil {
		return nil, fmt.Errorf("invalid Crypto-PAn key: %w", err)
	}
	cacheSize := config.Cache
	if cacheSize <= 0 {
		cacheSize = DefaultConfiguration().Cache
	}
	cache, err := lru.New[netip.Addr, netip.Addr](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("cannot create cache: %w", err)
	}

	a.cp = cp
	a.cache = cache
	r.Info().Int("cache", cacheSize).Msg("Crypto-PAn anonymization enabled")
	return a, nil
}

// Enabled tells if addresses are anonymized.
func (a *Anonymizer) Enabled() bool {
	return a.cp != nil
}

// AnonymizeAddr returns the anonymized counterpart of addr, or addr itself
// when anonymization is disabled.
func (a *Anonymizer) AnonymizeAddr(addr netip.Addr) netip.Addr {
	if a.cp == nil || !addr.IsValid() {
		return addr
	}
	if anon, ok := a.cache.Get(addr); ok {
		return anon
	}
	anon := a.cp.Anonymize(addr)
	a.cache.Add(addr, anon)
	return anon
}

// AnonymizeFlowFields takes a textual address and returns the anonymized
// textual value. Values which are not addresses are returned unchanged.
func (a *Anonymizer) AnonymizeFlowFields(addr string) string {
	if a.cp == nil {
		return addr
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		a.r.Debug().Err(err).Str("value", addr).Msg("not an IP address, left as is")
		return addr
	}
	return a.AnonymizeAddr(ip).String()
}
