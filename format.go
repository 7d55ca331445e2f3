package cryptopan

import (
	"fmt"
	"net"
	"net/netip"
)

// AnonymizeString parses a textual address, anonymizes it and formats the
// result. Parse errors are returned wrapped.
func (a *Anonymizer) AnonymizeString(s string) (string, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", fmt.Errorf("failed to anonymize: %w", err)
	}
	return a.Anonymize(addr).String(), nil
}

// DeanonymizeString is the textual counterpart of Deanonymize.
func (a *Anonymizer) DeanonymizeString(s string) (string, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", fmt.Errorf("failed to deanonymize: %w", err)
	}
	return a.Deanonymize(addr).String(), nil
}

// AnonymizeIP is a net.IP variant of Anonymize. Following net.IP
// conventions, any address with a 4-byte form (including IPv4-mapped IPv6)
// is treated as IPv4 and returned as 4 bytes. A nil or malformed ip is
// returned as is.
func (a *Anonymizer) AnonymizeIP(ip net.IP) net.IP {
	addr, ok := ipToAddr(ip)
	if !ok {
		return ip
	}
	return net.IP(a.Anonymize(addr).AsSlice())
}

// DeanonymizeIP is a net.IP variant of Deanonymize.
func (a *Anonymizer) DeanonymizeIP(ip net.IP) net.IP {
	addr, ok := ipToAddr(ip)
	if !ok {
		return ip
	}
	return net.IP(a.Deanonymize(addr).AsSlice())
}

func ipToAddr(ip net.IP) (netip.Addr, bool) {
	if ip4 := ip.To4(); ip4 != nil {
		return netip.AddrFrom4([4]byte(ip4)), true
	}
	if len(ip) != net.IPv6len {
		return netip.Addr{}, false
	}
	return netip.AddrFrom16([16]byte(ip)), true
}
