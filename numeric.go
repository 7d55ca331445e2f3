package cryptopan

import (
	"encoding/binary"
	"net/netip"

	"github.com/vdparikh/cryptopan/subtle"
	"lukechampine.com/uint128"
)

// addrToUint128 returns the numeric value of addr at its native width and
// that width. IPv4 values occupy the low 32 bits.
func addrToUint128(addr netip.Addr) (uint128.Uint128, int) {
	if addr.Is4() {
		b := addr.As4()
		return uint128.From64(uint64(binary.BigEndian.Uint32(b[:]))), subtle.IPv4Bits
	}
	b := addr.As16()
	return uint128.FromBytesBE(b[:]), subtle.IPv6Bits
}

// uint128ToAddr is the inverse of addrToUint128. The zone only applies to
// IPv6.
func uint128ToAddr(v uint128.Uint128, bits int, zone string) netip.Addr {
	if bits == subtle.IPv4Bits {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(v.Lo))
		return netip.AddrFrom4(b)
	}
	var b [16]byte
	v.PutBytesBE(b[:])
	return netip.AddrFrom16(b).WithZone(zone)
}
