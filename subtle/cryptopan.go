package subtle

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"strconv"

	"lukechampine.com/uint128"
)

const (
	// KeySize is the length of a Crypto-PAn key: an AES-128 key followed by
	// the padding seed.
	KeySize = 32

	// IPv4Bits is the width of an IPv4 address.
	IPv4Bits = 32
	// IPv6Bits is the width of an IPv6 address.
	IPv6Bits = 128
)

// KeyLengthError is returned when a key is not exactly KeySize bytes long.
// Its value is the rejected length.
type KeyLengthError int

func (k KeyLengthError) Error() string {
	return "cryptopan: invalid key length " + strconv.Itoa(int(k)) + " (must be " + strconv.Itoa(KeySize) + " bytes)"
}

// KeyedContext holds everything derived from a key: the AES cipher, the
// encrypted pad and the mask table. It is immutable once built.
//
// Thread safety: all methods are safe for concurrent use by multiple
// goroutines, the context is never modified after NewKeyedContext returns.
type KeyedContext struct {
	block cipher.Block
	pad   uint128.Uint128
	masks [128]maskEntry
}

// NewKeyedContext derives a KeyedContext from a 32-byte key. The first 16
// bytes are the AES-128 key, the last 16 bytes are encrypted to produce the
// pad.
func NewKeyedContext(key []byte) (*KeyedContext, error) {
	if len(key) != KeySize {
		return nil, KeyLengthError(len(key))
	}
	block, err := aes.NewCipher(key[:16])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	var pad [aes.BlockSize]byte
	block.Encrypt(pad[:], key[16:KeySize])
	padInt := uint128.FromBytesBE(pad[:])

	return &KeyedContext{
		block: block,
		pad:   padInt,
		masks: buildMaskTable(padInt),
	}, nil
}

// Calc returns the pseudorandom bit for a candidate: the most significant
// bit of the first byte of AES(candidate).
func (c *KeyedContext) Calc(candidate uint128.Uint128) uint8 {
	var in, out [aes.BlockSize]byte
	candidate.PutBytesBE(in[:])
	c.block.Encrypt(out[:], in[:])
	return out[0] >> 7
}

// Anonymize applies Crypto-PAn to an address value of the given width (32 or
// 128 bits). An IPv4 value is held in the low 32 bits. The result has the
// same width.
//
// Anonymize panics if bits is neither IPv4Bits nor IPv6Bits.
func (c *KeyedContext) Anonymize(value uint128.Uint128, bits int) uint128.Uint128 {
	checkWidth(bits)
	aligned := value.Lsh(uint(IPv6Bits - bits))

	var acc uint128.Uint128
	for i := 0; i < bits; i++ {
		bit := c.Calc(c.masks[i].candidate(aligned))
		acc = acc.Lsh(1).Or(uint128.From64(uint64(bit)))
	}
	return acc.Xor(value)
}

// Deanonymize reverses Anonymize for the same key and width. Original bits
// are recovered most significant first, each one feeding the candidate used
// for the next.
//
// Deanonymize panics if bits is neither IPv4Bits nor IPv6Bits.
func (c *KeyedContext) Deanonymize(value uint128.Uint128, bits int) uint128.Uint128 {
	checkWidth(bits)
	shift := uint(IPv6Bits - bits)
	aligned := value.Lsh(shift)

	var orig uint128.Uint128
	for i := 0; i < bits; i++ {
		bit := uint128.From64(1).Lsh(uint(IPv6Bits - 1 - i))
		flip := c.Calc(c.masks[i].candidate(orig)) == 1
		set := !aligned.And(bit).IsZero()
		if set != flip {
			orig = orig.Or(bit)
		}
	}
	return orig.Rsh(shift)
}

func checkWidth(bits int) {
	if bits != IPv4Bits && bits != IPv6Bits {
		panic(fmt.Sprintf("cryptopan: unsupported address width %d", bits))
	}
}
