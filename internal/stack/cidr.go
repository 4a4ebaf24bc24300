package stack

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// nextBlock returns the /bits block starting at or after cursor, aligned up
// to the block size, and the offset just past it. The block must lie inside
// parent.
func nextBlock(parent netip.Prefix, cursor uint64, bits int) (netip.Prefix, uint64, error) {
	if !parent.Addr().Is4() {
		return netip.Prefix{}, 0, fmt.Errorf("only IPv4 ranges are supported, got %s", parent)
	}
	if bits < parent.Bits() || bits > 32 {
		return netip.Prefix{}, 0, fmt.Errorf("/%d does not fit inside %s", bits, parent)
	}

	size := uint64(1) << (32 - bits)
	start := (cursor + size - 1) / size * size
	end := start + size

	parentEnd := ipToUint(parent.Masked().Addr()) + uint64(1)<<(32-parent.Bits())
	if end > parentEnd {
		return netip.Prefix{}, 0, fmt.Errorf("address space of %s exhausted", parent)
	}

	return netip.PrefixFrom(uintToIP(start), bits), end, nil
}

func ipToUint(a netip.Addr) uint64 {
	b := a.As4()
	return uint64(binary.BigEndian.Uint32(b[:]))
}

func uintToIP(v uint64) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v)) // #nosec G115 -- callers keep v below 2^32
	return netip.AddrFrom4(b)
}
