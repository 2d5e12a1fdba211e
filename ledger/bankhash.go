package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/holiman/uint256"
)

// ComputeBankHash hashes a set of balances deterministically.
// Each record is encoded as: len(address)(8B BE)|address|balance(32B BE).
// Accounts are sorted by address; an empty set hashes to zero.
func ComputeBankHash(balances map[string]*uint256.Int) [32]byte {
	if len(balances) == 0 {
		return [32]byte{}
	}
	h := sha256.New()

	addresses := make([]string, 0, len(balances))
	for addr := range balances {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	buf := make([]byte, 8)
	for _, addr := range addresses {
		binary.BigEndian.PutUint64(buf, uint64(len(addr)))
		h.Write(buf)
		h.Write([]byte(addr))
		bal := balances[addr].Bytes32()
		h.Write(bal[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
