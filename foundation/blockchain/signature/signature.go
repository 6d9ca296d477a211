// Package signature provides the hashing support used to fingerprint
// blocks and transactions. The ledger does not sign transactions, so the
// only cryptographic primitive needed here is a digest over a canonical
// encoding of a value.
package signature

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros. It is the well-known parent
// hash of the genesis block.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Hash returns a unique string for the value. The value is marshaled to
// JSON first so the digest is taken over a canonical encoding that any
// node can reproduce.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}
