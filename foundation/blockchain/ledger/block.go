package ledger

import (
	"time"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/signature"
)

// Block represents a group of transactions linked to the previous block
// in the chain by hash. The Hash field is derived from every other field
// and is never trusted without recomputation.
type Block struct {
	Number        uint64 `json:"number"`
	TimeStamp     uint64 `json:"timestamp"`
	Trans         []Tx   `json:"trans"`
	PrevBlockHash string `json:"prev_block_hash"`
	Nonce         uint64 `json:"nonce"`
	Hash          string `json:"hash"`
}

// New constructs a candidate block on top of the specified previous
// block. The candidate is not part of any chain until it has been mined
// and accepted.
func New(prev Block, trans []Tx) Block {
	b := Block{
		Number:        prev.Number + 1,
		TimeStamp:     uint64(time.Now().UTC().Unix()),
		Trans:         trans,
		PrevBlockHash: prev.Hash,
		Nonce:         0,
	}
	b.Hash = b.CalculateHash()

	return b
}

// CalculateHash computes the digest over every field of the block except
// the hash itself. Callers compare the result against the Hash field to
// detect tampering.
func (b Block) CalculateHash() string {
	data := struct {
		Number        uint64 `json:"number"`
		TimeStamp     uint64 `json:"timestamp"`
		Trans         []Tx   `json:"trans"`
		PrevBlockHash string `json:"prev_block_hash"`
		Nonce         uint64 `json:"nonce"`
	}{
		Number:        b.Number,
		TimeStamp:     b.TimeStamp,
		Trans:         b.Trans,
		PrevBlockHash: b.PrevBlockHash,
		Nonce:         b.Nonce,
	}

	return signature.Hash(data)
}
