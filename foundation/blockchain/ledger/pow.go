package ledger

import (
	"context"
)

// zeroTarget is sliced by difficulty to produce the prefix a solved hash
// must carry. The 0x prefix is part of the encoded hash. It spans the
// full digest width so every difficulty up to 64 has a defined target.
const zeroTarget = "0x0000000000000000000000000000000000000000000000000000000000000000"

// POW performs the proof of work search for the specified candidate
// block. The search starts at nonce zero and increments, so for a fixed
// candidate and difficulty the discovered nonce is the smallest one that
// solves the puzzle. That keeps independent re-mining attempts
// reproducible. The context cancels the search, which is the expected
// outcome when another node wins the race.
func POW(ctx context.Context, b Block, difficulty uint16, ev func(v string, args ...any)) (Block, error) {
	b.Nonce = 0

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("ledger: POW: MINING: attempts[%d]", attempts)
		}

		if ctx.Err() != nil {
			ev("ledger: POW: MINING: CANCELLED")
			return Block{}, ctx.Err()
		}

		b.Hash = b.CalculateHash()
		if IsHashSolved(difficulty, b.Hash) {
			ev("ledger: POW: MINING: SOLVED: block[%d] nonce[%d] attempts[%d]", b.Number, b.Nonce, attempts)
			return b, nil
		}

		b.Nonce++
	}
}

// IsHashSolved checks the hash complies with the POW rules. The hash must
// lead with difficulty number of zero hex characters.
func IsHashSolved(difficulty uint16, hash string) bool {
	if len(hash) != 66 {
		return false
	}

	n := int(difficulty) + 2
	if n > len(zeroTarget) {
		return false
	}

	return hash[:n] == zeroTarget[:n]
}
