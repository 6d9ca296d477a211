package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/chain"
)

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case beneficiary := <-w.start:
			if !w.isShutdown() {
				w.runMiningOperation(beneficiary)
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation performs one complete mining attempt and, on
// success, announces the block to the network.
func (w *Worker) runMiningOperation(beneficiary string) {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// If transactions arrived while this attempt ran, go again.
	defer func() {
		if w.state.QueryMempoolLength() > 0 {
			w.SignalStartMining(beneficiary)
		}
	}()

	// If mining is cancelled by the sync path, this G can't start the
	// next attempt until it is told it can.
	var wait chan struct{}
	defer func() {
		if wait != nil {
			w.evHandler("worker: runMiningOperation: MINING: termination signal: waiting")
			<-wait
			w.evHandler("worker: runMiningOperation: MINING: termination signal: received")
		}
	}()

	// Drain any stale cancel signal before starting.
	select {
	case <-w.cancel:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation early.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case wait = <-w.cancel:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
		case <-w.shut:
			w.evHandler("worker: runMiningOperation: MINING: shutting down")
		case <-ctx.Done():
		}
	}()

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		t := time.Now()
		block, err := w.state.MineNewBlock(ctx, beneficiary)
		w.evHandler("worker: runMiningOperation: MINING: duration[%v]", time.Since(t))

		if err != nil {
			switch {
			case errors.Is(err, chain.ErrInvalidBlock):
				w.evHandler("worker: runMiningOperation: MINING: block went stale, discarded")
			case ctx.Err() != nil:
				w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
			}
			return
		}

		w.state.SendBlockToPeers(block)
	}()

	wg.Wait()
}
