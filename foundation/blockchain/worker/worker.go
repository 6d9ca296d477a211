// Package worker implements the background processing for the node:
// mining, consuming gossip traffic, transaction sharing and the periodic
// reconciliation round.
package worker

import (
	"sync"
	"time"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/gossip"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/state"
)

// maxTxShareRequests represents the maximum number of pending share
// transaction signals allowed before they are dropped.
const maxTxShareRequests = 100

// Worker manages the goroutines the node runs alongside the API.
type Worker struct {
	state     *state.State
	events    <-chan gossip.Event
	wg        sync.WaitGroup
	ticker    *time.Ticker
	shut      chan struct{}
	start     chan string
	cancel    chan chan struct{}
	txSharing chan ledger.Tx
	evHandler state.EventHandler
}

// Run creates a worker, registers it with the state package and starts
// all the background goroutines.
func Run(st *state.State, events <-chan gossip.Event, reconcileInterval time.Duration, ev state.EventHandler) {
	w := Worker{
		state:     st,
		events:    events,
		ticker:    time.NewTicker(reconcileInterval),
		shut:      make(chan struct{}),
		start:     make(chan string, 1),
		cancel:    make(chan chan struct{}, 1),
		txSharing: make(chan ledger.Tx, maxTxShareRequests),
		evHandler: ev,
	}

	st.Worker = &w

	// Reach out to the peers we were configured with before any
	// background processing starts.
	w.dialKnownPeers()

	operations := []func(){
		w.gossipOperations,
		w.miningOperations,
		w.shareTxOperations,
		w.reconcileOperations,
	}

	g := len(operations)
	w.wg.Add(g)

	hasStarted := make(chan bool)

	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.ticker.Stop()
	done := w.SignalCancelMining()
	done()

	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation for the specified
// beneficiary. If a signal is already pending the request is dropped, a
// mining operation is going to start regardless.
func (w *Worker) SignalStartMining(beneficiary string) {
	select {
	case w.start <- beneficiary:
		w.evHandler("worker: SignalStartMining: mining signaled for %q", beneficiary)
	default:
	}
}

// SignalCancelMining signals the goroutine executing runMiningOperation
// to stop. The mining goroutine won't start another attempt until the
// returned done function is called, which lets the caller finish its
// own state changes first.
func (w *Worker) SignalCancelMining() (done func()) {
	wait := make(chan struct{})

	select {
	case w.cancel <- wait:
	default:
		// No mining operation is listening, nothing waits on this.
	}

	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")

	return func() { close(wait) }
}

// SignalShareTx queues a transaction to be shared with the peers. When
// the queue is full the transaction simply isn't shared, peers pick it
// up when it lands in a block.
func (w *Worker) SignalShareTx(tx ledger.Tx) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share tx signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, tx won't be shared")
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

// dialKnownPeers connects outward to every peer the node was configured
// with. Failures are logged and retried on the reconciliation ticker.
func (w *Worker) dialKnownPeers() {
	for _, pr := range w.state.RetrieveKnownPeers() {
		if err := w.state.ConnectPeer(pr.Host); err != nil {
			w.evHandler("worker: dialKnownPeers: %s: ERROR: %s", pr, err)
		}
	}
}
