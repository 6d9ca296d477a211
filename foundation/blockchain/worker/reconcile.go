package worker

// reconcileOperations runs the periodic reconciliation round: re-dial
// any known peer that dropped off and ask the network for longer
// chains. Gossip is best effort, this ticker is what guarantees
// convergence after missed messages or partitions heal.
func (w *Worker) reconcileOperations() {
	w.evHandler("worker: reconcileOperations: G started")
	defer w.evHandler("worker: reconcileOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runReconcileOperation()
			}
		case <-w.shut:
			w.evHandler("worker: reconcileOperations: received shut signal")
			return
		}
	}
}

// runReconcileOperation performs one reconciliation round.
func (w *Worker) runReconcileOperation() {
	w.evHandler("worker: runReconcileOperation: started")
	defer w.evHandler("worker: runReconcileOperation: completed")

	connected := make(map[string]bool)
	for _, pr := range w.state.RetrieveConnectedPeers() {
		connected[pr.Host] = true
	}

	for _, pr := range w.state.RetrieveKnownPeers() {
		if connected[pr.Host] {
			continue
		}
		if err := w.state.ConnectPeer(pr.Host); err != nil {
			w.evHandler("worker: runReconcileOperation: redial %s: %s", pr, err)
		}
	}

	w.state.AnnounceChainRequest()
}
