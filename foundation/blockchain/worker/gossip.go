package worker

import (
	"errors"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/chain"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/gossip"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/peer"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/state"
)

// gossipOperations consumes the network event stream and drives the
// sync engine with it.
func (w *Worker) gossipOperations() {
	w.evHandler("worker: gossipOperations: G started")
	defer w.evHandler("worker: gossipOperations: G completed")

	for {
		select {
		case evt := <-w.events:
			if w.isShutdown() {
				return
			}
			w.processEvent(evt)

		case <-w.shut:
			w.evHandler("worker: gossipOperations: received shut signal")
			return
		}
	}
}

func (w *Worker) processEvent(evt gossip.Event) {
	switch evt.Kind {
	case gossip.PeerConnected:
		w.evHandler("worker: processEvent: peer connected: %s", evt.Peer)
		w.state.AddKnownPeer(evt.Peer)

		// A fresh connection is the best moment to reconcile: if the
		// peer has a longer chain we want it now, not next round.
		w.state.RequestPeerChain(evt.Peer)

	case gossip.PeerDisconnected:
		w.evHandler("worker: processEvent: peer disconnected: %s", evt.Peer)

	case gossip.MessageReceived:
		w.processMessage(evt.Peer, evt.Msg)
	}
}

// processMessage dispatches one gossip message. Rejections here are
// routine network behavior, they are logged and never fatal.
func (w *Worker) processMessage(pr peer.Peer, msg gossip.Message) {
	switch msg.Type {
	case gossip.TypeNewBlock:
		if msg.Block == nil {
			return
		}

		err := w.state.ProcessPeerBlock(*msg.Block)
		switch {
		case err == nil:
			// Integrated: flood it onward, once, under its original ID.
			w.state.Rebroadcast(msg)

		case errors.Is(err, state.ErrKnownBlock):
			// Duplicate delivery, nothing to do.

		default:
			// The block doesn't extend our chain, so the peer is ahead
			// of us or on a fork. Ask for everything it has and let the
			// longest valid chain rule sort it out.
			w.evHandler("worker: processMessage: block from %s rejected: %s", pr, err)
			w.state.RequestPeerChain(pr)
		}

	case gossip.TypeNewTran:
		if msg.Tran == nil {
			return
		}

		added, err := w.state.UpsertPeerTransaction(*msg.Tran)
		if err != nil {
			w.evHandler("worker: processMessage: tx from %s rejected: %s", pr, err)
			return
		}
		if added {
			w.state.Rebroadcast(msg)
		}

	case gossip.TypeChainRequest:
		w.state.SendChainTo(pr)

	case gossip.TypeChainResponse:
		err := w.state.ProcessPeerChain(msg.Blocks)
		switch {
		case err == nil:
			w.evHandler("worker: processMessage: adopted chain of %d blocks from %s", len(msg.Blocks), pr)
			w.state.Rebroadcast(msg)

			// The tip moved, restart mining on it if there is work.
			if w.state.QueryMempoolLength() > 0 {
				w.SignalStartMining(w.state.RetrieveBeneficiary())
			}

		case errors.Is(err, chain.ErrRejectedChain):
			// Not longer or not valid, we keep our own chain.
			w.evHandler("worker: processMessage: chain from %s rejected: %s", pr, err)

		default:
			w.evHandler("worker: processMessage: chain from %s: ERROR: %s", pr, err)
		}
	}
}
