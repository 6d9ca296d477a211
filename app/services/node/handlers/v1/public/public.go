// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	v1 "github.com/ledgermesh/ledgermesh/business/web/v1"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/state"
	"github.com/ledgermesh/ledgermesh/foundation/events"
	"github.com/ledgermesh/ledgermesh/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Accounts returns the current balance for all accounts or a single one.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")

	var balances []balance
	switch account {
	case "":
		for act, bal := range h.State.QueryBalances() {
			balances = append(balances, balance{Account: act, Balance: bal})
		}
		sort.Slice(balances, func(i, j int) bool { return balances[i].Account < balances[j].Account })

	default:
		balances = append(balances, balance{Account: account, Balance: h.State.QueryBalanceOf(account)})
	}

	ab := actBalances{
		LatestBlock: h.State.RetrieveLatestBlock().Hash,
		Uncommitted: h.State.QueryMempoolLength(),
		Balances:    balances,
	}

	return web.Respond(ctx, w, ab, http.StatusOK)
}

// Blocks returns the full chain in block number order.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.QueryBlocks()
	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.QueryMempool()
	return web.Respond(ctx, w, txs, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the mempool and shares it
// with the network.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var newTx submitTx
	if err := web.Decode(r, &newTx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	tx, err := ledger.NewTx(newTx.From, newTx.To, newTx.Value)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("add tran", "traceid", v.TraceID, "from", tx.FromID, "to", tx.ToID, "value", tx.Value)
	if err := h.State.SubmitTransaction(tx); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining signals the node to start a mining operation. The reward
// is credited to the account in the route when one is given, otherwise
// to the node's configured beneficiary. An empty pool still mines, the
// reward transaction alone makes a valid block.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	beneficiary := web.Param(r, "account")
	if beneficiary == "" {
		beneficiary = h.State.RetrieveBeneficiary()
	}

	h.State.Worker.SignalStartMining(beneficiary)

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ValidateChain runs a full validation over the local chain.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Valid  bool   `json:"valid"`
		Height uint64 `json:"height"`
		Error  string `json:"error,omitempty"`
	}{
		Valid:  true,
		Height: h.State.QueryHeight(),
	}

	if err := h.State.ValidateChain(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	status := h.State.RetrieveStatus()
	return web.Respond(ctx, w, status, http.StatusOK)
}

// Peers returns the known and currently connected peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pi := peerInfo{
		Known:     []string{},
		Connected: []string{},
	}
	for _, pr := range h.State.RetrieveKnownPeers() {
		pi.Known = append(pi.Known, pr.Host)
	}
	for _, pr := range h.State.RetrieveConnectedPeers() {
		pi.Connected = append(pi.Connected, pr.Host)
	}
	sort.Strings(pi.Known)
	sort.Strings(pi.Connected)

	return web.Respond(ctx, w, pi, http.StatusOK)
}

// ConnectPeer dials a new peer and adds it to the known peer set.
func (h Handlers) ConnectPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var cp connectPeer
	if err := web.Decode(r, &cp); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("connect peer", "traceid", v.TraceID, "host", cp.Host)
	if err := h.State.ConnectPeer(cp.Host); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "peer connected",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
