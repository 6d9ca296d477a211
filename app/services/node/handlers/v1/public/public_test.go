package public_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	v1 "github.com/ledgermesh/ledgermesh/app/services/node/handlers/v1"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/genesis"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/gossip"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/peer"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/state"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/storage/memory"
	"github.com/ledgermesh/ledgermesh/foundation/events"
	"github.com/ledgermesh/ledgermesh/foundation/web"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

// fakeChannel satisfies the peer channel without a network.
type fakeChannel struct{}

func (fakeChannel) Send(pr peer.Peer, msg gossip.Message) error { return nil }
func (fakeChannel) Broadcast(msg gossip.Message)                {}
func (fakeChannel) Dial(host string) error                      { return nil }
func (fakeChannel) Peers() []peer.Peer                          { return nil }
func (fakeChannel) Host() string                                { return "test:9080" }

// fakeWorker records the mining signals the handlers raise.
type fakeWorker struct {
	started []string
}

func (f *fakeWorker) Shutdown()                        {}
func (f *fakeWorker) SignalStartMining(b string)       { f.started = append(f.started, b) }
func (f *fakeWorker) SignalCancelMining() (done func()) { return func() {} }
func (f *fakeWorker) SignalShareTx(tx ledger.Tx)       {}

// =============================================================================

func newTestMux(t *testing.T) (http.Handler, *fakeWorker) {
	t.Helper()

	st, err := state.New(state.Config{
		Beneficiary: "miner",
		Genesis:     genesis.Default(),
		Archive:     memory.New(),
		Channel:     fakeChannel{},
		KnownPeers:  peer.NewSet(),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	worker := fakeWorker{}
	st.Worker = &worker

	app := web.NewApp(make(chan os.Signal, 1))
	v1.PublicRoutes(app, v1.Config{
		Log:   zap.NewNop().Sugar(),
		State: st,
		Evts:  events.New(),
	})

	return app, &worker
}

func Test_SignalMining(t *testing.T) {
	t.Log("Given the need to trigger mining through the API.")
	{
		t.Log("\tTest 0:\tWhen an account is supplied in the route.")
		{
			mux, worker := newTestMux(t)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/v1/mine/carol", nil)
			mux.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould get status 200, got %d.", failed, w.Code)
			}
			t.Logf("\t%s\tTest 0:\tShould get status 200.", success)

			if len(worker.started) != 1 || worker.started[0] != "carol" {
				t.Fatalf("\t%s\tTest 0:\tShould signal mining for carol, got %v.", failed, worker.started)
			}
			t.Logf("\t%s\tTest 0:\tShould signal mining for the supplied account.", success)
		}

		t.Log("\tTest 1:\tWhen no account is supplied.")
		{
			mux, worker := newTestMux(t)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/v1/mine", nil)
			mux.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 1:\tShould get status 200, got %d.", failed, w.Code)
			}
			t.Logf("\t%s\tTest 1:\tShould get status 200.", success)

			if len(worker.started) != 1 || worker.started[0] != "miner" {
				t.Fatalf("\t%s\tTest 1:\tShould fall back to the configured beneficiary, got %v.", failed, worker.started)
			}
			t.Logf("\t%s\tTest 1:\tShould fall back to the configured beneficiary.", success)
		}

		t.Log("\tTest 2:\tWhen the mempool is empty.")
		{
			// The reward transaction alone makes a valid block, an empty
			// pool must not refuse the request.
			mux, worker := newTestMux(t)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/v1/mine", nil)
			mux.ServeHTTP(w, r)

			if w.Code != http.StatusOK || len(worker.started) != 1 {
				t.Fatalf("\t%s\tTest 2:\tShould still signal mining, status %d signals %v.", failed, w.Code, worker.started)
			}
			t.Logf("\t%s\tTest 2:\tShould still signal mining.", success)
		}
	}
}
