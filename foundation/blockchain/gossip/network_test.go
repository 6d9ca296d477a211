package gossip_test

import (
	"net"
	"testing"
	"time"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/gossip"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/peer"
)

func noEv(v string, args ...any) {}

// openAddr reserves a loopback address for a test network to listen on.
func openAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to reserve an address: %v", failed, err)
	}

	addr := l.Addr().String()
	l.Close()

	return addr
}

// nextEvent waits for the next event of the specified kind, skipping
// any others.
func nextEvent(t *testing.T, events <-chan gossip.Event, kind gossip.Kind, timeout time.Duration) gossip.Event {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case evt := <-events:
			if evt.Kind == kind {
				return evt
			}
		case <-deadline:
			t.Fatalf("\t%s\tShould receive the expected network event.", failed)
		}
	}
}

// =============================================================================

func Test_Network(t *testing.T) {
	t.Log("Given the need to carry gossip between two live nodes.")
	{
		t.Log("\tTest 0:\tWhen one node dials another.")
		{
			addr1 := openAddr(t)
			addr2 := openAddr(t)

			n1 := gossip.New(addr1, noEv)
			if err := n1.Listen(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to listen on node 1: %v", failed, err)
			}
			defer n1.Shutdown()

			n2 := gossip.New(addr2, noEv)
			if err := n2.Listen(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to listen on node 2: %v", failed, err)
			}
			defer n2.Shutdown()

			if err := n2.Dial(addr1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to dial node 1: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to dial node 1.", success)

			// The handshake carries the dialer's advertised host, so
			// node 1 must know the peer by that address, not by the
			// ephemeral socket address.
			evt := nextEvent(t, n1.Events(), gossip.PeerConnected, 2*time.Second)
			if !evt.Peer.Match(addr2) {
				t.Fatalf("\t%s\tTest 0:\tShould know the peer by its advertised host, got %s.", failed, evt.Peer)
			}
			t.Logf("\t%s\tTest 0:\tShould know the peer by its advertised host.", success)

			// Deliver the same message ID twice. The seen set on node 1
			// must surface it exactly once.
			msg := gossip.NewBlockMsg(ledger.Block{Number: 1, Hash: "0xa"})

			if err := n2.Send(peer.New(addr1), msg); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to send the message: %v", failed, err)
			}
			if err := n2.Send(peer.New(addr1), msg); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to send the duplicate: %v", failed, err)
			}

			evt = nextEvent(t, n1.Events(), gossip.MessageReceived, 2*time.Second)
			if evt.Msg.ID != msg.ID || evt.Msg.Type != gossip.TypeNewBlock {
				t.Fatalf("\t%s\tTest 0:\tShould surface the first delivery, got %q %q.", failed, evt.Msg.ID, evt.Msg.Type)
			}
			t.Logf("\t%s\tTest 0:\tShould surface the first delivery.", success)

			select {
			case evt := <-n1.Events():
				if evt.Kind == gossip.MessageReceived {
					t.Fatalf("\t%s\tTest 0:\tShould suppress the duplicate delivery.", failed)
				}
			case <-time.After(500 * time.Millisecond):
			}
			t.Logf("\t%s\tTest 0:\tShould suppress the duplicate delivery.", success)
		}

		t.Log("\tTest 1:\tWhen a node's own broadcast is echoed back.")
		{
			addr1 := openAddr(t)
			addr2 := openAddr(t)

			n1 := gossip.New(addr1, noEv)
			if err := n1.Listen(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to listen on node 1: %v", failed, err)
			}
			defer n1.Shutdown()

			n2 := gossip.New(addr2, noEv)
			if err := n2.Listen(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to listen on node 2: %v", failed, err)
			}
			defer n2.Shutdown()

			if err := n2.Dial(addr1); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to dial node 1: %v", failed, err)
			}
			nextEvent(t, n2.Events(), gossip.PeerConnected, 2*time.Second)

			// Node 2 floods a message, node 1 forwards it straight back.
			// Node 2 marked the ID seen on broadcast, so the echo must
			// never reach its consumer.
			msg := gossip.NewBlockMsg(ledger.Block{Number: 1, Hash: "0xb"})
			n2.Broadcast(msg)

			evt := nextEvent(t, n1.Events(), gossip.MessageReceived, 2*time.Second)
			n1.Send(evt.Peer, evt.Msg)

			select {
			case evt := <-n2.Events():
				if evt.Kind == gossip.MessageReceived {
					t.Fatalf("\t%s\tTest 1:\tShould suppress the echo of its own broadcast.", failed)
				}
			case <-time.After(500 * time.Millisecond):
			}
			t.Logf("\t%s\tTest 1:\tShould suppress the echo of its own broadcast.", success)
		}
	}
}
