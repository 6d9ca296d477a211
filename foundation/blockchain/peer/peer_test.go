package peer_test

import (
	"testing"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/peer"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_PeerSet(t *testing.T) {
	t.Log("Given the need to manage the set of known peers.")
	{
		t.Log("\tTest 0:\tWhen adding peers.")
		{
			ps := peer.NewSet()

			if !ps.Add(peer.New("host1:9080")) {
				t.Fatalf("\t%s\tTest 0:\tShould report a new peer as added.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report a new peer as added.", success)

			if ps.Add(peer.New("host1:9080")) {
				t.Fatalf("\t%s\tTest 0:\tShould report a duplicate as not added.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report a duplicate as not added.", success)
		}

		t.Log("\tTest 1:\tWhen copying the set.")
		{
			ps := peer.NewSet()
			ps.Add(peer.New("host1:9080"))
			ps.Add(peer.New("host2:9080"))
			ps.Add(peer.New("host3:9080"))

			peers := ps.Copy("host2:9080")
			if len(peers) != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould exclude the specified host, got %d peers.", failed, len(peers))
			}
			for _, pr := range peers {
				if pr.Match("host2:9080") {
					t.Fatalf("\t%s\tTest 1:\tShould not contain the excluded host.", failed)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould exclude the specified host.", success)
		}

		t.Log("\tTest 2:\tWhen removing a peer.")
		{
			ps := peer.NewSet()
			ps.Add(peer.New("host1:9080"))
			ps.Add(peer.New("host2:9080"))

			ps.Remove(peer.New("host1:9080"))

			peers := ps.Copy("")
			if len(peers) != 1 || !peers[0].Match("host2:9080") {
				t.Fatalf("\t%s\tTest 2:\tShould only contain the remaining peer.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould only contain the remaining peer.", success)
		}
	}
}
