package events_test

import (
	"testing"

	"github.com/ledgermesh/ledgermesh/foundation/events"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to fan events out to subscribers.")
	{
		t.Log("\tTest 0:\tWhen two subscribers are registered.")
		{
			evts := events.New()

			ch1 := evts.Acquire("sub1")
			ch2 := evts.Acquire("sub2")

			evts.Send("block mined")

			if msg := <-ch1; msg != "block mined" {
				t.Fatalf("\t%s\tTest 0:\tShould deliver to the first subscriber, got %q.", failed, msg)
			}
			if msg := <-ch2; msg != "block mined" {
				t.Fatalf("\t%s\tTest 0:\tShould deliver to the second subscriber, got %q.", failed, msg)
			}
			t.Logf("\t%s\tTest 0:\tShould deliver to every subscriber.", success)
		}

		t.Log("\tTest 1:\tWhen a subscriber is released.")
		{
			evts := events.New()
			ch := evts.Acquire("sub1")

			if err := evts.Release("sub1"); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to release the subscriber: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to release the subscriber.", success)

			if _, open := <-ch; open {
				t.Fatalf("\t%s\tTest 1:\tShould close the subscriber's channel.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould close the subscriber's channel.", success)

			if err := evts.Release("sub1"); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould report a double release.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould report a double release.", success)
		}

		t.Log("\tTest 2:\tWhen a subscriber stops draining.")
		{
			evts := events.New()
			evts.Acquire("slow")

			// Overrun the buffer, Send must never block.
			for i := 0; i < 500; i++ {
				evts.Send("event")
			}
			t.Logf("\t%s\tTest 2:\tShould drop messages rather than block.", success)
		}
	}
}
