// Package gossip implements the peer channel the sync engine runs over.
// Each connected peer is a websocket carrying JSON encoded messages. The
// transport delivers at least once with no ordering guarantee across
// peers, the consumer has to tolerate duplicates, and a slow peer never
// stalls the rest of the node: writes are queued per connection and
// dropped when a queue fills.
package gossip

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/peer"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// handshakeTimeout bounds how long a new connection may take to identify
// itself before it is dropped.
const handshakeTimeout = 5 * time.Second

// sendQueueSize is the per peer write queue depth. Messages to a peer
// that can't drain this queue are dropped.
const sendQueueSize = 256

// eventQueueSize buffers events for the consumer. The periodic
// reconciliation round recovers anything dropped under pressure.
const eventQueueSize = 1024

// =============================================================================

// Kind identifies the type of event coming off the network.
type Kind int

// The events a network produces for its consumer.
const (
	PeerConnected Kind = iota + 1
	PeerDisconnected
	MessageReceived
)

// Event represents something that happened on the network: a peer came
// or went, or a message arrived.
type Event struct {
	Kind Kind
	Peer peer.Peer
	Msg  Message
}

// EventHandler defines a function that is called to log events in the
// processing of network traffic.
type EventHandler func(v string, args ...any)

// =============================================================================

// Network maintains the websocket connections to every known peer and
// turns their traffic into a single event stream. Message IDs already
// seen are suppressed here so flood propagation can't loop forever on a
// stable topology.
type Network struct {
	host      string
	evHandler EventHandler
	upgrader  websocket.Upgrader

	listener net.Listener
	server   *http.Server

	events chan Event
	seen   mapset.Set

	mu    sync.RWMutex
	conns map[peer.Peer]*conn

	wg sync.WaitGroup
}

// New constructs a network that advertises itself under the specified
// host address.
func New(host string, ev EventHandler) *Network {
	n := Network{
		host:      host,
		evHandler: ev,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		events: make(chan Event, eventQueueSize),
		seen:   mapset.NewSet(),
		conns:  make(map[peer.Peer]*conn),
	}

	return &n
}

// Host returns the advertised address of this node.
func (n *Network) Host() string {
	return n.host
}

// Events returns the stream of network events for the consumer.
func (n *Network) Events() <-chan Event {
	return n.events
}

// Listen starts accepting inbound peer connections on the host address.
func (n *Network) Listen() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/gossip", n.accept)

	listener, err := net.Listen("tcp", n.host)
	if err != nil {
		return fmt.Errorf("gossip listen on %s: %w", n.host, err)
	}

	n.listener = listener
	n.server = &http.Server{Handler: mux}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.server.Serve(listener)
	}()

	n.evHandler("gossip: listen: accepting peers on %s", n.host)

	return nil
}

// Dial connects outward to a peer at the specified host. The connection
// is registered under that host once the handshake completes.
func (n *Network) Dial(host string) error {
	if host == n.host {
		return errors.New("refusing to dial self")
	}

	pr := peer.New(host)

	n.mu.RLock()
	_, connected := n.conns[pr]
	n.mu.RUnlock()
	if connected {
		return nil
	}

	url := fmt.Sprintf("ws://%s/v1/gossip", host)
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("dial peer %s: %w", host, err)
	}

	if err := writeMessage(ws, handshakeMsg(n.host)); err != nil {
		ws.Close()
		return fmt.Errorf("handshake with peer %s: %w", host, err)
	}

	ws.SetReadDeadline(time.Now().Add(handshakeTimeout))
	reply, err := readMessage(ws)
	if err != nil || reply.Type != TypeHandshake {
		ws.Close()
		return fmt.Errorf("peer %s did not complete handshake", host)
	}
	ws.SetReadDeadline(time.Time{})

	n.register(pr, ws)

	return nil
}

// Send delivers a message to one specific peer. An unknown or
// backlogged peer is an error the caller logs and moves on from, local
// state is never affected by a failed send.
func (n *Network) Send(pr peer.Peer, msg Message) error {
	n.seen.Add(msg.ID)

	n.mu.RLock()
	c, exists := n.conns[pr]
	n.mu.RUnlock()

	if !exists {
		return fmt.Errorf("peer %s is not connected", pr)
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return fmt.Errorf("peer %s send queue is full", pr)
	}
}

// Broadcast delivers a message to every connected peer, dropping it for
// any peer whose queue is full. The message ID is marked seen so the
// inevitable echoes from peers are suppressed.
func (n *Network) Broadcast(msg Message) {
	n.seen.Add(msg.ID)

	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, c := range n.conns {
		select {
		case c.send <- msg:
		default:
			n.evHandler("gossip: broadcast: peer %s queue full, dropping %s", c.peer, msg.Type)
		}
	}
}

// Peers returns the currently connected peers.
func (n *Network) Peers() []peer.Peer {
	n.mu.RLock()
	defer n.mu.RUnlock()

	peers := make([]peer.Peer, 0, len(n.conns))
	for pr := range n.conns {
		peers = append(peers, pr)
	}

	return peers
}

// Shutdown closes the listener and every peer connection and waits for
// the connection goroutines to drain.
func (n *Network) Shutdown() {
	n.evHandler("gossip: shutdown: started")
	defer n.evHandler("gossip: shutdown: completed")

	if n.server != nil {
		n.server.Close()
	}

	n.mu.Lock()
	for pr, c := range n.conns {
		delete(n.conns, pr)
		c.close()
	}
	n.mu.Unlock()

	n.wg.Wait()
}

// =============================================================================

// accept runs the server side of the handshake: the dialer identifies
// itself with its advertised host in the first frame, we reply in kind.
func (n *Network) accept(w http.ResponseWriter, r *http.Request) {
	ws, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		n.evHandler("gossip: accept: upgrade: ERROR: %s", err)
		return
	}

	ws.SetReadDeadline(time.Now().Add(handshakeTimeout))
	msg, err := readMessage(ws)
	if err != nil || msg.Type != TypeHandshake || msg.Host == "" {
		n.evHandler("gossip: accept: peer at %s did not identify itself", r.RemoteAddr)
		ws.Close()
		return
	}
	ws.SetReadDeadline(time.Time{})

	if err := writeMessage(ws, handshakeMsg(n.host)); err != nil {
		n.evHandler("gossip: accept: handshake reply: ERROR: %s", err)
		ws.Close()
		return
	}

	n.register(peer.New(msg.Host), ws)
}

// register installs the connection, replacing any stale connection to
// the same peer, and starts its read and write pumps.
func (n *Network) register(pr peer.Peer, ws *websocket.Conn) {
	c := &conn{
		peer: pr,
		ws:   ws,
		send: make(chan Message, sendQueueSize),
		done: make(chan struct{}),
	}

	n.mu.Lock()
	if old, exists := n.conns[pr]; exists {
		old.close()
	}
	n.conns[pr] = c
	n.mu.Unlock()

	n.wg.Add(2)
	go n.writeLoop(c)
	go n.readLoop(c)

	n.evHandler("gossip: register: peer %s connected", pr)
	n.emit(Event{Kind: PeerConnected, Peer: pr})
}

// drop removes a dead connection and reports the peer as disconnected.
func (n *Network) drop(c *conn) {
	n.mu.Lock()
	registered := n.conns[c.peer] == c
	if registered {
		delete(n.conns, c.peer)
	}
	n.mu.Unlock()

	c.close()

	if registered {
		n.evHandler("gossip: drop: peer %s disconnected", c.peer)
		n.emit(Event{Kind: PeerDisconnected, Peer: c.peer})
	}
}

func (n *Network) readLoop(c *conn) {
	defer n.wg.Done()
	defer n.drop(c)

	for {
		msg, err := readMessage(c.ws)
		if err != nil {
			return
		}

		if msg.Type == TypeHandshake {
			continue
		}

		// Add reports false when the ID is already in the set, which
		// means this is a duplicate or one of our own messages echoed
		// back through the flood.
		if msg.ID != "" && !n.seen.Add(msg.ID) {
			continue
		}

		n.emit(Event{Kind: MessageReceived, Peer: c.peer, Msg: msg})
	}
}

func (n *Network) writeLoop(c *conn) {
	defer n.wg.Done()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.send:
			data, err := json.Marshal(msg)
			if err != nil {
				n.evHandler("gossip: writeLoop: marshal: ERROR: %s", err)
				continue
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				n.drop(c)
				return
			}
		}
	}
}

// emit hands an event to the consumer without ever blocking network
// goroutines on a slow consumer.
func (n *Network) emit(evt Event) {
	select {
	case n.events <- evt:
	default:
		n.evHandler("gossip: emit: event queue full, dropping event")
	}
}

// =============================================================================

// conn holds one peer connection. The websocket is written from exactly
// one goroutine, the write pump, everything else enqueues.
type conn struct {
	peer peer.Peer
	ws   *websocket.Conn
	send chan Message
	once sync.Once
	done chan struct{}
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// =============================================================================

func readMessage(ws *websocket.Conn) (Message, error) {
	_, data, err := ws.ReadMessage()
	if err != nil {
		return Message{}, err
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("malformed message: %w", err)
	}

	return msg, nil
}

func writeMessage(ws *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return ws.WriteMessage(websocket.TextMessage, data)
}
