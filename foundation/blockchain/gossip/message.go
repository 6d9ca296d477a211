package gossip

import (
	"github.com/google/uuid"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
)

// MsgType identifies the purpose of a gossip message.
type MsgType string

// The set of messages nodes exchange. Handshake is internal to the
// transport, the rest are consumed by the sync engine.
const (
	TypeHandshake     MsgType = "handshake"
	TypeNewBlock      MsgType = "new_block"
	TypeNewTran       MsgType = "new_tran"
	TypeChainRequest  MsgType = "chain_request"
	TypeChainResponse MsgType = "chain_response"
)

// Message is the envelope for everything sent between peers. The ID is
// carried along on re-broadcast so the seen set on each node suppresses
// gossip loops. Only the field matching the type is populated.
type Message struct {
	ID     string         `json:"id"`
	Type   MsgType        `json:"type"`
	Host   string         `json:"host,omitempty"`
	Block  *ledger.Block  `json:"block,omitempty"`
	Tran   *ledger.Tx     `json:"tran,omitempty"`
	Blocks []ledger.Block `json:"blocks,omitempty"`
}

// NewBlockMsg constructs a message announcing a freshly integrated block.
func NewBlockMsg(block ledger.Block) Message {
	return Message{
		ID:    uuid.NewString(),
		Type:  TypeNewBlock,
		Block: &block,
	}
}

// NewTranMsg constructs a message sharing a pending transaction.
func NewTranMsg(tx ledger.Tx) Message {
	return Message{
		ID:   uuid.NewString(),
		Type: TypeNewTran,
		Tran: &tx,
	}
}

// ChainRequestMsg constructs a message asking a peer for its full chain.
func ChainRequestMsg() Message {
	return Message{
		ID:   uuid.NewString(),
		Type: TypeChainRequest,
	}
}

// ChainResponseMsg constructs a message carrying this node's full chain.
func ChainResponseMsg(blocks []ledger.Block) Message {
	return Message{
		ID:     uuid.NewString(),
		Type:   TypeChainResponse,
		Blocks: blocks,
	}
}

func handshakeMsg(host string) Message {
	return Message{
		ID:   uuid.NewString(),
		Type: TypeHandshake,
		Host: host,
	}
}
