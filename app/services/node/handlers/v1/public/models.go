package public

import "github.com/ledgermesh/ledgermesh/business/sys/validate"

// submitTx is what clients post to place a transfer in the mempool.
type submitTx struct {
	From  string  `json:"from" validate:"required"`
	To    string  `json:"to" validate:"required"`
	Value float64 `json:"value" validate:"gte=0"`
}

// Validate checks the data in the model is considered clean.
func (st submitTx) Validate() error {
	return validate.Check(st)
}

// connectPeer is what clients post to dial a new peer.
type connectPeer struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

// Validate checks the data in the model is considered clean.
func (cp connectPeer) Validate() error {
	return validate.Check(cp)
}

// balance is one account's funds after replaying the chain.
type balance struct {
	Account string  `json:"account"`
	Balance float64 `json:"balance"`
}

// actBalances is the response for the accounts endpoints.
type actBalances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}

// peerInfo is the response for the peers endpoint.
type peerInfo struct {
	Known     []string `json:"known"`
	Connected []string `json:"connected"`
}
