package chain

// ReceiptStatus is the outcome of an applied transaction.
type ReceiptStatus string

const (
	ReceiptSuccess ReceiptStatus = "success"
	ReceiptFailed  ReceiptStatus = "failed"
)

// Failure reasons recorded on receipts.
const (
	ReasonInsufficientFunds = "insufficient funds"
	ReasonNonceMismatch     = "nonce mismatch"
	ReasonMalformedArgument = "malformed argument"
)

// EventProfileUpdated is emitted by every successful upsert.
const EventProfileUpdated = "ProfileUpdated"

// Log is an event emitted while applying a transaction.
type Log struct {
	Event   string  `json:"event"`
	Address Address `json:"address"`
}

// Receipt records how a transaction was applied.
type Receipt struct {
	TxHash      Hash          `json:"tx_hash"`
	Status      ReceiptStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	BlockNumber uint64        `json:"block_number"`
	Logs        []Log         `json:"logs,omitempty"`
}

func (r *Receipt) Succeeded() bool {
	return r.Status == ReceiptSuccess
}
