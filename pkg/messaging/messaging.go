package messaging

// MessageSender defines an interface for sending messages
// This helps decouple the core package from specific implementations
// like Kafka in the queue package
type MessageSender interface {
	SendDoneMessage(done *DoneMessage) error
	Close() error
}

// DoneMessage represents the outcome of one order submission as published to
// downstream consumers.
type DoneMessage struct {
	OrderID      uint64   `json:"orderID"`
	ExecutedQty  int64    `json:"executedQty"`
	RemainingQty int64    `json:"remainingQty"`
	Stored       bool     `json:"stored"`
	Canceled     []uint64 `json:"canceled,omitempty"`
	Trades       []Trade  `json:"trades,omitempty"`
}

// Trade represents a single trade execution. Each side reports the price its
// resting order carried.
type Trade struct {
	BidOrderID uint64 `json:"bidOrderID"`
	AskOrderID uint64 `json:"askOrderID"`
	BidPrice   int64  `json:"bidPrice"`
	AskPrice   int64  `json:"askPrice"`
	Quantity   int64  `json:"quantity"`
}
