package core

import "encoding/json"

// TradeInfo records one side of an execution.
type TradeInfo struct {
	OrderID  OrderID  `json:"orderID"`
	Price    Price    `json:"price"`
	Quantity Quantity `json:"quantity"`
}

// Trade bundles the bid-side and ask-side halves of one execution. Each half
// carries its own resting price; downstream consumers interpret the pair.
type Trade struct {
	Bid TradeInfo `json:"bid"`
	Ask TradeInfo `json:"ask"`
}

// Trades is the ordered list of executions produced by one matching pass.
type Trades []Trade

// TotalQuantity returns the quantity executed across all trades. Bid and ask
// quantities are equal by construction, so one side suffices.
func (t Trades) TotalQuantity() Quantity {
	var total Quantity
	for _, trade := range t {
		total += trade.Bid.Quantity
	}
	return total
}

// String implements Stringer interface
func (t Trades) String() string {
	j, _ := json.Marshal(t)
	return string(j)
}

// LevelInfo is the aggregated view of one price level.
type LevelInfo struct {
	Price    Price    `json:"price"`
	Quantity Quantity `json:"quantity"`
}

// BookSnapshot is a point-in-time aggregated view of both sides of the book,
// best-first per side: bids by descending price, asks by ascending price.
type BookSnapshot struct {
	Bids []LevelInfo `json:"bids"`
	Asks []LevelInfo `json:"asks"`
}
