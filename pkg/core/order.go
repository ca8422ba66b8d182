package core

import (
	"encoding/json"
	"fmt"
)

// Price is a signed integer tick.
type Price = int64

// Quantity is a non-negative integer number of units.
type Quantity = int64

// OrderID uniquely identifies an order.
type OrderID = uint64

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType represents the lifetime policy of an order
type OrderType string

// Order types
const (
	GoodTilCancel OrderType = "GTC"
	FillAndKill   OrderType = "FAK"
	FillOrKill    OrderType = "FOK"
	GoodForDay    OrderType = "GFD"
	Market        OrderType = "MARKET"
)

// Order stores information about a single order. It is mutated only by the
// book that owns it: Fill while matching, ToGoodTilCancel on Market promotion.
type Order struct {
	orderType         OrderType
	id                OrderID
	side              Side
	price             Price
	initialQuantity   Quantity
	remainingQuantity Quantity
}

// NewOrder creates a new priced Order
func NewOrder(orderType OrderType, id OrderID, side Side, price Price, quantity Quantity) (*Order, error) {
	switch orderType {
	case GoodTilCancel, FillAndKill, FillOrKill, GoodForDay:
	case Market:
		return nil, ErrInvalidOrderType
	default:
		return nil, ErrInvalidOrderType
	}

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if price == InvalidPrice {
		return nil, ErrInvalidPrice
	}

	return &Order{
		orderType:         orderType,
		id:                id,
		side:              side,
		price:             price,
		initialQuantity:   quantity,
		remainingQuantity: quantity,
	}, nil
}

// NewMarketOrder creates a new Market Order. Its price stays InvalidPrice
// until the book promotes it against the opposite side.
func NewMarketOrder(id OrderID, side Side, quantity Quantity) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	return &Order{
		orderType:         Market,
		id:                id,
		side:              side,
		price:             InvalidPrice,
		initialQuantity:   quantity,
		remainingQuantity: quantity,
	}, nil
}

// ID returns the order identifier
func (o *Order) ID() OrderID {
	return o.id
}

// OrderType returns the lifetime policy of the Order
func (o *Order) OrderType() OrderType {
	return o.orderType
}

// Side returns side of the Order
func (o *Order) Side() Side {
	return o.side
}

// Price returns the limit price in ticks
func (o *Order) Price() Price {
	return o.price
}

// InitialQuantity returns the quantity the order was submitted with
func (o *Order) InitialQuantity() Quantity {
	return o.initialQuantity
}

// RemainingQuantity returns the quantity still open
func (o *Order) RemainingQuantity() Quantity {
	return o.remainingQuantity
}

// FilledQuantity returns the quantity executed so far
func (o *Order) FilledQuantity() Quantity {
	return o.initialQuantity - o.remainingQuantity
}

// IsFilled returns true once no quantity remains open
func (o *Order) IsFilled() bool {
	return o.remainingQuantity == 0
}

// IsMarketOrder returns true for an unpromoted Market order
func (o *Order) IsMarketOrder() bool {
	return o.orderType == Market
}

// Fill reduces the remaining quantity. Filling past the remaining quantity is
// an invariant violation and panics with the offending order id.
func (o *Order) Fill(quantity Quantity) {
	if quantity > o.remainingQuantity {
		panic(fmt.Sprintf("order (%d) cannot be filled for more than its remaining quantity", o.id))
	}
	o.remainingQuantity -= quantity
}

// ToGoodTilCancel promotes a Market order to a GoodTilCancel order at the
// given price. Promoting a non-Market order, or promoting to InvalidPrice, is
// an invariant violation and panics.
func (o *Order) ToGoodTilCancel(price Price) {
	if o.orderType != Market {
		panic(fmt.Sprintf("order (%d) cannot have its price modified as it is not a market order", o.id))
	}
	if price == InvalidPrice {
		panic(fmt.Sprintf("order (%d) must have a tradable price", o.id))
	}
	o.price = price
	o.orderType = GoodTilCancel
}

// MarshalJSON implements custom JSON marshaling for Order
func (o *Order) MarshalJSON() ([]byte, error) {
	type OrderJSON struct {
		ID                OrderID   `json:"id"`
		OrderType         OrderType `json:"orderType"`
		Side              string    `json:"side"`
		Price             Price     `json:"price"`
		InitialQuantity   Quantity  `json:"initialQuantity"`
		RemainingQuantity Quantity  `json:"remainingQuantity"`
	}

	return json.Marshal(OrderJSON{
		ID:                o.id,
		OrderType:         o.orderType,
		Side:              o.side.String(),
		Price:             o.price,
		InitialQuantity:   o.initialQuantity,
		RemainingQuantity: o.remainingQuantity,
	})
}

// String implements Stringer interface
func (o *Order) String() string {
	j, _ := o.MarshalJSON()
	return string(j)
}

// OrderModify carries the replacement fields for an in-book order. It
// materializes a fresh Order of a caller-specified type via ToOrder.
type OrderModify struct {
	id       OrderID
	side     Side
	price    Price
	quantity Quantity
}

// NewOrderModify creates an OrderModify for the given order id
func NewOrderModify(id OrderID, side Side, price Price, quantity Quantity) OrderModify {
	return OrderModify{
		id:       id,
		side:     side,
		price:    price,
		quantity: quantity,
	}
}

// ID returns the id of the order being modified
func (m OrderModify) ID() OrderID {
	return m.id
}

// Side returns the replacement side
func (m OrderModify) Side() Side {
	return m.side
}

// Price returns the replacement price
func (m OrderModify) Price() Price {
	return m.price
}

// Quantity returns the replacement quantity
func (m OrderModify) Quantity() Quantity {
	return m.quantity
}

// ToOrder materializes the modify as a fresh Order of the given type
func (m OrderModify) ToOrder(orderType OrderType) *Order {
	return &Order{
		orderType:         orderType,
		id:                m.id,
		side:              m.side,
		price:             m.price,
		initialQuantity:   m.quantity,
		remainingQuantity: m.quantity,
	}
}
