package core

import (
	"context"
	"sync"
	"time"

	"github.com/erain9/tickbook/pkg/messaging"
	"github.com/erain9/tickbook/pkg/otel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Config carries the knobs for a new OrderBook. The zero value is usable:
// 16:00 local cutoff, real clock, global logger, no message sender.
type Config struct {
	// Cutoff is the wall-clock offset from local midnight at which
	// GoodForDay orders expire.
	Cutoff time.Duration
	// Clock drives the pruner's sense of time.
	Clock Clock
	// Sender, when set, receives a DoneMessage for every admitted order.
	Sender messaging.MessageSender
	// Logger overrides the global zerolog logger.
	Logger *zerolog.Logger
}

// OrderBook implements a single-instrument price-time-priority matching
// engine. One mutex guards the ladders, the order index and the level
// aggregates as a single logical object; all public operations are
// linearizable with respect to one another.
type OrderBook struct {
	mu     sync.Mutex
	bids   *ladder
	asks   *ladder
	orders map[OrderID]*orderEntry
	levels map[Price]*LevelData

	cutoff time.Duration
	clock  Clock
	sender messaging.MessageSender
	logger zerolog.Logger

	shutdown chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewOrderBook creates a running book. The good-for-day pruner starts
// immediately; Close must be called to stop it.
func NewOrderBook(cfg Config) *OrderBook {
	if cfg.Cutoff == 0 {
		cfg.Cutoff = DefaultCutoff
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	ob := &OrderBook{
		bids:     newLadder(),
		asks:     newLadder(),
		orders:   make(map[OrderID]*orderEntry),
		levels:   make(map[Price]*LevelData),
		cutoff:   cfg.Cutoff,
		clock:    cfg.Clock,
		sender:   cfg.Sender,
		logger:   logger,
		shutdown: make(chan struct{}),
	}

	ob.wg.Add(1)
	go ob.pruneGoodForDayOrders()

	return ob
}

// Close stops the pruner and waits for it to exit. No public operation is
// valid afterwards.
func (ob *OrderBook) Close() {
	ob.once.Do(func() {
		close(ob.shutdown)
	})
	ob.wg.Wait()
}

// AddOrder submits an order to the book and returns the trades produced by
// the subsequent match, possibly empty. A duplicate id, a Market order with
// an empty opposite side, a FillAndKill that cannot immediately match and a
// FillOrKill that cannot be completely filled are all no-ops with an empty
// result.
func (ob *OrderBook) AddOrder(ctx context.Context, order *Order) Trades {
	submittedType := order.OrderType()

	ctx, span := otel.StartOrderSpan(ctx, otel.SpanProcessOrder,
		attribute.Int64(otel.AttributeOrderID, int64(order.ID())),
		attribute.String(otel.AttributeOrderSide, order.Side().String()),
		attribute.String(otel.AttributeOrderType, string(submittedType)),
		attribute.Int64(otel.AttributeOrderQuantity, order.RemainingQuantity()),
	)
	defer span.End()

	ob.mu.Lock()
	sizeBefore := len(ob.orders)
	trades, canceled, stored, admitted := ob.addOrderLocked(order)
	sizeAfter := len(ob.orders)
	ob.mu.Unlock()

	metrics := otel.GetOrderBookMetrics()
	metrics.RecordOrderSubmitted(ctx, string(submittedType))
	metrics.RecordTrades(ctx, int64(len(trades)))
	metrics.RecordRestingDelta(ctx, int64(sizeAfter-sizeBefore))

	if !admitted {
		ob.logger.Debug().
			Uint64("order_id", order.ID()).
			Str("order_type", string(submittedType)).
			Msg("Order rejected at admission")
		span.SetStatus(codes.Ok, "order rejected at admission")
		return trades
	}

	otel.AddAttributes(span,
		attribute.Int64(otel.AttributeExecutedQuantity, order.FilledQuantity()),
		attribute.Int64(otel.AttributeRemainingQuantity, order.RemainingQuantity()),
		attribute.Int(otel.AttributeTradeCount, len(trades)),
	)
	span.SetStatus(codes.Ok, "order processed")

	ob.publishDone(order, trades, canceled, stored)

	return trades
}

// CancelOrder removes a resting order. Unknown ids are a no-op; cancel is
// idempotent.
func (ob *OrderBook) CancelOrder(ctx context.Context, id OrderID) {
	ctx, span := otel.StartOrderSpan(ctx, otel.SpanCancelOrder,
		attribute.Int64(otel.AttributeOrderID, int64(id)),
	)
	defer span.End()

	ob.mu.Lock()
	canceled := ob.cancelOrderLocked(id)
	ob.mu.Unlock()

	if canceled {
		metrics := otel.GetOrderBookMetrics()
		metrics.RecordOrderCanceled(ctx, 1)
		metrics.RecordRestingDelta(ctx, -1)
	}
}

// ModifyOrder cancels the existing order and resubmits a fresh order of the
// same type built from the modify. The replacement queues at the tail of its
// new level: a modify always loses time priority. Unknown ids return an empty
// result.
func (ob *OrderBook) ModifyOrder(ctx context.Context, modify OrderModify) Trades {
	ctx, span := otel.StartOrderSpan(ctx, otel.SpanModifyOrder,
		attribute.Int64(otel.AttributeOrderID, int64(modify.ID())),
		attribute.Int64(otel.AttributeOrderPrice, modify.Price()),
		attribute.Int64(otel.AttributeOrderQuantity, modify.Quantity()),
	)
	defer span.End()

	ob.mu.Lock()
	entry, ok := ob.orders[modify.ID()]
	if !ok {
		ob.mu.Unlock()
		span.SetStatus(codes.Ok, "unknown order")
		return nil
	}
	orderType := entry.order.OrderType()
	ob.cancelOrderLocked(modify.ID())

	order := modify.ToOrder(orderType)
	sizeBefore := len(ob.orders)
	trades, canceled, stored, admitted := ob.addOrderLocked(order)
	sizeAfter := len(ob.orders)
	ob.mu.Unlock()

	metrics := otel.GetOrderBookMetrics()
	metrics.RecordTrades(ctx, int64(len(trades)))
	metrics.RecordRestingDelta(ctx, int64(sizeAfter-sizeBefore-1))

	if admitted {
		ob.publishDone(order, trades, canceled, stored)
	}
	span.SetStatus(codes.Ok, "order modified")

	return trades
}

// Size returns the number of resting orders.
func (ob *OrderBook) Size() int {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return len(ob.orders)
}

// GetOrderInfos returns the aggregated per-level view of both sides,
// best-first per side.
func (ob *OrderBook) GetOrderInfos() BookSnapshot {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	bids := make([]LevelInfo, 0, ob.bids.Size())
	asks := make([]LevelInfo, 0, ob.asks.Size())

	ob.bids.Descend(func(lvl *priceLevel) bool {
		bids = append(bids, LevelInfo{Price: lvl.price, Quantity: levelQuantity(lvl)})
		return true
	})
	ob.asks.Ascend(func(lvl *priceLevel) bool {
		asks = append(asks, LevelInfo{Price: lvl.price, Quantity: levelQuantity(lvl)})
		return true
	})

	return BookSnapshot{Bids: bids, Asks: asks}
}

func levelQuantity(lvl *priceLevel) Quantity {
	var total Quantity
	for n := lvl.head; n != nil; n = n.next {
		total += n.order.RemainingQuantity()
	}
	return total
}

// private methods; all assume ob.mu is held

func (ob *OrderBook) sideLadder(side Side) *ladder {
	if side == Buy {
		return ob.bids
	}
	return ob.asks
}

// addOrderLocked admits, inserts and matches one order. Returns the trades,
// the ids canceled post-cross, whether the order still rests, and whether it
// was admitted at all.
func (ob *OrderBook) addOrderLocked(order *Order) (Trades, []OrderID, bool, bool) {
	if _, exists := ob.orders[order.ID()]; exists {
		return nil, nil, false, false
	}

	if order.IsMarketOrder() {
		// Price the market order at the worst resting opposite price so the
		// sweep is bounded by currently visible liquidity.
		var worst *priceLevel
		if order.Side() == Buy {
			worst = ob.asks.MaxLevel()
		} else {
			worst = ob.bids.MinLevel()
		}
		if worst == nil {
			return nil, nil, false, false
		}
		order.ToGoodTilCancel(worst.price)
	}

	switch order.OrderType() {
	case FillAndKill:
		if !ob.canMatch(order.Side(), order.Price()) {
			return nil, nil, false, false
		}
	case FillOrKill:
		if !ob.canFullyFill(order.Side(), order.Price(), order.RemainingQuantity()) {
			return nil, nil, false, false
		}
	}

	level := ob.sideLadder(order.Side()).UpsertLevel(order.Price())
	node := level.PushBack(order)
	ob.orders[order.ID()] = &orderEntry{order: order, level: level, node: node}
	ob.onOrderAdded(order)

	trades, canceled := ob.matchOrders()

	_, stored := ob.orders[order.ID()]
	return trades, canceled, stored, true
}

// canMatch reports whether an order at price would cross the opposite side.
func (ob *OrderBook) canMatch(side Side, price Price) bool {
	if side == Buy {
		best := ob.asks.MinLevel()
		if best == nil {
			return false
		}
		return price >= best.price
	}

	best := ob.bids.MaxLevel()
	if best == nil {
		return false
	}
	return price <= best.price
}

// canFullyFill reports whether quantity can be completely executed against
// opposite levels priced acceptably for an order at price. Used only for
// FillOrKill admission; reads the LevelData aggregates.
func (ob *OrderBook) canFullyFill(side Side, price Price, quantity Quantity) bool {
	if !ob.canMatch(side, price) {
		return false
	}

	if side == Buy {
		threshold := ob.asks.MinLevel().price
		ob.asks.Ascend(func(lvl *priceLevel) bool {
			if lvl.price < threshold {
				// Defensive: nothing can rest better than the best ask.
				return true
			}
			if lvl.price > price {
				return false
			}
			quantity -= ob.levels[lvl.price].Quantity
			return quantity > 0
		})
	} else {
		threshold := ob.bids.MaxLevel().price
		ob.bids.Descend(func(lvl *priceLevel) bool {
			if lvl.price > threshold {
				return true
			}
			if lvl.price < price {
				return false
			}
			quantity -= ob.levels[lvl.price].Quantity
			return quantity > 0
		})
	}

	return quantity <= 0
}

// matchOrders crosses the best levels while they overlap, FIFO within each
// level. Each trade half records its own resting price. After the cross, a
// FillAndKill remainder left at either head is withdrawn.
func (ob *OrderBook) matchOrders() (Trades, []OrderID) {
	trades := make(Trades, 0, len(ob.orders))

	for {
		bidLevel := ob.bids.MaxLevel()
		askLevel := ob.asks.MinLevel()
		if bidLevel == nil || askLevel == nil {
			break
		}
		if bidLevel.price < askLevel.price {
			break
		}

		for !bidLevel.Empty() && !askLevel.Empty() {
			bid := bidLevel.Front().order
			ask := askLevel.Front().order

			quantity := min(bid.RemainingQuantity(), ask.RemainingQuantity())
			bid.Fill(quantity)
			ask.Fill(quantity)

			trades = append(trades, Trade{
				Bid: TradeInfo{OrderID: bid.ID(), Price: bid.Price(), Quantity: quantity},
				Ask: TradeInfo{OrderID: ask.ID(), Price: ask.Price(), Quantity: quantity},
			})

			ob.onOrderMatched(bid.Price(), quantity, bid.IsFilled())
			ob.onOrderMatched(ask.Price(), quantity, ask.IsFilled())

			if bid.IsFilled() {
				bidLevel.Remove(bidLevel.Front())
				delete(ob.orders, bid.ID())
			}
			if ask.IsFilled() {
				askLevel.Remove(askLevel.Front())
				delete(ob.orders, ask.ID())
			}
		}

		if bidLevel.Empty() {
			ob.bids.DeleteLevel(bidLevel.price)
		}
		if askLevel.Empty() {
			ob.asks.DeleteLevel(askLevel.price)
		}
	}

	var canceled []OrderID
	if lvl := ob.bids.MaxLevel(); lvl != nil {
		if order := lvl.Front().order; order.OrderType() == FillAndKill {
			ob.cancelOrderLocked(order.ID())
			canceled = append(canceled, order.ID())
		}
	}
	if lvl := ob.asks.MinLevel(); lvl != nil {
		if order := lvl.Front().order; order.OrderType() == FillAndKill {
			ob.cancelOrderLocked(order.ID())
			canceled = append(canceled, order.ID())
		}
	}

	return trades, canceled
}

func (ob *OrderBook) cancelOrderLocked(id OrderID) bool {
	entry, ok := ob.orders[id]
	if !ok {
		return false
	}

	delete(ob.orders, id)
	entry.level.Remove(entry.node)
	if entry.level.Empty() {
		ob.sideLadder(entry.order.Side()).DeleteLevel(entry.level.price)
	}
	ob.onOrderCancelled(entry.order)

	return true
}

// cancelOrders is the batched cancel used by the pruner: one lock acquisition
// for the whole batch.
func (ob *OrderBook) cancelOrders(ids []OrderID) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	for _, id := range ids {
		ob.cancelOrderLocked(id)
	}
}

// Level aggregate maintenance. The aggregates change in the same critical
// section as the bucket change that causes them, never lazily.

func (ob *OrderBook) onOrderAdded(order *Order) {
	ob.updateLevelData(order.Price(), order.RemainingQuantity(), levelActionAdd)
}

func (ob *OrderBook) onOrderCancelled(order *Order) {
	ob.updateLevelData(order.Price(), order.RemainingQuantity(), levelActionRemove)
}

func (ob *OrderBook) onOrderMatched(price Price, quantity Quantity, filled bool) {
	// A draining match is a single Remove, not Match followed by Remove.
	if filled {
		ob.updateLevelData(price, quantity, levelActionRemove)
	} else {
		ob.updateLevelData(price, quantity, levelActionMatch)
	}
}

func (ob *OrderBook) updateLevelData(price Price, quantity Quantity, action levelAction) {
	data, ok := ob.levels[price]
	if !ok {
		data = &LevelData{}
		ob.levels[price] = data
	}

	switch action {
	case levelActionAdd:
		data.Count++
		data.Quantity += quantity
	case levelActionRemove:
		data.Count--
		data.Quantity -= quantity
	case levelActionMatch:
		data.Quantity -= quantity
	}

	if data.Count == 0 {
		delete(ob.levels, price)
	}
}

// pruneGoodForDayOrders cancels every resting GoodForDay order at the daily
// cutoff. The lock is held only for the id snapshot and the batched cancel,
// never across the wait.
func (ob *OrderBook) pruneGoodForDayOrders() {
	defer ob.wg.Done()

	for {
		now := ob.clock.Now()
		year, month, day := now.Date()
		next := time.Date(year, month, day, 0, 0, 0, 0, now.Location()).Add(ob.cutoff)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		select {
		case <-ob.shutdown:
			return
		case <-ob.clock.After(next.Sub(now)):
		}

		ob.mu.Lock()
		var ids []OrderID
		for id, entry := range ob.orders {
			if entry.order.OrderType() == GoodForDay {
				ids = append(ids, id)
			}
		}
		ob.mu.Unlock()

		if len(ids) == 0 {
			continue
		}

		ob.cancelOrders(ids)
		otel.GetOrderBookMetrics().RecordOrderCanceled(context.Background(), int64(len(ids)))
		otel.GetOrderBookMetrics().RecordRestingDelta(context.Background(), -int64(len(ids)))
		ob.logger.Info().
			Int("count", len(ids)).
			Msg("Expired good-for-day orders")
	}
}

// publishDone converts the outcome of one submission to a DoneMessage and
// hands it to the configured sender. Rejected admissions publish nothing.
func (ob *OrderBook) publishDone(order *Order, trades Trades, canceled []OrderID, stored bool) {
	if ob.sender == nil {
		return
	}

	msg := &messaging.DoneMessage{
		OrderID:      order.ID(),
		ExecutedQty:  order.FilledQuantity(),
		RemainingQty: order.RemainingQuantity(),
		Stored:       stored,
		Canceled:     canceled,
	}
	for _, t := range trades {
		msg.Trades = append(msg.Trades, messaging.Trade{
			BidOrderID: t.Bid.OrderID,
			AskOrderID: t.Ask.OrderID,
			BidPrice:   t.Bid.Price,
			AskPrice:   t.Ask.Price,
			Quantity:   t.Bid.Quantity,
		})
	}

	if err := ob.sender.SendDoneMessage(msg); err != nil {
		ob.logger.Warn().
			Err(err).
			Uint64("order_id", order.ID()).
			Msg("Failed to publish done message")
	}
}
