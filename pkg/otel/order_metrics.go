package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// orderBookMetrics holds the singleton instance
var orderBookMetrics *OrderBookMetrics

// OrderBookMetrics holds metrics for order book operations
type OrderBookMetrics struct {
	ordersSubmittedTotal metric.Int64Counter
	ordersCanceledTotal  metric.Int64Counter
	tradesExecutedTotal  metric.Int64Counter
	restingOrders        metric.Int64UpDownCounter
}

// GetOrderBookMetrics returns the OrderBookMetrics singleton
func GetOrderBookMetrics() *OrderBookMetrics {
	if orderBookMetrics == nil {
		meter := otel.GetMeterProvider().Meter(instrumentationName)

		ordersSubmittedTotal, err := meter.Int64Counter(
			"orderbook.orders_submitted.total",
			metric.WithDescription("Total number of orders submitted"),
			metric.WithUnit("{order}"),
		)
		if err != nil {
			return &OrderBookMetrics{}
		}

		ordersCanceledTotal, err := meter.Int64Counter(
			"orderbook.orders_canceled.total",
			metric.WithDescription("Total number of orders canceled"),
			metric.WithUnit("{order}"),
		)
		if err != nil {
			return &OrderBookMetrics{}
		}

		tradesExecutedTotal, err := meter.Int64Counter(
			"orderbook.trades_executed.total",
			metric.WithDescription("Total number of trades executed"),
			metric.WithUnit("{trade}"),
		)
		if err != nil {
			return &OrderBookMetrics{}
		}

		restingOrders, err := meter.Int64UpDownCounter(
			"orderbook.resting_orders",
			metric.WithDescription("Number of orders currently resting in the book"),
			metric.WithUnit("{order}"),
		)
		if err != nil {
			return &OrderBookMetrics{}
		}

		orderBookMetrics = &OrderBookMetrics{
			ordersSubmittedTotal: ordersSubmittedTotal,
			ordersCanceledTotal:  ordersCanceledTotal,
			tradesExecutedTotal:  tradesExecutedTotal,
			restingOrders:        restingOrders,
		}
	}

	return orderBookMetrics
}

// RecordOrderSubmitted increments the submitted orders counter
func (m *OrderBookMetrics) RecordOrderSubmitted(ctx context.Context, orderType string) {
	if m.ordersSubmittedTotal == nil {
		return
	}
	m.ordersSubmittedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("order.type", orderType),
	))
}

// RecordOrderCanceled increments the canceled orders counter
func (m *OrderBookMetrics) RecordOrderCanceled(ctx context.Context, count int64) {
	if m.ordersCanceledTotal == nil {
		return
	}
	m.ordersCanceledTotal.Add(ctx, count)
}

// RecordTrades increments the executed trades counter
func (m *OrderBookMetrics) RecordTrades(ctx context.Context, count int64) {
	if m.tradesExecutedTotal == nil {
		return
	}
	m.tradesExecutedTotal.Add(ctx, count)
}

// RecordRestingDelta adjusts the resting order gauge
func (m *OrderBookMetrics) RecordRestingDelta(ctx context.Context, delta int64) {
	if m.restingOrders == nil {
		return
	}
	m.restingOrders.Add(ctx, delta)
}
