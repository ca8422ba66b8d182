package core

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

func newBenchBook(b *testing.B) *OrderBook {
	b.Helper()
	clock := newFakeClock(time.Date(2024, time.March, 5, 10, 0, 0, 0, time.Local))
	book := NewOrderBook(Config{Clock: clock})
	b.Cleanup(book.Close)
	return book
}

// BenchmarkAddRestingOrders measures non-crossing inserts across a spread of
// price levels.
func BenchmarkAddRestingOrders(b *testing.B) {
	book := newBenchBook(b)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		order, _ := NewOrder(GoodTilCancel, OrderID(i+1), Buy, Price(1000-rng.Intn(100)), 10)
		book.AddOrder(ctx, order)
	}
}

// BenchmarkMatchCross measures one resting order matched per submission.
func BenchmarkMatchCross(b *testing.B) {
	book := newBenchBook(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := OrderID(2 * i)
		bid, _ := NewOrder(GoodTilCancel, id+1, Buy, 100, 10)
		ask, _ := NewOrder(GoodTilCancel, id+2, Sell, 100, 10)
		book.AddOrder(ctx, bid)
		book.AddOrder(ctx, ask)
	}
}

// BenchmarkCancelOrder measures cancel throughput against a deep book.
func BenchmarkCancelOrder(b *testing.B) {
	book := newBenchBook(b)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < b.N; i++ {
		order, _ := NewOrder(GoodTilCancel, OrderID(i+1), Buy, Price(1000-rng.Intn(500)), 10)
		book.AddOrder(ctx, order)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book.CancelOrder(ctx, OrderID(i+1))
	}
}
