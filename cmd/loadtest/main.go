package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/time/rate"

	"github.com/erain9/tickbook/pkg/core"
)

func main() {
	numWorkers := flag.Int("workers", 8, "Concurrent submitters")
	ordersPerWorker := flag.Int("orders", 50000, "Orders per worker")
	maxRate := flag.Int("rate", 0, "Max orders/sec across all workers (0 = unlimited)")
	midPrice := flag.Int64("mid", 10000, "Mid price in ticks")
	flag.Parse()

	book := core.NewOrderBook(core.Config{})
	defer book.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, cleaning up...")
		cancel()
	}()

	var limiter *rate.Limiter
	if *maxRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(*maxRate), *maxRate)
	}

	// One histogram per worker, merged at the end; values in nanoseconds,
	// 1ns..10s range.
	histograms := make([]*hdrhistogram.Histogram, *numWorkers)
	for i := range histograms {
		histograms[i] = hdrhistogram.New(1, 10_000_000_000, 3)
	}

	var wg sync.WaitGroup
	var submitted, traded atomic.Int64

	start := time.Now()
	log.Printf("Starting %d workers, %d orders per worker...", *numWorkers, *ordersPerWorker)

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(workerID) + 1))
			hist := histograms[workerID]

			for j := 0; j < *ordersPerWorker; j++ {
				if ctx.Err() != nil {
					return
				}
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}

				id := core.OrderID(workerID*(*ordersPerWorker) + j + 1)
				order := randomOrder(rng, id, *midPrice)

				begin := time.Now()
				trades := book.AddOrder(ctx, order)
				elapsed := time.Since(begin).Nanoseconds()

				if err := hist.RecordValue(elapsed); err != nil {
					log.Printf("histogram: %v", err)
				}
				submitted.Add(1)
				traded.Add(int64(len(trades)))
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	merged := hdrhistogram.New(1, 10_000_000_000, 3)
	for _, h := range histograms {
		merged.Merge(h)
	}

	total := submitted.Load()
	fmt.Printf("\nSubmitted %d orders in %v (%.0f orders/sec), %d trades, %d resting\n",
		total, elapsed.Round(time.Millisecond),
		float64(total)/elapsed.Seconds(), traded.Load(), book.Size())
	fmt.Printf("Latency  p50: %s  p99: %s  p99.9: %s  max: %s\n",
		time.Duration(merged.ValueAtQuantile(50)),
		time.Duration(merged.ValueAtQuantile(99)),
		time.Duration(merged.ValueAtQuantile(99.9)),
		time.Duration(merged.Max()))
}

// randomOrder produces a realistic mix: mostly GTC quotes around the mid,
// some GFD, the occasional FAK/FOK and market order.
func randomOrder(rng *rand.Rand, id core.OrderID, mid int64) *core.Order {
	side := core.Buy
	if rng.Intn(2) == 0 {
		side = core.Sell
	}
	quantity := core.Quantity(rng.Intn(20) + 1)

	switch rng.Intn(20) {
	case 0:
		if order, err := core.NewMarketOrder(id, side, quantity); err == nil {
			return order
		}
	case 1, 2:
		offset := int64(rng.Intn(10))
		price := mid + offset
		if side == core.Sell {
			price = mid - offset
		}
		orderType := core.FillAndKill
		if rng.Intn(2) == 0 {
			orderType = core.FillOrKill
		}
		if order, err := core.NewOrder(orderType, id, side, price, quantity); err == nil {
			return order
		}
	}

	// Resting quote a few ticks away from the mid.
	offset := int64(rng.Intn(50) + 1)
	price := mid - offset
	if side == core.Sell {
		price = mid + offset
	}
	orderType := core.GoodTilCancel
	if rng.Intn(4) == 0 {
		orderType = core.GoodForDay
	}
	order, err := core.NewOrder(orderType, id, side, price, quantity)
	if err != nil {
		log.Fatalf("building order %d: %v", id, err)
	}
	return order
}
