package marketsim

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/erain9/tickbook/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BookName:          "BTC-USDT",
		TickSize:          "0.01",
		MidPrice:          100.0,
		NumLevels:         3,
		BaseSpreadPercent: 0.1,
		PriceStepPercent:  0.05,
		OrderSize:         10,
		UpdateInterval:    time.Second,
		SimulatorID:       "sim-test",
	}
}

func TestCalculateOrdersShape(t *testing.T) {
	cfg := testConfig()
	codec, err := NewTickCodec(cfg.TickSize)
	require.NoError(t, err)

	strategy := NewLayeredSymmetricQuoting(cfg, codec, slog.Default())
	quotes, err := strategy.CalculateOrders(context.Background(), cfg.MidPrice)
	require.NoError(t, err)
	require.Len(t, quotes, cfg.NumLevels*2)

	mid := codec.ToTicks(cfg.MidPrice)
	for _, q := range quotes {
		assert.Equal(t, core.GoodForDay, q.Type)
		assert.Equal(t, cfg.OrderSize, q.Quantity)
		if q.Side == core.Buy {
			assert.Less(t, q.Price, mid, "bid must sit below mid")
		} else {
			assert.Greater(t, q.Price, mid, "ask must sit above mid")
		}
	}
}

func TestCalculateOrdersNeverCrossesItself(t *testing.T) {
	cfg := testConfig()
	// A spread narrower than one tick forces the rounding guard.
	cfg.BaseSpreadPercent = 0.001
	codec, err := NewTickCodec(cfg.TickSize)
	require.NoError(t, err)

	strategy := NewLayeredSymmetricQuoting(cfg, codec, slog.Default())
	quotes, err := strategy.CalculateOrders(context.Background(), cfg.MidPrice)
	require.NoError(t, err)

	var bestBid, bestAsk core.Price
	for _, q := range quotes {
		if q.Side == core.Buy && (bestBid == 0 || q.Price > bestBid) {
			bestBid = q.Price
		}
		if q.Side == core.Sell && (bestAsk == 0 || q.Price < bestAsk) {
			bestAsk = q.Price
		}
	}
	assert.Less(t, bestBid, bestAsk, "quote ladder must not cross itself")
}

func TestTickCodec(t *testing.T) {
	codec, err := NewTickCodec("0.01")
	require.NoError(t, err)

	assert.Equal(t, core.Price(10000), codec.ToTicks(100.0))
	assert.Equal(t, core.Price(10001), codec.ToTicks(100.014))
	assert.Equal(t, "100.000", codec.Decimal(10000).String())

	_, err = NewTickCodec("0")
	assert.Error(t, err)
	_, err = NewTickCodec("abc")
	assert.Error(t, err)
}

func TestSimulatorQuotesRest(t *testing.T) {
	cfg := testConfig()
	book := core.NewOrderBook(core.Config{})
	defer book.Close()

	sim, err := NewSimulator(cfg, book, slog.Default())
	require.NoError(t, err)

	sim.requote(context.Background(), cfg.MidPrice)
	assert.Equal(t, cfg.NumLevels*2, book.Size())

	// Requoting replaces the previous ladder rather than stacking on it.
	sim.requote(context.Background(), cfg.MidPrice)
	assert.Equal(t, cfg.NumLevels*2, book.Size())
}
