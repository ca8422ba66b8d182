package marketsim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/erain9/tickbook/pkg/core"
)

// Simulator drives a book in-process: it keeps a layered quote ladder resting
// around a randomly walking mid price and periodically fires a market order
// through it.
type Simulator struct {
	cfg      *Config
	book     *core.OrderBook
	strategy Strategy
	codec    *TickCodec
	logger   *slog.Logger

	rng     *rand.Rand
	nextID  core.OrderID
	resting []core.OrderID
}

// NewSimulator wires a simulator to an existing book.
func NewSimulator(cfg *Config, book *core.OrderBook, logger *slog.Logger) (*Simulator, error) {
	codec, err := NewTickCodec(cfg.TickSize)
	if err != nil {
		return nil, fmt.Errorf("creating tick codec: %w", err)
	}

	return &Simulator{
		cfg:      cfg,
		book:     book,
		strategy: NewLayeredSymmetricQuoting(cfg, codec, logger),
		codec:    codec,
		logger:   logger.With("component", "Simulator", "simulator_id", cfg.SimulatorID),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID:   1,
	}, nil
}

// Run requotes on every tick until the context is canceled.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.UpdateInterval)
	defer ticker.Stop()

	mid := s.cfg.MidPrice
	round := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		s.requote(ctx, mid)
		round++

		if s.cfg.TakerEvery > 0 && round%s.cfg.TakerEvery == 0 {
			s.fireTaker(ctx)
		}

		// Random walk: drift the mid by up to ±2 price steps.
		step := mid * (s.cfg.PriceStepPercent / 100)
		mid += (s.rng.Float64()*4 - 2) * step
	}
}

func (s *Simulator) requote(ctx context.Context, mid float64) {
	for _, id := range s.resting {
		s.book.CancelOrder(ctx, id)
	}
	s.resting = s.resting[:0]

	quotes, err := s.strategy.CalculateOrders(ctx, mid)
	if err != nil {
		s.logger.Error("Strategy failed", "error", err)
		return
	}

	for _, q := range quotes {
		order, err := core.NewOrder(q.Type, s.allocID(), q.Side, q.Price, q.Quantity)
		if err != nil {
			s.logger.Error("Building quote order failed", "error", err)
			continue
		}

		trades := s.book.AddOrder(ctx, order)
		s.resting = append(s.resting, order.ID())
		if len(trades) > 0 {
			s.logger.Info("Quote crossed on entry",
				"order_id", order.ID(),
				"trades", len(trades),
				"executed", trades.TotalQuantity())
		}
	}

	s.logger.Debug("Requoted",
		"mid", mid,
		"book_size", s.book.Size())
}

func (s *Simulator) fireTaker(ctx context.Context) {
	side := core.Buy
	if s.rng.Intn(2) == 0 {
		side = core.Sell
	}
	quantity := s.cfg.OrderSize/2 + 1

	order, err := core.NewMarketOrder(s.allocID(), side, quantity)
	if err != nil {
		s.logger.Error("Building market order failed", "error", err)
		return
	}

	trades := s.book.AddOrder(ctx, order)
	s.logger.Info("Market order swept",
		"order_id", order.ID(),
		"side", side.String(),
		"trades", len(trades),
		"executed", trades.TotalQuantity())
}

func (s *Simulator) allocID() core.OrderID {
	id := s.nextID
	s.nextID++
	return id
}
