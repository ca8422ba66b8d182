package marketsim

import (
	"context"
	"log/slog"

	"github.com/erain9/tickbook/pkg/core"
)

// Quote is one order the strategy wants resting in the book.
type Quote struct {
	Side     core.Side
	Price    core.Price
	Quantity core.Quantity
	Type     core.OrderType
}

// Strategy defines the interface for quoting strategies
type Strategy interface {
	// CalculateOrders calculates the quotes to be placed around the mid price
	CalculateOrders(ctx context.Context, midPrice float64) ([]Quote, error)
}

// LayeredSymmetricQuoting implements a symmetric quoting strategy with
// multiple price levels on each side of the mid.
type LayeredSymmetricQuoting struct {
	cfg    *Config
	codec  *TickCodec
	logger *slog.Logger
}

// NewLayeredSymmetricQuoting creates a new LayeredSymmetricQuoting strategy
func NewLayeredSymmetricQuoting(cfg *Config, codec *TickCodec, logger *slog.Logger) Strategy {
	return &LayeredSymmetricQuoting{
		cfg:    cfg,
		codec:  codec,
		logger: logger.With("component", "LayeredSymmetricQuoting"),
	}
}

// CalculateOrders implements Strategy
func (s *LayeredSymmetricQuoting) CalculateOrders(ctx context.Context, midPrice float64) ([]Quote, error) {
	baseHalfSpread := midPrice * (s.cfg.BaseSpreadPercent / 2 / 100)
	priceStep := midPrice * (s.cfg.PriceStepPercent / 100)

	quotes := make([]Quote, 0, s.cfg.NumLevels*2)

	for i := 1; i <= s.cfg.NumLevels; i++ {
		bidPrice := s.codec.ToTicks(midPrice - baseHalfSpread - float64(i-1)*priceStep)
		askPrice := s.codec.ToTicks(midPrice + baseHalfSpread + float64(i-1)*priceStep)

		// Rounding to ticks can collapse a thin spread; keep the quotes from
		// crossing each other.
		if bidPrice >= askPrice {
			bidPrice = askPrice - 1
		}

		quotes = append(quotes,
			Quote{Side: core.Buy, Price: bidPrice, Quantity: s.cfg.OrderSize, Type: core.GoodForDay},
			Quote{Side: core.Sell, Price: askPrice, Quantity: s.cfg.OrderSize, Type: core.GoodForDay},
		)

		s.logger.Debug("Calculated quote pair",
			"level", i,
			"bid_price", s.codec.Decimal(bidPrice).String(),
			"ask_price", s.codec.Decimal(askPrice).String(),
			"quantity", s.cfg.OrderSize)
	}

	return quotes, nil
}
