package marketsim

import (
	"fmt"
	"math"
	"strconv"

	"github.com/erain9/tickbook/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
)

// TickCodec converts between the engine's integer tick prices and their
// decimal display form.
type TickCodec struct {
	tickSize  fpdecimal.Decimal
	tickFloat float64
}

// NewTickCodec parses a decimal tick size such as "0.01".
func NewTickCodec(tickSize string) (*TickCodec, error) {
	d, err := fpdecimal.FromString(tickSize)
	if err != nil {
		return nil, fmt.Errorf("invalid tick size %q: %w", tickSize, err)
	}
	if d.LessThanOrEqual(fpdecimal.Zero) {
		return nil, fmt.Errorf("tick size %q must be positive", tickSize)
	}

	f, err := strconv.ParseFloat(tickSize, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid tick size %q: %w", tickSize, err)
	}

	return &TickCodec{tickSize: d, tickFloat: f}, nil
}

// ToTicks converts a decimal price to the nearest tick.
func (c *TickCodec) ToTicks(price float64) core.Price {
	return core.Price(math.Round(price / c.tickFloat))
}

// Decimal renders a tick price in currency units.
func (c *TickCodec) Decimal(price core.Price) fpdecimal.Decimal {
	return fpdecimal.FromInt(price).Mul(c.tickSize)
}
