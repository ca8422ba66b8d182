package core

import (
	"errors"
	"math"
	"time"
)

// Errors
var (
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidOrderType = errors.New("invalid order type")
)

// InvalidPrice marks a Market order that has not yet been priced against the
// opposite side of the book. It never appears on a resting order.
const InvalidPrice Price = math.MinInt64

// DefaultCutoff is the wall-clock offset from local midnight at which
// GoodForDay orders expire.
const DefaultCutoff = 16 * time.Hour
