package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/erain9/tickbook/pkg/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher periodically snapshots a book's aggregated levels and fans them
// out over Redis: a pub/sub channel for live consumers plus a latest-value
// key for late joiners.
type Publisher struct {
	client   *redis.Client
	book     *core.OrderBook
	name     string
	channel  string
	interval time.Duration
	logger   *zap.Logger

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

type snapshotPayload struct {
	Book      string           `json:"book"`
	Timestamp int64            `json:"timestamp"`
	Bids      []core.LevelInfo `json:"bids"`
	Asks      []core.LevelInfo `json:"asks"`
}

// NewPublisher creates a stopped Publisher; call Start to begin publishing.
func NewPublisher(client *redis.Client, book *core.OrderBook, name, channel string, interval time.Duration, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		client:   client,
		book:     book,
		name:     name,
		channel:  channel,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the publishing loop.
func (p *Publisher) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop terminates the loop and waits for it to exit.
func (p *Publisher) Stop() {
	p.once.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			if err := p.publishOnce(context.Background()); err != nil {
				p.logger.Warn("Failed to publish level snapshot",
					zap.String("book", p.name),
					zap.Error(err))
			}
		}
	}
}

func (p *Publisher) publishOnce(ctx context.Context) error {
	snapshot := p.book.GetOrderInfos()

	payload, err := json.Marshal(snapshotPayload{
		Book:      p.name,
		Timestamp: time.Now().UnixMilli(),
		Bids:      snapshot.Bids,
		Asks:      snapshot.Asks,
	})
	if err != nil {
		return err
	}

	key := "tickbook:levels:" + p.name
	if err := p.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return err
	}

	p.logger.Debug("Published level snapshot",
		zap.String("book", p.name),
		zap.Int("bid_levels", len(snapshot.Bids)),
		zap.Int("ask_levels", len(snapshot.Asks)))
	return nil
}
