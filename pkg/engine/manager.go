package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erain9/tickbook/pkg/core"
	"github.com/erain9/tickbook/pkg/logging"
	"github.com/erain9/tickbook/pkg/messaging"
)

var (
	// ErrBookExists is returned when trying to create a book that already exists
	ErrBookExists = errors.New("order book with this name already exists")

	// ErrBookNotFound is returned when trying to access a non-existent book
	ErrBookNotFound = errors.New("order book not found")
)

// BookInfo contains metadata about an order book
type BookInfo struct {
	Name      string
	CreatedAt time.Time
}

// Manager owns a set of named, independently locked single-instrument books.
type Manager struct {
	mu     sync.RWMutex
	books  map[string]*core.OrderBook
	info   map[string]*BookInfo
	cutoff time.Duration
	sender messaging.MessageSender
}

// NewManager creates a Manager. Every book it creates shares the given
// good-for-day cutoff and message sender; a nil sender disables publishing.
func NewManager(cutoff time.Duration, sender messaging.MessageSender) *Manager {
	return &Manager{
		books:  make(map[string]*core.OrderBook),
		info:   make(map[string]*BookInfo),
		cutoff: cutoff,
		sender: sender,
	}
}

// CreateBook creates a new running order book under the given name
func (m *Manager) CreateBook(ctx context.Context, name string) (*BookInfo, error) {
	logger := logging.FromContext(ctx).With().Str("order_book", name).Logger()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.books[name]; exists {
		logger.Error().Msg("Order book already exists")
		return nil, ErrBookExists
	}

	book := core.NewOrderBook(core.Config{
		Cutoff: m.cutoff,
		Sender: m.sender,
		Logger: &logger,
	})

	m.books[name] = book

	info := &BookInfo{
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.info[name] = info

	logger.Info().Msg("Created new order book")
	return info, nil
}

// GetBook retrieves an order book by name
func (m *Manager) GetBook(ctx context.Context, name string) (*core.OrderBook, *BookInfo, error) {
	logger := logging.FromContext(ctx).With().Str("order_book", name).Logger()

	m.mu.RLock()
	defer m.mu.RUnlock()

	book, exists := m.books[name]
	if !exists {
		logger.Debug().Msg("Order book not found")
		return nil, nil, ErrBookNotFound
	}

	return book, m.info[name], nil
}

// DeleteBook stops and removes an order book
func (m *Manager) DeleteBook(ctx context.Context, name string) error {
	logger := logging.FromContext(ctx).With().Str("order_book", name).Logger()

	m.mu.Lock()
	book, exists := m.books[name]
	if !exists {
		m.mu.Unlock()
		logger.Debug().Msg("Order book not found")
		return ErrBookNotFound
	}
	delete(m.books, name)
	delete(m.info, name)
	m.mu.Unlock()

	// Stop the pruner outside the manager lock.
	book.Close()

	logger.Info().Msg("Deleted order book")
	return nil
}

// ListBooks returns information about all order books
func (m *Manager) ListBooks(ctx context.Context) []*BookInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*BookInfo, 0, len(m.info))
	for _, info := range m.info {
		result = append(result, info)
	}

	logger := logging.FromContext(ctx)
	logger.Debug().Int("count", len(result)).Msg("Listed order books")
	return result
}

// Close stops every book owned by the manager
func (m *Manager) Close() {
	m.mu.Lock()
	books := m.books
	m.books = make(map[string]*core.OrderBook)
	m.info = make(map[string]*BookInfo)
	m.mu.Unlock()

	for _, book := range books {
		book.Close()
	}
}
