package engine

import (
	"context"
	"testing"
	"time"

	"github.com/erain9/tickbook/pkg/core"
	"github.com/erain9/tickbook/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreateAndGet(t *testing.T) {
	m := NewManager(16*time.Hour, nil)
	defer m.Close()
	ctx := context.Background()

	info, err := m.CreateBook(ctx, "BTC-USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT", info.Name)
	assert.False(t, info.CreatedAt.IsZero())

	book, gotInfo, err := m.GetBook(ctx, "BTC-USDT")
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, info, gotInfo)

	_, err = m.CreateBook(ctx, "BTC-USDT")
	assert.ErrorIs(t, err, ErrBookExists)
}

func TestManagerGetUnknown(t *testing.T) {
	m := NewManager(16*time.Hour, nil)
	defer m.Close()

	_, _, err := m.GetBook(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestManagerDelete(t *testing.T) {
	m := NewManager(16*time.Hour, nil)
	defer m.Close()
	ctx := context.Background()

	_, err := m.CreateBook(ctx, "ETH-USDT")
	require.NoError(t, err)

	require.NoError(t, m.DeleteBook(ctx, "ETH-USDT"))
	assert.ErrorIs(t, m.DeleteBook(ctx, "ETH-USDT"), ErrBookNotFound)

	_, _, err = m.GetBook(ctx, "ETH-USDT")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestManagerList(t *testing.T) {
	m := NewManager(16*time.Hour, nil)
	defer m.Close()
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := m.CreateBook(ctx, name)
		require.NoError(t, err)
	}

	infos := m.ListBooks(ctx)
	assert.Len(t, infos, 3)
}

func TestManagedBookPublishesDoneMessages(t *testing.T) {
	sender := messaging.NewMockMessageSender()
	m := NewManager(16*time.Hour, sender)
	defer m.Close()
	ctx := context.Background()

	_, err := m.CreateBook(ctx, "BTC-USDT")
	require.NoError(t, err)
	book, _, err := m.GetBook(ctx, "BTC-USDT")
	require.NoError(t, err)

	sell, err := core.NewOrder(core.GoodTilCancel, 1, core.Sell, 100, 5)
	require.NoError(t, err)
	buy, err := core.NewOrder(core.GoodTilCancel, 2, core.Buy, 100, 5)
	require.NoError(t, err)

	book.AddOrder(ctx, sell)
	trades := book.AddOrder(ctx, buy)
	require.Len(t, trades, 1)

	sent := sender.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, uint64(1), sent[0].OrderID)
	assert.True(t, sent[0].Stored)
	assert.Empty(t, sent[0].Trades)

	assert.Equal(t, uint64(2), sent[1].OrderID)
	assert.False(t, sent[1].Stored)
	require.Len(t, sent[1].Trades, 1)
	assert.Equal(t, int64(5), sent[1].Trades[0].Quantity)
}
