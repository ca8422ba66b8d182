package queue

import (
	"encoding/json"
	"testing"

	"github.com/erain9/tickbook/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDoneMessage(t *testing.T) {
	producer := &mockProducer{}
	sender := newQueueMessageSenderWithProducer(producer)

	done := &messaging.DoneMessage{
		OrderID:      42,
		ExecutedQty:  7,
		RemainingQty: 3,
		Stored:       true,
		Trades: []messaging.Trade{
			{BidOrderID: 42, AskOrderID: 17, BidPrice: 101, AskPrice: 100, Quantity: 7},
		},
	}

	require.NoError(t, sender.SendDoneMessage(done))
	require.Len(t, producer.sentMessages, 1)

	msg := producer.sentMessages[0]
	key, err := msg.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "42", string(key))

	value, err := msg.Value.Encode()
	require.NoError(t, err)

	var decoded messaging.DoneMessage
	require.NoError(t, json.Unmarshal(value, &decoded))
	assert.Equal(t, done.OrderID, decoded.OrderID)
	assert.Equal(t, done.ExecutedQty, decoded.ExecutedQty)
	assert.Len(t, decoded.Trades, 1)
	assert.Equal(t, int64(100), decoded.Trades[0].AskPrice)
}
