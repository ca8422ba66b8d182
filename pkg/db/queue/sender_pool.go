package queue

import (
	"fmt"
	"sync"

	"github.com/erain9/tickbook/pkg/messaging"
)

var (
	senderPool   chan messaging.MessageSender
	poolInitOnce sync.Once
	maxPoolSize  = 32
)

// initSenderPool initializes the sender pool
func initSenderPool() {
	poolInitOnce.Do(func() {
		senderPool = make(chan messaging.MessageSender, maxPoolSize)
		// Pre-populate the entire pool
		for i := 0; i < maxPoolSize; i++ {
			sender, err := NewQueueMessageSender()
			if err != nil {
				fmt.Printf("Error creating sender: %v\n", err)
				continue
			}
			senderPool <- sender
		}
	})
}

// GetSender gets a sender from the pool
func GetSender() messaging.MessageSender {
	initSenderPool()

	select {
	case sender := <-senderPool:
		return sender
	default:
		// If pool is empty, something is wrong - log and return nil
		fmt.Printf("Warning: sender pool is empty\n")
		return nil
	}
}

// ReturnSender returns a sender to the pool
func ReturnSender(sender messaging.MessageSender) {
	if sender == nil {
		return
	}

	select {
	case senderPool <- sender:
	default:
		// If pool is full, something is wrong - log and close
		fmt.Printf("Warning: sender pool is full\n")
		_ = sender.Close()
	}
}

// PooledSender is a MessageSender that draws a pooled Kafka connection per
// send. It is what the daemon hands to each order book.
type PooledSender struct{}

// SendDoneMessage sends the message through a pooled sender
func (PooledSender) SendDoneMessage(done *messaging.DoneMessage) error {
	sender := GetSender()
	if sender == nil {
		return fmt.Errorf("failed to get message sender from pool")
	}

	if err := sender.SendDoneMessage(done); err != nil {
		// On a send error the connection is suspect; close it instead of
		// returning it to the pool.
		_ = sender.Close()
		return err
	}

	ReturnSender(sender)
	return nil
}

// Close drains and closes every pooled sender
func (PooledSender) Close() error {
	initSenderPool()
	for {
		select {
		case sender := <-senderPool:
			_ = sender.Close()
		default:
			return nil
		}
	}
}

// Ensure PooledSender implements MessageSender
var _ messaging.MessageSender = PooledSender{}
