package kafkaclient

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaReader defines the interface for a Kafka message reader.
// This allows for easy mocking in unit tests.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads messages from a topic in a background loop and hands them
// out on a channel. Offsets are committed manually through CommitOffset.
type Consumer struct {
	reader KafkaReader
	log    logrus.FieldLogger

	// mu guards cancel, which StartConsuming sets and Stop calls.
	mu       sync.Mutex
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup

	// unbuffered, so the loop never reads ahead of the consumer.
	messageChan chan kafka.Message
}

// NewConsumer creates a Consumer for topic in the given consumer group.
func NewConsumer(topic, groupID, broker string, log logrus.FieldLogger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
		// Disable auto-commit to manually control offset committing.
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return newConsumer(reader, log)
}

func newConsumer(reader KafkaReader, log logrus.FieldLogger) *Consumer {
	return &Consumer{
		reader:      reader,
		log:         log,
		messageChan: make(chan kafka.Message),
	}
}

// Messages returns the channel the read loop delivers on. It is closed when
// the loop exits.
func (c *Consumer) Messages() <-chan kafka.Message {
	return c.messageChan
}

// CommitOffset marks msg as processed.
func (c *Consumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	c.log.WithFields(messageFields(msg)).Debug("Committing offset")
	return c.reader.CommitMessages(ctx, msg)
}

// StartConsuming begins the read loop in a separate goroutine. The loop ends
// when ctx is done or Stop is called, whichever comes first.
func (c *Consumer) StartConsuming(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.messageChan)

		c.log.Info("Starting Kafka consumer loop")
		for {
			if ctx.Err() != nil {
				c.log.Info("Context canceled, stopping consumer loop")
				return
			}

			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
					return
				}
				c.log.WithError(err).Warn("Error reading message")
				// Back off to prevent a tight error loop.
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}

			select {
			case c.messageChan <- msg:
				c.log.WithFields(messageFields(msg)).Debug("Message received")
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the read loop, waits for it to exit and closes the reader. It is
// safe to call with the parent context still live and more than once.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		if c.cancel != nil {
			c.cancel()
		}
		c.mu.Unlock()
		c.wg.Wait()
		if err := c.reader.Close(); err != nil {
			c.log.WithError(err).Error("Failed to close Kafka reader")
		}
		c.log.Info("Kafka consumer stopped")
	})
}

func messageFields(msg kafka.Message) logrus.Fields {
	return logrus.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	}
}
