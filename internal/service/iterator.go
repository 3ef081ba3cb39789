// Package service connects the Kafka consumer to the rest of the application.
// Its Iterator decodes raw messages into typed values and hands each one out
// together with a way to commit it.
package service

import (
	"context"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Iterator consumes messages from a MessageIterator, decodes each payload with
// a DecodeFunc and yields the decoded values on a channel.
//
// The Iterator does not manage the lifecycle of the underlying message source;
// callers should start/stop their consumer outside.
type Iterator[T any] struct {
	msgIterator MessageIterator
	decode      DecodeFunc[T]
	log         logrus.FieldLogger
}

func NewIterator[T any](iterator MessageIterator, decode DecodeFunc[T], log logrus.FieldLogger) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		decode:      decode,
		log:         log,
	}
}

// Delivery is a decoded value still waiting for its offset to be committed.
type Delivery[T any] struct {
	Value T

	msg    kafka.Message
	source MessageIterator
}

// Commit marks the underlying message as processed. Call it once the value
// has been fully handled; a delivery that is never committed is read again
// after a restart.
func (d *Delivery[T]) Commit(ctx context.Context) error {
	return d.source.CommitOffset(ctx, d.msg)
}

// Objects starts a goroutine that decodes every message and emits it as a
// Delivery. Committing is left to the receiver. Messages that fail to decode
// are logged, committed and skipped so they are not redelivered. The output
// channel is closed when the underlying Messages() channel is closed or ctx
// is done.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *Delivery[T] {
	out := make(chan *Delivery[T])
	go func() {
		defer close(out)

		for {
			var msg kafka.Message
			select {
			case m, ok := <-it.msgIterator.Messages():
				if !ok {
					return
				}
				msg = m
			case <-ctx.Done():
				return
			}

			value, err := it.decode(msg.Value)
			if err != nil {
				it.log.WithError(err).WithField("offset", msg.Offset).Warn("Skipping undecodable message")
				if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
					it.log.WithError(err).Error("Failed to commit offset")
				}
				continue
			}

			select {
			case out <- &Delivery[T]{Value: value, msg: msg, source: it.msgIterator}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
