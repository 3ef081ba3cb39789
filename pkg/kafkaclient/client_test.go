package kafkaclient

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus/hooks/test"
)

// mockReader simulates the kafka-go Reader for unit testing.
type mockReader struct {
	messages chan kafka.Message

	mu        sync.Mutex
	committed []kafka.Message
	closed    bool
}

func newMockReader(count int) *mockReader {
	mr := &mockReader{messages: make(chan kafka.Message, count)}
	for i := 0; i < count; i++ {
		mr.messages <- kafka.Message{
			Topic:  "geofence-events",
			Offset: int64(i),
			Value:  []byte(fmt.Sprintf("event-%d", i)),
		}
	}
	close(mr.messages)
	return mr
}

// ReadMessage returns io.EOF once all messages are drained, like a closed
// kafka.Reader.
func (mr *mockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case msg, ok := <-mr.messages:
		if !ok {
			return kafka.Message{}, io.EOF
		}
		return msg, nil
	}
}

func (mr *mockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if mr.closed {
		return fmt.Errorf("kafka: reader closed")
	}
	mr.committed = append(mr.committed, msgs...)
	return nil
}

func (mr *mockReader) Close() error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.closed = true
	return nil
}

func TestConsumer_ReadsAndCommits(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	logger, _ := test.NewNullLogger()
	reader := newMockReader(3)
	consumer := newConsumer(reader, logger)
	consumer.StartConsuming(ctx)

	received := 0
	for msg := range consumer.Messages() {
		if want := fmt.Sprintf("event-%d", received); string(msg.Value) != want {
			t.Errorf("message %d = %q; want %q", received, msg.Value, want)
		}
		if err := consumer.CommitOffset(ctx, msg); err != nil {
			t.Errorf("CommitOffset() failed: %v", err)
		}
		received++
	}

	if received != 3 {
		t.Fatalf("received %d messages; want 3", received)
	}

	consumer.Stop()
	if len(reader.committed) != 3 {
		t.Errorf("committed %d messages; want 3", len(reader.committed))
	}
	if !reader.closed {
		t.Error("expected reader to be closed after Stop")
	}
}

// blockingReader never returns a message until its context is canceled.
type blockingReader struct{ closed bool }

func (b *blockingReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}
func (b *blockingReader) CommitMessages(context.Context, ...kafka.Message) error { return nil }

func (b *blockingReader) Close() error {
	b.closed = true
	return nil
}

func TestConsumer_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	logger, _ := test.NewNullLogger()
	reader := &blockingReader{}
	consumer := newConsumer(reader, logger)
	consumer.StartConsuming(ctx)

	cancel()
	select {
	case _, ok := <-consumer.Messages():
		if ok {
			t.Fatal("unexpected message after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the message channel to close")
	}

	consumer.Stop()
	consumer.Stop()
	if !reader.closed {
		t.Error("expected reader to be closed after Stop")
	}
}

func TestConsumer_StopWithLiveContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	reader := &blockingReader{}
	consumer := newConsumer(reader, logger)
	consumer.StartConsuming(context.Background())

	stopped := make(chan struct{})
	go func() {
		consumer.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return while the read loop was blocked")
	}
	if !reader.closed {
		t.Error("expected reader to be closed after Stop")
	}
	if _, ok := <-consumer.Messages(); ok {
		t.Error("expected the message channel to be closed")
	}
}

type mockWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	p := &Publisher{writer: w}

	if err := p.Publish(context.Background(), "alice", map[string]int{"index": 1}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages; want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "alice" || string(w.msgs[0].Value) != `{"index":1}` {
		t.Errorf("unexpected message %q=%q", w.msgs[0].Key, w.msgs[0].Value)
	}

	if err := p.Publish(context.Background(), "alice", make(chan int)); err == nil {
		t.Error("expected marshal error for a channel value")
	}

	w.err = fmt.Errorf("broker unavailable")
	if err := p.Publish(context.Background(), "alice", 1); err == nil {
		t.Error("expected write error to be returned")
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed = %v", err, w.closed)
	}
}
