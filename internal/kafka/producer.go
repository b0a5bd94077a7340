package kafka

import (
	"context"
	"github.com/ariefcatur/go-bookstore-api/internal/metrics"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

// Producer publishes fire-and-forget: Publish never blocks the caller and
// drops the message when the inbox is full or the producer is closed.
type Producer struct {
	w     *kafka.Writer
	inbox chan kafka.Message
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
	log   *logrus.Entry
}

func NewProducer(brokers []string, topic string, buf int, log *logrus.Logger) *Producer {
	entry := log.WithFields(logrus.Fields{"component": "kafka-producer", "topic": topic})
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
			Async:        true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					metrics.EventPublished("failed")
					entry.WithError(err).WithField("count", len(messages)).Error("write messages")
				}
			},
		},
		inbox: make(chan kafka.Message, buf),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		log:   entry,
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				p.flush()
				return
			case <-p.stop:
				p.flush()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	select {
	case <-p.stop:
		metrics.EventPublished("dropped")
		return
	default:
	}
	select {
	case p.inbox <- m:
		metrics.EventPublished("queued")
	default:
		metrics.EventPublished("dropped")
		p.log.Warn("inbox full, dropping message")
	}
}

// Close stops the loop; buffered messages are flushed before the writer
// closes.
func (p *Producer) Close() { p.once.Do(func() { close(p.stop) }) }

// WaitClosed blocks until the loop has flushed and closed the writer.
func (p *Producer) WaitClosed() { <-p.done }

func (p *Producer) flush() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			if err := p.w.Close(); err != nil {
				p.log.WithError(err).Warn("close writer")
			}
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	// Async writer: this only enqueues, errors arrive in Completion.
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		metrics.EventPublished("failed")
		p.log.WithError(err).Error("enqueue message")
	}
}
