package kafka

import (
	"context"
	"errors"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

// Handler must return nil only when the message is processed and its offset
// may be committed. A non-nil error redelivers the same message.
type Handler func(ctx context.Context, m kafka.Message) error

// Reader is the part of *kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r        Reader
	workers  int
	log      *logrus.Entry
	retryMin time.Duration
	retryMax time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int, log *logrus.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // synchronous commits
	})
	return newConsumer(r, workers, log.WithFields(logrus.Fields{"component": "kafka-consumer", "topic": topic, "group": group}))
}

func newConsumer(r Reader, workers int, log *logrus.Entry) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:        r,
		workers:  workers,
		log:      log,
		retryMin: 200 * time.Millisecond,
		retryMax: 10 * time.Second,
	}
}

// Start blocks until ctx is cancelled or the reader fails. A partition is
// always served by the same worker, one message at a time, so offsets are
// committed in order and a failing message is retried before the next one
// of its partition. Workers finish their current message before Start
// returns.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	lanes := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan kafka.Message, 4)
		wg.Add(1)
		go func(id int, jobs <-chan kafka.Message) {
			defer wg.Done()
			for m := range jobs {
				if !c.handle(ctx, id, h, m) {
					// ctx selesai, sisa pesan dibaca ulang setelah restart
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil && !errors.Is(err, context.Canceled) {
					c.log.WithError(err).WithField("offset", m.Offset).Error("commit")
				}
			}
		}(i, lanes[i])
	}
	defer wg.Wait()
	defer func() {
		for _, l := range lanes {
			close(l)
		}
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case lanes[m.Partition%c.workers] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// handle retries m with backoff until h succeeds. It reports false when ctx
// ended first.
func (c *Consumer) handle(ctx context.Context, worker int, h Handler, m kafka.Message) bool {
	wait := c.retryMin
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return false
		}
		err := h(ctx, m)
		if err == nil {
			return true
		}
		c.log.WithError(err).WithFields(logrus.Fields{
			"worker":    worker,
			"partition": m.Partition,
			"offset":    m.Offset,
			"attempt":   attempt,
		}).Error("handle message, retrying")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
		if wait *= 2; wait > c.retryMax {
			wait = c.retryMax
		}
	}
}
