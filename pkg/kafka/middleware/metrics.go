package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"lodgebook/pkg/kafka"
)

// Metrics counts consumed messages. Counters are atomic so the middleware can
// run on the consumer goroutine while Snapshot is read elsewhere.
type Metrics struct {
	consumed      atomic.Int64
	failed        atomic.Int64
	durationNanos atomic.Int64
}

type Snapshot struct {
	Consumed    int64
	Failed      int64
	AvgDuration time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Middleware records the outcome of each handled message.
func (m *Metrics) Middleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()

		err := next(ctx, msg)

		m.durationNanos.Add(int64(time.Since(start)))
		if err != nil {
			m.failed.Add(1)
			return err
		}
		m.consumed.Add(1)
		return nil
	}
}

func (m *Metrics) Snapshot() Snapshot {
	consumed := m.consumed.Load()
	failed := m.failed.Load()

	var avg time.Duration
	if total := consumed + failed; total > 0 {
		avg = time.Duration(m.durationNanos.Load() / total)
	}

	return Snapshot{
		Consumed:    consumed,
		Failed:      failed,
		AvgDuration: avg,
	}
}
