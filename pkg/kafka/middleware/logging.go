package kafka_middleware

import (
	"context"
	"time"

	"lodgebook/pkg/kafka"
	"lodgebook/pkg/logger"
)

// Logging records one line per consumed message with the outcome and timing.
func Logging(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()

		err := next(ctx, msg)

		eventType, _ := msg.GetHeader(kafka.HeaderEventType)
		eventID, _ := msg.GetHeader(kafka.HeaderEventID)

		if err != nil {
			log.Error("Message processing failed",
				"key", msg.Key,
				"event_type", eventType,
				"event_id", eventID,
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}

		log.Info("Message processed",
			"key", msg.Key,
			"event_type", eventType,
			"event_id", eventID,
			"duration", time.Since(start),
		)
		return nil
	}
}
