package ingest

import (
	"context"
	"errors"

	"github.com/Baltic-RCC/RAO/internal/broker"
	"github.com/Baltic-RCC/RAO/internal/models"
	"github.com/Baltic-RCC/RAO/internal/telemetry/logging"
)

// Handler processes one delivered message, returning an error classified the
// same way the orchestrator classifies them (spec §7): errors wrapping
// ErrTransientIO/ErrTokenExpired requeue, everything else dead-letters.
type Handler func(ctx context.Context, msg broker.Message) error

// Run consumes from b until ctx is cancelled, dispatching each message to
// handle and acking/nacking per its outcome. This is the same single-message-
// at-a-time cooperative loop the orchestrator runs for C6, reused here for
// the input-retriever and remedial-action-schedules workers (spec §5).
func Run(ctx context.Context, b broker.Broker, logger logging.Logger, handle Handler) error {
	deliveries, err := b.Consume(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := handle(ctx, msg); err != nil {
				if isTransient(err) {
					logger.WarnCtx(ctx, "transient failure, requeueing", "error", err.Error())
					if nackErr := b.NackRequeue(msg); nackErr != nil {
						logger.ErrorCtx(ctx, "nack-requeue failed", "error", nackErr.Error())
					}
					continue
				}
				logger.ErrorCtx(ctx, "message dead-lettered", "error", err.Error())
				if nackErr := b.NackDiscard(msg); nackErr != nil {
					logger.ErrorCtx(ctx, "nack-discard failed", "error", nackErr.Error())
				}
				continue
			}
			if ackErr := b.Ack(msg); ackErr != nil {
				logger.ErrorCtx(ctx, "ack failed", "error", ackErr.Error())
			}
		}
	}
}

func isTransient(err error) bool {
	return errors.Is(err, models.ErrTransientIO) || errors.Is(err, models.ErrTokenExpired)
}
