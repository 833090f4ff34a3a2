// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"paper-grading-be/internal/entity"
	"paper-grading-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	// autoRefreshInterval is a fixed countdown per cycle, re-armed after
	// each reload regardless of how long the reload itself took.
	autoRefreshInterval = 30 * time.Second

	// maxAutoRefreshes bounds the watch at 10 minutes per attempt. The
	// attempt stays visible through GetAttempt after that.
	maxAutoRefreshes = 20
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	uploads   IUploadService
	wkLogger  logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uploads IUploadService,
	wkLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		uploads:   uploads,
		wkLogger:  wkLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload SubmissionCreatedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.wkLogger.Error("refresh-worker", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.wkLogger.Info("refresh-worker", "watching grading result", map[string]interface{}{
		"attempt_id": payload.AttemptId,
		"record_id":  payload.RecordId,
	})

	// Each attempt gets its own watch loop; the in-memory channel is not
	// redelivered, so ack before the long wait.
	msg.Ack()
	go cs.watch(ctx, payload.AttemptId)
}

func (cs *consumerService) watch(ctx context.Context, attemptID string) {
	timer := time.NewTimer(autoRefreshInterval)
	defer timer.Stop()

	for i := 0; i < maxAutoRefreshes; i++ {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		attempt, err := cs.uploads.Refresh(ctx, attemptID)
		if err != nil {
			// Attempt expired or was removed; nothing left to watch.
			cs.wkLogger.Info("refresh-worker", "stopping watch", map[string]interface{}{
				"attempt_id": attemptID,
				"error":      err.Error(),
			})
			return
		}
		if attempt.State != entity.AttemptStateAwaitingResult {
			cs.wkLogger.Info("refresh-worker", "watch finished", map[string]interface{}{
				"attempt_id": attemptID,
				"state":      string(attempt.State),
			})
			return
		}

		timer.Reset(autoRefreshInterval)
	}

	cs.wkLogger.Warn("refresh-worker", "giving up auto-refresh", map[string]interface{}{
		"attempt_id": attemptID,
		"cycles":     maxAutoRefreshes,
	})
}
