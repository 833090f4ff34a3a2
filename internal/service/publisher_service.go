// FILE: internal/service/publisher_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// SubmissionCreatedMessage is the payload handed to the auto-refresh worker
// once a record exists remotely.
type SubmissionCreatedMessage struct {
	AttemptId string `json:"attempt_id"`
	RecordId  string `json:"record_id"`
}

type IPublisherService interface {
	PublishSubmissionCreated(ctx context.Context, attemptID, recordID string) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishSubmissionCreated(ctx context.Context, attemptID, recordID string) error {
	payload, err := json.Marshal(SubmissionCreatedMessage{
		AttemptId: attemptID,
		RecordId:  recordID,
	})
	if err != nil {
		return fmt.Errorf("marshal submission created message: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return ps.pubSub.Publish(ps.topicName, msg)
}
