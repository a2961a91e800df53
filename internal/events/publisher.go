// internal/events/publisher.go

// Package events publishes match notifications fire-and-forget. The publish
// is never awaited by the request path and failures are logged and dropped.
package events

import (
	"context"
	"encoding/json"
	"time"

	stderrors "bamaai-connect/internal/common/errors"
	"bamaai-connect/internal/common/logger"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// MatchEvent describes a completed high-score match.
type MatchEvent struct {
	BusinessID string    `json:"businessId"`
	Kind       string    `json:"kind"`
	MatchScore int       `json:"matchScore"`
	SessionID  string    `json:"sessionId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher is the outbound match-event capability.
type Publisher interface {
	MatchCompleted(event MatchEvent)
}

// SNSPublisher publishes match events to an SNS topic.
type SNSPublisher struct {
	client   *sns.Client
	topicARN string
	logger   logger.Logger
}

func NewSNSPublisher(ctx context.Context, region, topicARN string, log logger.Logger) (*SNSPublisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSPublisher{
		client:   sns.NewFromConfig(cfg),
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"component": "events"}),
	}, nil
}

// MatchCompleted publishes asynchronously with its own short deadline.
func (p *SNSPublisher) MatchCompleted(event MatchEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			p.logger.Warn("event encode failed", map[string]interface{}{"error": err.Error()})
			return
		}

		msg := string(payload)
		_, err = p.client.Publish(ctx, &sns.PublishInput{
			TopicArn: &p.topicARN,
			Message:  &msg,
		})
		if err != nil {
			stdErr := stderrors.NewEventPublishFailedError(err)
			p.logger.Warn(stdErr.Message, map[string]interface{}{
				"code":       string(stdErr.Code),
				"businessId": event.BusinessID,
				"error":      err.Error(),
			})
		}
	}()
}

// NoopPublisher drops events; used when events are not configured.
type NoopPublisher struct{}

func (NoopPublisher) MatchCompleted(MatchEvent) {}
