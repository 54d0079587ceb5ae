package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/Albertoimpl/animal-rescue/internal/logger"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsPublisher sends one message per event to a queue.
type sqsPublisher struct {
	id       string
	queueURL string
	fifo     bool
	api      sqsAPI
	log      logger.Logger
}

func newSQSPublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.AWSAccess)
	if err != nil {
		return nil, err
	}
	endpoint := endpointOverride(cfg.SQS.AWSAccess)
	api := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if endpoint != nil {
			o.BaseEndpoint = endpoint
		}
	})
	return &sqsPublisher{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		fifo:     isFIFO(cfg.SQS.QueueURL),
		api:      api,
		log:      log,
	}, nil
}

func (s *sqsPublisher) ID() string   { return s.id }
func (s *sqsPublisher) Type() string { return TypeSQS }

func (s *sqsPublisher) Publish(ctx context.Context, evt Event) error {
	input, err := s.message(evt)
	if err != nil {
		return err
	}

	out, err := s.api.SendMessage(ctx, input)
	if err != nil {
		s.log.ErrorObj("sqs send failed", "publisher_error", map[string]any{
			"publisher_id": s.id,
			"event_id":     evt.ID(),
			"error":        err.Error(),
		})
		return fmt.Errorf("sqs send message: %w", err)
	}
	s.log.DebugObj("sqs message sent", "publisher_delivery", map[string]any{
		"publisher_id": s.id,
		"event_id":     evt.ID(),
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}

// message builds the SendMessage input. FIFO queues keep each shelter's
// events in order and drop duplicates of the same event id.
func (s *sqsPublisher) message(evt Event) (*sqs.SendMessageInput, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", evt.ID(), err)
	}

	in := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: make(map[string]types.MessageAttributeValue),
	}
	for k, v := range evt.attributes() {
		in.MessageAttributes[k] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	}
	if s.fifo {
		in.MessageGroupId = aws.String(evt.ShelterID)
		in.MessageDeduplicationId = aws.String(dedupeID(evt))
	}
	return in, nil
}
