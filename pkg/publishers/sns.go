package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/Albertoimpl/animal-rescue/internal/logger"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsPublisher broadcasts events on a topic.
type snsPublisher struct {
	id       string
	topicARN string
	fifo     bool
	api      snsAPI
	log      logger.Logger
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.AWSAccess)
	if err != nil {
		return nil, err
	}
	endpoint := endpointOverride(cfg.SNS.AWSAccess)
	api := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != nil {
			o.BaseEndpoint = endpoint
		}
	})
	return &snsPublisher{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		fifo:     isFIFO(cfg.SNS.TopicARN),
		api:      api,
		log:      log,
	}, nil
}

func (s *snsPublisher) ID() string   { return s.id }
func (s *snsPublisher) Type() string { return TypeSNS }

func (s *snsPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", evt.ID(), err)
	}

	in := &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(string(body)),
		MessageAttributes: make(map[string]types.MessageAttributeValue),
	}
	for k, v := range evt.attributes() {
		in.MessageAttributes[k] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	}
	if s.fifo {
		in.MessageGroupId = aws.String(evt.ShelterID)
		in.MessageDeduplicationId = aws.String(dedupeID(evt))
	}

	out, err := s.api.Publish(ctx, in)
	if err != nil {
		s.log.ErrorObj("sns publish failed", "publisher_error", map[string]any{
			"publisher_id": s.id,
			"event_id":     evt.ID(),
			"error":        err.Error(),
		})
		return fmt.Errorf("sns publish: %w", err)
	}
	s.log.DebugObj("sns message published", "publisher_delivery", map[string]any{
		"publisher_id": s.id,
		"event_id":     evt.ID(),
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
