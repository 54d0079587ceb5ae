package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/Albertoimpl/animal-rescue/internal/logger"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherPublishSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		api:      client,
		log:      logger.NopLogger{},
	}

	if err := pub.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["shelter_id"]
	if !ok || aws.ToString(attr.StringValue) != "downtown" {
		t.Fatalf("shelter_id attribute missing or wrong: %#v", attr)
	}
	body := aws.ToString(client.input.MessageBody)
	if !strings.Contains(body, `"kind":"adoption_requested"`) || !strings.Contains(body, `"adopterName":"alice"`) {
		t.Fatalf("MessageBody missing event fields: %s", body)
	}
}

func TestSQSPublisherPublishError(t *testing.T) {
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		api:      &fakeSQSClient{err: errors.New("boom")},
		log:      logger.NopLogger{},
	}

	if err := pub.Publish(context.Background(), sampleEvent()); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestSQSPublisherFIFOGroupsByShelter(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://sqs.eu-west-1.amazonaws.com/123/adoptions.fifo",
		fifo:     isFIFO("https://sqs.eu-west-1.amazonaws.com/123/adoptions.fifo"),
		api:      client,
		log:      logger.NopLogger{},
	}

	evt := sampleEvent()
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := aws.ToString(client.input.MessageGroupId); got != "downtown" {
		t.Fatalf("MessageGroupId = %q", got)
	}
	dedupe := aws.ToString(client.input.MessageDeduplicationId)
	if dedupe != dedupeID(evt) || len(dedupe) > 128 {
		t.Fatalf("unexpected MessageDeduplicationId %q", dedupe)
	}
}

func TestSQSPublisherStandardQueueHasNoGroup(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "queue", queueURL: "https://example.com/queue", api: client, log: logger.NopLogger{}}

	if err := pub.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input.MessageGroupId != nil || client.input.MessageDeduplicationId != nil {
		t.Fatalf("standard queues must not carry FIFO fields: %#v", client.input)
	}
}
