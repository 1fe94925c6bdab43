package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"DocumentTonality/internal/domain"
	"DocumentTonality/internal/ports"
)

const (
	sqsMaxMessages = 10
	sqsMaxWait     = 20 * time.Second
)

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, opts ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, opts ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQS reads work items from an Amazon SQS queue.
type SQS struct {
	client   sqsAPI
	queueURL string
}

var _ ports.Queue = (*SQS)(nil)

// NewSQS builds the adapter from an AWS config. A non-empty endpoint points the
// client at a local emulator.
func NewSQS(cfg aws.Config, queueURL, endpoint string) *SQS {
	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &SQS{client: client, queueURL: queueURL}
}

// Receive long-polls for up to maxMessages messages.
func (q *SQS) Receive(ctx context.Context, maxMessages int, wait, visibility time.Duration) ([]domain.QueueMessage, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(clampInt(maxMessages, 1, sqsMaxMessages)),
		WaitTimeSeconds:     int32(min(wait, sqsMaxWait) / time.Second),
		VisibilityTimeout:   int32(visibility / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("sqs receive: %w", err)
	}

	messages := make([]domain.QueueMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, domain.QueueMessage{
			Handle: aws.ToString(m.ReceiptHandle),
			Body:   []byte(aws.ToString(m.Body)),
		})
	}
	return messages, nil
}

// Delete acknowledges a message by its receipt handle.
func (q *SQS) Delete(ctx context.Context, handle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("sqs delete: %w", err)
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
