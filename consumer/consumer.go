// Package consumer validates documents arriving on an SQS queue.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/hatsunemiku3939/docschema"
	dlog "github.com/hatsunemiku3939/docschema/internal/log"
	"github.com/hatsunemiku3939/docschema/pkg/report"
	"github.com/hatsunemiku3939/docschema/policy"
)

// SQSClient defines the SQS operations needed by the Consumer.
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Validator validates a raw document. *docschema.Validator implements it.
type Validator interface {
	Validate(doc []byte) error
}

// ReportMessage is the body published to the report queue for a rejected document.
type ReportMessage struct {
	ReportID  string        `json:"report_id"`
	MessageID string        `json:"message_id"`
	Schema    string        `json:"schema"`
	Kind      string        `json:"kind"`
	Errors    report.Report `json:"errors"`
}

// Outcome describes how a single message was handled.
type Outcome struct {
	MessageID string
	Kind      docschema.FailureKind
	Result    policy.Result
	Deleted   bool
}

// Consumer encapsulates the SQS polling and document validation logic.
type Consumer struct {
	client    SQSClient
	queueURL  string
	validator Validator
	opts      Options
}

// New creates a consumer for queueURL.
func New(client SQSClient, queueURL string, v Validator, opts ...Option) *Consumer {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.normalize()
	o.Logger = dlog.WithComponent(o.Logger, "consumer")

	return &Consumer{
		client:    client,
		queueURL:  queueURL,
		validator: v,
		opts:      o,
	}
}

// Start polls the queue until ctx is cancelled. Messages of a batch are
// handled concurrently; Start returns once the last batch is finished.
func (c *Consumer) Start(ctx context.Context) {
	log := c.opts.Logger
	log.Info("consumer started", dlog.QueueKey, c.queueURL)

	for {
		if ctx.Err() != nil {
			log.Info("shutdown initiated, no longer polling")
			break
		}

		output, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: c.opts.MaxMessages,
			WaitTimeSeconds:     c.opts.WaitTimeSeconds,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping poller")
				break
			}
			log.Error("failed to receive messages", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(c.opts.RetryDelay):
			}
			continue
		}

		if len(output.Messages) == 0 {
			continue
		}
		log.Debug("received messages", "count", len(output.Messages))
		c.processBatch(output.Messages)
	}

	log.Info("graceful shutdown complete")
}

func (c *Consumer) processBatch(msgs []types.Message) {
	p := pool.New().WithMaxGoroutines(c.opts.Concurrency)
	for i := range msgs {
		m := &msgs[i]
		p.Go(func() {
			// Messages are finished even after shutdown begins.
			msgCtx, cancel := context.WithTimeout(context.Background(), c.opts.ProcessingTimeout)
			defer cancel()
			c.processMessage(msgCtx, m)
		})
	}
	p.Wait()
}

// processMessage validates and, depending on the policy, deletes a single message.
func (c *Consumer) processMessage(ctx context.Context, msg *types.Message) Outcome {
	id := aws.ToString(msg.MessageId)
	log := c.opts.Logger.With(dlog.MessageIDKey, id)
	out := Outcome{MessageID: id}

	if msg.Body == nil {
		log.Error("received message with empty body")
		return out
	}

	verr := c.validator.Validate([]byte(*msg.Body))
	out.Kind = docschema.KindOf(verr)
	validationsTotal.WithLabelValues(out.Kind.String()).Inc()

	var publishErr error
	var derr *docschema.Error
	switch {
	case verr == nil:
		log.Info("document valid")
	case errors.As(verr, &derr) && derr.Kind == docschema.FailSchemaViolation:
		r := derr.Report()
		reportPaths.Observe(float64(r.Len()))
		if r.Truncated() {
			log.Warn("failure tree exceeded the node limit, report is incomplete")
		}
		log.Warn("document rejected",
			dlog.SchemaKey, derr.Identifier,
			dlog.KindKey, out.Kind.String(),
			dlog.PathsKey, r.Paths(),
		)
		publishErr = c.publish(ctx, ReportMessage{
			ReportID:  uuid.NewString(),
			MessageID: id,
			Schema:    derr.Identifier,
			Kind:      out.Kind.String(),
			Errors:    r,
		})
	default:
		log.Warn("document rejected", dlog.KindKey, out.Kind.String(), "error", verr)
	}

	out.Result = c.opts.Policy.Decide(ctx, out.Kind, verr, policy.Result{ShouldDelete: true})
	if publishErr != nil {
		publishErrors.Inc()
		log.Error("failed to publish report", "error", publishErr)
		out.Result.ShouldDelete = false
		out.Result.Error = errors.Join(out.Result.Error, publishErr)
	}

	if !out.Result.ShouldDelete {
		log.Info("leaving message for retry, visibility timeout will expire")
		return out
	}

	deleteCtx, cancel := context.WithTimeout(context.Background(), c.opts.DeleteTimeout)
	defer cancel()
	if _, err := c.client.DeleteMessage(deleteCtx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		deleteErrors.Inc()
		log.Error("failed to delete message", "error", err)
		return out
	}
	out.Deleted = true
	log.Debug("deleted message")
	return out
}

func (c *Consumer) publish(ctx context.Context, m ReportMessage) error {
	if c.opts.ReportQueueURL == "" {
		return nil
	}
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.opts.ReportQueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"kind":      {DataType: aws.String("String"), StringValue: aws.String(m.Kind)},
			"report_id": {DataType: aws.String("String"), StringValue: aws.String(m.ReportID)},
		},
	})
	if err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}
