package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/hatsunemiku3939/docschema"
	"github.com/hatsunemiku3939/docschema/consumer"
	"github.com/hatsunemiku3939/docschema/policy"
)

// ConsumeOptions controls the consume command.
type ConsumeOptions struct {
	QueueURL       string
	ReportQueueURL string
	// Redrive leaves rejected documents on the queue for its redrive policy.
	Redrive     bool
	Concurrency int
}

// ErrMissingQueueURL is returned when no source queue is configured.
var ErrMissingQueueURL = errors.New("queue URL is required (--queue-url or SQS_QUEUE_URL)")

// ConsumerOptions maps opts onto consumer options.
func ConsumerOptions(opts ConsumeOptions, logger *slog.Logger) []consumer.Option {
	var p policy.Policy = policy.ImmediateDeletePolicy{}
	if opts.Redrive {
		p = policy.SQSRedrivePolicy{}
	}
	out := []consumer.Option{
		consumer.WithPolicy(p),
		consumer.WithLogger(logger),
		consumer.WithReportQueue(opts.ReportQueueURL),
	}
	if opts.Concurrency > 0 {
		out = append(out, consumer.WithConcurrency(opts.Concurrency))
	}
	return out
}

// Consume validates documents from an SQS queue until ctx is cancelled.
// AWS credentials and region come from the default configuration chain.
func Consume(ctx context.Context, v *docschema.Validator, opts ConsumeOptions, logger *slog.Logger) error {
	if opts.QueueURL == "" {
		return ErrMissingQueueURL
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	c := consumer.New(sqs.NewFromConfig(cfg), opts.QueueURL, v, ConsumerOptions(opts, logger)...)
	c.Start(ctx)
	return nil
}
