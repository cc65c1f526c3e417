package consumer

import (
	"log/slog"
	"time"

	"github.com/hatsunemiku3939/docschema/policy"
)

// Options tunes a Consumer.
type Options struct {
	// MaxMessages is the maximum number of messages retrieved per ReceiveMessage call.
	MaxMessages int32
	// WaitTimeSeconds enables SQS long polling.
	WaitTimeSeconds int32
	// DeleteTimeout bounds each DeleteMessage call.
	DeleteTimeout time.Duration
	// ProcessingTimeout bounds the handling of a single message. It should be
	// shorter than the process's graceful shutdown period.
	ProcessingTimeout time.Duration
	// RetryDelay is the pause after a failed ReceiveMessage call.
	RetryDelay time.Duration
	// Concurrency bounds the number of messages of a batch handled at once.
	Concurrency int
	// ReportQueueURL receives the error report of every rejected document. Empty disables publishing.
	ReportQueueURL string
	// Policy decides whether a handled message is deleted.
	Policy policy.Policy
	Logger *slog.Logger
}

// DefaultOptions returns the settings used when no Option is given.
func DefaultOptions() Options {
	return Options{
		MaxMessages:       5,
		WaitTimeSeconds:   10,
		DeleteTimeout:     5 * time.Second,
		ProcessingTimeout: 30 * time.Second,
		RetryDelay:        2 * time.Second,
		Concurrency:       5,
		Policy:            policy.ImmediateDeletePolicy{},
		Logger:            slog.New(slog.DiscardHandler),
	}
}

// Option configures a Consumer at construction time.
type Option func(*Options)

// WithReportQueue publishes error reports to url.
func WithReportQueue(url string) Option {
	return func(o *Options) { o.ReportQueueURL = url }
}

// WithPolicy sets the delete policy.
func WithPolicy(p policy.Policy) Option {
	return func(o *Options) { o.Policy = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithConcurrency bounds the number of messages handled at once.
func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

// WithMaxMessages sets the batch size of each ReceiveMessage call (1 to 10).
func WithMaxMessages(n int32) Option {
	return func(o *Options) { o.MaxMessages = n }
}

// WithWaitTime sets the long polling wait time.
func WithWaitTime(seconds int32) Option {
	return func(o *Options) { o.WaitTimeSeconds = seconds }
}

// WithRetryDelay sets the pause after a failed ReceiveMessage call.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

// WithTimeouts sets the per-message processing and delete timeouts.
func WithTimeouts(processing, deletion time.Duration) Option {
	return func(o *Options) {
		o.ProcessingTimeout = processing
		o.DeleteTimeout = deletion
	}
}

func (o *Options) normalize() {
	def := DefaultOptions()
	if o.MaxMessages < 1 || o.MaxMessages > 10 {
		o.MaxMessages = def.MaxMessages
	}
	if o.WaitTimeSeconds < 0 || o.WaitTimeSeconds > 20 {
		o.WaitTimeSeconds = def.WaitTimeSeconds
	}
	if o.DeleteTimeout <= 0 {
		o.DeleteTimeout = def.DeleteTimeout
	}
	if o.ProcessingTimeout <= 0 {
		o.ProcessingTimeout = def.ProcessingTimeout
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = def.RetryDelay
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Policy == nil {
		o.Policy = def.Policy
	}
	if o.Logger == nil {
		o.Logger = def.Logger
	}
}
