package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/hatsunemiku3939/docschema"
	"github.com/hatsunemiku3939/docschema/consumer"
	"github.com/hatsunemiku3939/docschema/policy"
)

// Environment:
//   - AWS_ENDPOINT_URL: endpoint of the SQS emulator (required)
//   - SQS_QUEUE_URL: queue of documents (required)
//   - REPORT_QUEUE_URL: queue receiving error reports (optional)
//   - E2E_REDRIVE=1: keep rejected documents for the redrive policy
//   - E2E_LENIENT=1: accept $schema values with a trailing '#' or '/'
func main() {
	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	endpoint := os.Getenv("AWS_ENDPOINT_URL")
	if endpoint == "" {
		log.Fatal("AWS_ENDPOINT_URL environment variable is not set.")
	}
	queueURL := os.Getenv("SQS_QUEUE_URL")
	if queueURL == "" {
		log.Fatal("SQS_QUEUE_URL environment variable is not set.")
	}

	cfg, err := config.LoadDefaultConfig(appCtx)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		o.BaseEndpoint = &endpoint
	})

	var vopts []docschema.Option
	if os.Getenv("E2E_LENIENT") == "1" {
		vopts = append(vopts, docschema.WithRoutingPolicy(docschema.TrimmedMatchPolicy{}))
	}
	v, err := docschema.New(vopts...)
	if err != nil {
		log.Fatalf("Could not initialize validator: %v", err)
	}

	copts := []consumer.Option{consumer.WithReportQueue(os.Getenv("REPORT_QUEUE_URL"))}
	if os.Getenv("E2E_REDRIVE") == "1" {
		copts = append(copts, consumer.WithPolicy(policy.SQSRedrivePolicy{}))
	}

	consumer.New(client, queueURL, e2eValidator{v}, copts...).Start(appCtx)
	log.Println("Application has shut down.")
}

// e2eValidator logs a marker line per document so the test script can follow progress.
type e2eValidator struct{ v *docschema.Validator }

func (e e2eValidator) Validate(doc []byte) error {
	err := e.v.Validate(doc)
	if err != nil {
		log.Printf("E2E_REJECTED kind=%s", docschema.KindOf(err))
		return err
	}
	log.Printf("E2E_VALID")
	return nil
}
