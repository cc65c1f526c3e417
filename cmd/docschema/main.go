package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hatsunemiku3939/docschema"
	"github.com/hatsunemiku3939/docschema/internal/cli"
	"github.com/hatsunemiku3939/docschema/internal/console"
	dlog "github.com/hatsunemiku3939/docschema/internal/log"
)

// Build-time variables
var version = "dev"

// errRejected signals that at least one document failed validation.
var errRejected = errors.New("documents rejected")

// Global flags
var (
	verbose bool
	engine  string
	lenient bool
)

func newLogger() *slog.Logger {
	cfg := dlog.FromEnv()
	if verbose {
		cfg.Level = "debug"
	}
	return dlog.New(cfg)
}

func newValidator(logger *slog.Logger) (*docschema.Validator, error) {
	opts := []docschema.Option{docschema.WithLogger(logger)}
	switch engine {
	case "", "tree":
	case "flat":
		opts = append(opts, docschema.WithEngine(docschema.EngineFlat))
	default:
		return nil, fmt.Errorf("invalid engine value '%s'. Must be 'tree' or 'flat'", engine)
	}
	if lenient {
		opts = append(opts, docschema.WithRoutingPolicy(docschema.TrimmedMatchPolicy{}))
	}
	return docschema.New(opts...)
}

var rootCmd = &cobra.Command{
	Use:           "docschema",
	Short:         "Validate business documents against their JSON Schemas",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func newValidateCmd() *cobra.Command {
	var (
		opts   cli.ValidateOptions
		schema string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate JSON or YAML documents and print an error report per file",
		Long: `Validate JSON or YAML documents and print an error report per file.

The root schema is selected by each document's $schema field unless --schema is given.

Examples:
  docschema validate invoice.json
  docschema validate --schema order order.yaml
  docschema validate --json docs/*.json
  docschema validate --watch invoice.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if schema != "" {
				kind, err := docschema.ParseSchemaKind(schema)
				if err != nil {
					return err
				}
				opts.Kind = kind
			}

			logger := newLogger()
			v, err := newValidator(logger)
			if err != nil {
				return err
			}

			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return cli.Watch(ctx, v, args, opts, cmd.OutOrStdout(), logger)
			}

			results := cli.ValidateFiles(v, args, opts)
			failed, err := cli.PrintResults(cmd.OutOrStdout(), results, opts)
			if err != nil {
				return err
			}
			if failed > 0 {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "", "Validate against this root schema (envelope, invoice, order) instead of $schema")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "Print the raw failure tree below each report")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Revalidate files when they change")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "c", cli.DefaultConcurrency, "Number of files validated at once")
	return cmd
}

func newSchemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List supported root schemas and bundled schema files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newValidator(newLogger())
			if err != nil {
				return err
			}
			return cli.ListSchemas(cmd.OutOrStdout(), v)
		},
	}
}

func newConsumeCmd() *cobra.Command {
	var opts cli.ConsumeOptions
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Validate documents arriving on an SQS queue",
		Long: `Validate documents arriving on an SQS queue.

Valid and permanently invalid documents are deleted. With --redrive rejected
documents stay on the queue so its redrive policy moves them to a dead-letter
queue. Error reports are published to --report-queue-url when set.

AWS credentials and region are read from the standard AWS environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.QueueURL == "" {
				opts.QueueURL = os.Getenv("SQS_QUEUE_URL")
			}
			logger := newLogger()
			v, err := newValidator(logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return cli.Consume(ctx, v, opts, logger)
		},
	}
	cmd.Flags().StringVar(&opts.QueueURL, "queue-url", "", "URL of the queue to consume (default $SQS_QUEUE_URL)")
	cmd.Flags().StringVar(&opts.ReportQueueURL, "report-queue-url", "", "URL of the queue receiving error reports")
	cmd.Flags().BoolVar(&opts.Redrive, "redrive", false, "Leave rejected documents for the queue's redrive policy")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "c", 0, "Number of messages handled at once (default 5)")
	return cmd
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&engine, "engine", "tree", "Schema engine: tree or flat")
	rootCmd.PersistentFlags().BoolVar(&lenient, "lenient", false, "Accept $schema values with a trailing '#' or '/' and surrounding whitespace")

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newSchemasCmd())
	rootCmd.AddCommand(newConsumeCmd())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		}
		os.Exit(1)
	}
}
