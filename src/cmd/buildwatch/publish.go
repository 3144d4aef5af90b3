package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ci-build-watcher/src/broker"
	"ci-build-watcher/src/publish"
)

const defaultPublishTimeout = 30 * time.Second

func newPublishCmd(a *app) *cobra.Command {
	var (
		brokers []string
		topic   string
		dryRun  bool
		timeout time.Duration
		opts    = publish.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the overview, flaky and failed-builds reports to Redpanda",
		Long: `Computes the build health overview, flaky repositories and failed
builds once and publishes each as a JSON record keyed by report kind
(overview, flaky, failed) to a Kafka-compatible topic.

With --dry-run the records are printed instead of sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("brokers") {
				brokers = a.cfg.RedpandaBrokers
			}
			if !cmd.Flags().Changed("topic") {
				topic = a.cfg.ReportTopic
			}
			if !cmd.Flags().Changed("stale-days") {
				opts.StaleDays = a.cfg.StaleDays
			}

			var (
				b        broker.Publisher
				recorder *broker.InMemoryBroker
			)
			if dryRun {
				recorder = broker.NewInMemoryBroker()
				b = recorder
			} else {
				rp, err := broker.NewRedpandaBroker(brokers)
				if err != nil {
					return fmt.Errorf("failed to connect to Redpanda: %w", err)
				}
				a.log.Info("Publishing reports to topic %s via %s", topic, strings.Join(rp.Brokers(), ","))
				b = rp
			}
			defer b.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			if err := publish.NewPublisher(a.engine, b, topic, a.log).Publish(ctx, opts); err != nil {
				return err
			}

			if recorder != nil {
				for _, msg := range recorder.Messages() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", msg.Topic, msg.Key, msg.Value)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&brokers, "brokers", nil, "Redpanda seed brokers (default: redpanda_brokers from config)")
	cmd.Flags().StringVar(&topic, "topic", "", "Report topic (default: report_topic from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print records instead of publishing them")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultPublishTimeout, "Give up when the broker has not acknowledged every report in time")
	cmd.Flags().IntVar(&opts.StaleDays, "stale-days", opts.StaleDays, "Staleness threshold for the overview")
	cmd.Flags().IntVar(&opts.FailedDays, "failed-days", opts.FailedDays, "Window for the failed builds report")
	cmd.Flags().IntVar(&opts.FlakyDays, "flaky-days", opts.FlakyDays, "Window for the flaky repositories report")

	return cmd
}
