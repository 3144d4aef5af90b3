// Package publish sends build-health reports to a broker topic for
// downstream dashboards.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ci-build-watcher/src/analytics"
	"ci-build-watcher/src/broker"
	"ci-build-watcher/src/logger"
)

// Record keys, one per report kind.
const (
	KindOverview = "overview"
	KindFlaky    = "flaky"
	KindFailed   = "failed"
)

// Record is the JSON envelope published for each report.
type Record struct {
	Kind        string          `json:"kind"`
	GeneratedAt time.Time       `json:"generated_at"`
	Days        int             `json:"days"`
	Report      json.RawMessage `json:"report"`
}

// Options selects the windows the reports are computed over.
type Options struct {
	StaleDays  int
	FailedDays int
	FlakyDays  int
}

// DefaultOptions returns the engine's default windows.
func DefaultOptions() Options {
	return Options{
		StaleDays:  analytics.DefaultStaleDays,
		FailedDays: analytics.DefaultFailedBuildsDays,
		FlakyDays:  analytics.DefaultFlakyDays,
	}
}

// Publisher computes reports and publishes them to a topic.
type Publisher struct {
	engine *analytics.Engine
	broker broker.Publisher
	topic  string
	log    logger.Logger
	now    func() time.Time
}

// NewPublisher creates a publisher writing to topic through b.
func NewPublisher(engine *analytics.Engine, b broker.Publisher, topic string, log logger.Logger) *Publisher {
	return &Publisher{
		engine: engine,
		broker: b,
		topic:  topic,
		log:    log,
		now:    time.Now,
	}
}

// Publish computes the overview, flaky and failed-builds reports and publishes
// one record per report concurrently. It returns the first publish error.
func (p *Publisher) Publish(ctx context.Context, opts Options) error {
	generatedAt := p.now().UTC()

	records, err := p.buildRecords(generatedAt, opts)
	if err != nil {
		return err
	}

	p.log.Info("Publishing %d reports to topic %s", len(records), p.topic)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, rec := range records {
		eg.Go(func() error {
			value, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to marshal %s record: %w", rec.Kind, err)
			}
			if err := p.broker.Publish(egCtx, p.topic, rec.Kind, value); err != nil {
				return fmt.Errorf("failed to publish %s report: %w", rec.Kind, err)
			}
			p.log.Debug("Published %s report (%d bytes)", rec.Kind, len(value))
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		p.log.Error("Report publishing failed: %v", err)
		return err
	}

	p.log.Info("Published %d reports to topic %s", len(records), p.topic)
	return nil
}

func (p *Publisher) buildRecords(generatedAt time.Time, opts Options) ([]Record, error) {
	reports := []struct {
		kind   string
		days   int
		report any
	}{
		{KindOverview, opts.StaleDays, p.engine.BuildHealthOverview(opts.StaleDays)},
		{KindFlaky, opts.FlakyDays, p.engine.FlakyRepos(opts.FlakyDays)},
		{KindFailed, opts.FailedDays, p.engine.FailedBuilds(opts.FailedDays)},
	}

	records := make([]Record, 0, len(reports))
	for _, r := range reports {
		body, err := json.Marshal(r.report)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s report: %w", r.kind, err)
		}
		records = append(records, Record{
			Kind:        r.kind,
			GeneratedAt: generatedAt,
			Days:        r.days,
			Report:      body,
		})
	}
	return records, nil
}
