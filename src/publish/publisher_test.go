package publish

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ci-build-watcher/src/analytics"
	"ci-build-watcher/src/broker"
	"ci-build-watcher/src/contracts"
	"ci-build-watcher/src/logger"
	"ci-build-watcher/src/store"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestEngine() *analytics.Engine {
	st := store.NewInMemoryStore(store.FallbackRepositories(testNow), store.WithClock(fixedClock))
	return analytics.NewEngine(st, analytics.WithClock(fixedClock))
}

// mockBroker is a mock implementation of the broker.Publisher interface.
type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func (m *mockBroker) Close() error {
	return m.Called().Error(0)
}

func TestPublisher_PublishesThreeRecords(t *testing.T) {
	b := broker.NewInMemoryBroker()
	p := NewPublisher(newTestEngine(), b, "ci_build_health", logger.NewSilentLogger())
	p.now = fixedClock

	require.NoError(t, p.Publish(context.Background(), DefaultOptions()))

	msgs := b.MessagesFor("ci_build_health")
	require.Len(t, msgs, 3)

	byKey := map[string]Record{}
	var keys []string
	for _, m := range msgs {
		var rec Record
		require.NoError(t, json.Unmarshal(m.Value, &rec))
		assert.Equal(t, m.Key, rec.Kind)
		assert.True(t, rec.GeneratedAt.Equal(testNow))
		byKey[m.Key] = rec
		keys = append(keys, m.Key)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{KindFailed, KindFlaky, KindOverview}, keys)

	var overview analytics.Overview
	require.NoError(t, json.Unmarshal(byKey[KindOverview].Report, &overview))
	assert.Equal(t, 7, overview.TotalRepositories)
	assert.Equal(t, 4, overview.FailedBuilds)
	assert.Equal(t, 3, overview.StaleRepositories)
	assert.Equal(t, analytics.DefaultStaleDays, byKey[KindOverview].Days)

	var flaky []analytics.FlakyRepo
	require.NoError(t, json.Unmarshal(byKey[KindFlaky].Report, &flaky))
	require.Len(t, flaky, 2)
	assert.Equal(t, "UserPortal", flaky[0].Repository)

	var failed []contracts.Build
	require.NoError(t, json.Unmarshal(byKey[KindFailed].Report, &failed))
	assert.Len(t, failed, 4)
	assert.Equal(t, analytics.DefaultFailedBuildsDays, byKey[KindFailed].Days)
}

func TestPublisher_EmptyReportsStillPublished(t *testing.T) {
	st := store.NewInMemoryStore(nil, store.WithClock(fixedClock))
	engine := analytics.NewEngine(st, analytics.WithClock(fixedClock))
	b := broker.NewInMemoryBroker()

	p := NewPublisher(engine, b, "reports", logger.NewSilentLogger())
	require.NoError(t, p.Publish(context.Background(), DefaultOptions()))

	msgs := b.Messages()
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		var rec Record
		require.NoError(t, json.Unmarshal(m.Value, &rec))
		// Empty lists encode as [] rather than null.
		if rec.Kind != KindOverview {
			assert.JSONEq(t, "[]", string(rec.Report), rec.Kind)
		}
	}
}

func TestPublisher_ReturnsPublishError(t *testing.T) {
	b := new(mockBroker)
	b.On("Publish", mock.Anything, "reports", KindOverview, mock.Anything).Return(nil)
	b.On("Publish", mock.Anything, "reports", KindFlaky, mock.Anything).Return(errors.New("broker unavailable"))
	b.On("Publish", mock.Anything, "reports", KindFailed, mock.Anything).Return(nil)

	p := NewPublisher(newTestEngine(), b, "reports", logger.NewSilentLogger())

	err := p.Publish(context.Background(), DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish flaky report")
	assert.Contains(t, err.Error(), "broker unavailable")
}

func TestPublisher_CustomWindows(t *testing.T) {
	b := broker.NewInMemoryBroker()
	p := NewPublisher(newTestEngine(), b, "reports", logger.NewSilentLogger())

	opts := Options{StaleDays: 30, FailedDays: 8, FlakyDays: 2}
	require.NoError(t, p.Publish(context.Background(), opts))

	for _, m := range b.Messages() {
		var rec Record
		require.NoError(t, json.Unmarshal(m.Value, &rec))

		switch rec.Kind {
		case KindOverview:
			var overview analytics.Overview
			require.NoError(t, json.Unmarshal(rec.Report, &overview))
			assert.Equal(t, 0, overview.StaleRepositories)
			assert.Equal(t, 30, rec.Days)
		case KindFailed:
			var failed []contracts.Build
			require.NoError(t, json.Unmarshal(rec.Report, &failed))
			require.Len(t, failed, 1)
			assert.Equal(t, 87, failed[0].Number)
		case KindFlaky:
			assert.JSONEq(t, "[]", string(rec.Report))
		}
	}
}
