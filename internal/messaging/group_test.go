package messaging_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/frwrd/internal/analytics"
	"github.com/serroba/frwrd/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// topicSubscriber records subscriptions and refuses failTopic.
type topicSubscriber struct {
	*mockSubscriber

	failTopic string
	mu        sync.Mutex
	topics    []string
}

func (s *topicSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if topic == s.failTopic {
		return nil, errors.New("no such stream")
	}

	s.mu.Lock()
	s.topics = append(s.topics, topic)
	s.mu.Unlock()

	return s.mockSubscriber.Subscribe(ctx, topic)
}

// tracked counts shutdowns and can fail them.
type tracked struct {
	messaging.Runnable

	shutdowns   int
	shutdownErr error
}

func (t *tracked) Shutdown() error {
	t.shutdowns++
	_ = t.Runnable.Shutdown()

	return t.shutdownErr
}

func analyticsConsumers(sub message.Subscriber) (*tracked, *tracked) {
	accessed := messaging.NewConsumer(sub, analytics.TopicURLAccessed,
		func(context.Context, *analytics.URLAccessedEvent) error { return nil }, zap.NewNop())
	created := messaging.NewConsumer(sub, analytics.TopicURLCreated,
		analytics.HandleURLCreated(zap.NewNop()), zap.NewNop())

	return &tracked{Runnable: accessed}, &tracked{Runnable: created}
}

func TestConsumerGroup_Start(t *testing.T) {
	t.Run("subscribes the click and url-created consumers", func(t *testing.T) {
		sub := &topicSubscriber{mockSubscriber: newMockSubscriber()}
		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		accessed, created := analyticsConsumers(sub)

		group.Add(accessed)
		group.Add(created)

		require.NoError(t, group.Start(context.Background()))
		assert.ElementsMatch(t, []string{analytics.TopicURLAccessed, analytics.TopicURLCreated}, sub.topics)

		require.NoError(t, group.Shutdown())
	})

	t.Run("stops started consumers when a later one fails", func(t *testing.T) {
		sub := &topicSubscriber{mockSubscriber: newMockSubscriber(), failTopic: analytics.TopicURLCreated}
		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		accessed, created := analyticsConsumers(sub)

		group.Add(accessed)
		group.Add(created)

		err := group.Start(context.Background())

		require.ErrorContains(t, err, "no such stream")
		assert.Equal(t, 1, accessed.shutdowns)
		assert.Zero(t, created.shutdowns)
		assert.Equal(t, []string{analytics.TopicURLAccessed}, sub.topics)
	})
}

func TestConsumerGroup_Shutdown(t *testing.T) {
	t.Run("stops every consumer and closes the subscriber", func(t *testing.T) {
		sub := &topicSubscriber{mockSubscriber: newMockSubscriber()}
		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		accessed, created := analyticsConsumers(sub)

		group.Add(accessed)
		group.Add(created)
		require.NoError(t, group.Start(context.Background()))

		require.NoError(t, group.Shutdown())
		assert.Equal(t, 1, accessed.shutdowns)
		assert.Equal(t, 1, created.shutdowns)
		assert.True(t, sub.closed)
	})

	t.Run("reports every failure", func(t *testing.T) {
		sub := &topicSubscriber{mockSubscriber: newMockSubscriber()}
		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		accessed, created := analyticsConsumers(sub)
		accessed.shutdownErr = errors.New("click consumer stuck")
		created.shutdownErr = errors.New("audit consumer stuck")

		group.Add(accessed)
		group.Add(created)
		require.NoError(t, group.Start(context.Background()))

		err := group.Shutdown()

		require.Error(t, err)
		assert.ErrorContains(t, err, "click consumer stuck")
		assert.ErrorContains(t, err, "audit consumer stuck")
		assert.Equal(t, 1, created.shutdowns)
		assert.True(t, sub.closed)
	})
}
