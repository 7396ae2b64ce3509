package messaging_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/frwrd/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	messages   []*message.Message
	topic      string
	publishErr error
	closeErr   error
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.topic = topic
	m.messages = append(m.messages, msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	return m.closeErr
}

func TestNewPublishFunc(t *testing.T) {
	t.Run("publishes a json payload with metadata", func(t *testing.T) {
		mock := &mockPublisher{}
		publish := messaging.NewPublishFunc[visitEvent](mock, "url.accessed")

		err := publish(context.Background(), &visitEvent{Code: "ab12cd3", IP: "1.2.3.4"})

		require.NoError(t, err)
		assert.Equal(t, "url.accessed", mock.topic)
		require.Len(t, mock.messages, 1)
		assert.JSONEq(t, `{"code":"ab12cd3","ip":"1.2.3.4"}`, string(mock.messages[0].Payload))
		assert.NotEmpty(t, mock.messages[0].UUID)

		_, err = time.Parse(time.RFC3339Nano, mock.messages[0].Metadata.Get(messaging.MetadataPublishedAt))
		assert.NoError(t, err)
	})

	t.Run("wraps publish errors with the topic", func(t *testing.T) {
		mock := &mockPublisher{publishErr: errors.New("stream unavailable")}
		publish := messaging.NewPublishFunc[visitEvent](mock, "url.accessed")

		err := publish(context.Background(), &visitEvent{Code: "ab12cd3"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "url.accessed")
	})

	t.Run("discard never fails", func(t *testing.T) {
		assert.NoError(t, messaging.Discard[visitEvent]()(context.Background(), &visitEvent{}))
	})
}

func TestPublisherGroup(t *testing.T) {
	t.Run("returns underlying publisher", func(t *testing.T) {
		mock := &mockPublisher{}
		group := messaging.NewPublisherGroup(mock)

		assert.Equal(t, mock, group.Publisher())
	})

	t.Run("returns error when close fails", func(t *testing.T) {
		mock := &mockPublisher{closeErr: errors.New("close error")}
		group := messaging.NewPublisherGroup(mock)

		assert.Error(t, group.Shutdown())
	})
}
