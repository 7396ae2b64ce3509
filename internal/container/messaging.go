package container

import (
	"github.com/samber/do"
	"github.com/serroba/frwrd/internal/analytics"
	"github.com/serroba/frwrd/internal/clicks"
	"github.com/serroba/frwrd/internal/messaging"
	"go.uber.org/zap"
)

// PublisherGroupPackage provides the stream publisher and the publish
// functions the handlers call. Without streams, url.created events are
// dropped and clicks are logged inline.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		r := do.MustInvoke[*Redis](i)

		publisher, err := messaging.NewRedisPublisher(r.Client, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.URLCreatedEvent], error) {
		if !do.MustInvoke[*Options](i).PublishEvents {
			return messaging.Discard[analytics.URLCreatedEvent](), nil
		}

		group, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublishFunc[analytics.URLCreatedEvent](group.Publisher(), analytics.TopicURLCreated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.URLAccessedEvent], error) {
		if do.MustInvoke[*Options](i).ClickMode != ClickModeAsync {
			return analytics.RecordInline(do.MustInvoke[*clicks.Logger](i)), nil
		}

		group, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublishFunc[analytics.URLAccessedEvent](group.Publisher(), analytics.TopicURLAccessed), nil
	})
}

// ConsumerGroupPackage provides the consumers that log clicks and created
// URLs from the redis streams.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		r := do.MustInvoke[*Redis](i)

		subscriber, err := messaging.NewRedisSubscriber(r.Client, opts.ConsumerGroup, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicURLAccessed,
			analytics.HandleURLAccessed(do.MustInvoke[*clicks.Logger](i)),
			logger,
		))
		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicURLCreated,
			analytics.HandleURLCreated(logger),
			logger,
		))

		return group, nil
	})
}
