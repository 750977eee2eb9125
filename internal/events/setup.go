package events

import (
	"github.com/MrJamesThe3rd/payday/internal/dashboard"
	"github.com/MrJamesThe3rd/payday/internal/events/kafka"
	"github.com/MrJamesThe3rd/payday/internal/funds"
	"github.com/MrJamesThe3rd/payday/internal/observability"
)

// NewPublisher returns a Kafka publisher, or Noop when no brokers are configured.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return Noop{}
	}

	return kafka.NewPublisher(brokers, topic)
}

// MovementNotifiers is the notifier set every entry point registers on
// funds.Service. cache and metrics may be nil.
func MovementNotifiers(pub Publisher, cache *dashboard.Cache, metrics *observability.Metrics) []funds.Notifier {
	notifiers := []funds.Notifier{cache}
	if metrics != nil {
		notifiers = append(notifiers, metrics)
	}

	return append(notifiers, NewNotifier(pub))
}
