package broker

// Queue and counter key names on the broker. These are part of the wire
// contract shared with external tooling; do not rename.
const (
	DefaultQueueKey   = "event_queue"
	DefaultCounterKey = "stats:received_count"
)

// Config holds the base configuration for the broker connection.
type Config struct {
	// URL is the broker connection string.
	URL string `env:"BROKER_URL" env-default:"redis://broker:6379/0"`

	// QueueKey is the list key envelopes are pushed to.
	QueueKey string `env:"BROKER_QUEUE_KEY" env-default:"event_queue"`

	// CounterKey is the received-count counter key.
	CounterKey string `env:"BROKER_COUNTER_KEY" env-default:"stats:received_count"`
}

// Keys returns the configured queue and counter keys, falling back to the
// wire-contract defaults when unset.
func (c Config) Keys() (queue, counter string) {
	queue, counter = c.QueueKey, c.CounterKey
	if queue == "" {
		queue = DefaultQueueKey
	}
	if counter == "" {
		counter = DefaultCounterKey
	}
	return queue, counter
}
