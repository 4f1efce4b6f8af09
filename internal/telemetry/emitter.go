// Package telemetry is the one-way diagnostic sink for the autonomy
// core. Every state-machine transition and alignment verdict is
// emitted here as a structured event; the core never depends on any
// sink for correctness.
package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/banyan-robotics/banyan/internal/storage/postgres"
)

var buffer = NewRingBuffer(256)

// Publisher is the uplink used to mirror events to an MQTT topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
	IsConnected() bool
}

var (
	sinkMu        sync.RWMutex
	pgClient      *postgres.Client
	pgErrorLogged bool
	uplink        Publisher
	uplinkTopic   string
)

// SetPostgresClient sets the Postgres client for event persistence.
func SetPostgresClient(client *postgres.Client) {
	sinkMu.Lock()
	pgClient = client
	sinkMu.Unlock()
}

// GetPostgresClient returns the current Postgres client (for API queries).
func GetPostgresClient() *postgres.Client {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return pgClient
}

// SetUplink mirrors every emitted event to the given MQTT topic.
func SetUplink(p Publisher, topic string) {
	sinkMu.Lock()
	uplink = p
	uplinkTopic = topic
	sinkMu.Unlock()
}

// Event is one telemetry record.
type Event struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emit records an event. The name must be one of the registered event
// names. Sink failures are absorbed: persistence errors are logged
// once as a system.error event, uplink failures are dropped.
func Emit(level, name, msg string, fields map[string]interface{}) ([]byte, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	e := Event{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	}

	buffer.Add(e)
	broadcast(e)

	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	sinkMu.RLock()
	client := pgClient
	errorLogged := pgErrorLogged
	pub := uplink
	topic := uplinkTopic
	sinkMu.RUnlock()

	if client != nil {
		if err := client.Append(ts, level, name, msg, fields); err != nil {
			// Log the failure once to avoid spam. Added directly to
			// the buffer, not via Emit, so a persistently failing
			// database cannot recurse.
			if !errorLogged {
				sinkMu.Lock()
				if !pgErrorLogged {
					pgErrorLogged = true
					sinkMu.Unlock()
					buffer.Add(Event{
						Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
						Level:     "error",
						Name:      "system.error",
						Message:   "postgres append failed",
						Fields:    map[string]interface{}{"error": err.Error()},
					})
				} else {
					sinkMu.Unlock()
				}
			}
		}
	}

	if pub != nil && pub.IsConnected() {
		// Fire and forget; telemetry must never block the control loop.
		_ = pub.Publish(topic, b)
	}

	return b, nil
}

// Snapshot returns the buffered events, oldest first.
func Snapshot() []Event {
	return buffer.Snapshot()
}

// Clear resets the event buffer. Used for testing.
func Clear() {
	buffer.Clear()
}
