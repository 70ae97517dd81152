package mqtt

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// HealthStatus reports broker connectivity and the subscribed topic patterns.
type HealthStatus struct {
	Broker         string    `json:"broker"`
	Connected      bool      `json:"connected"`
	LastConnected  time.Time `json:"last_connected,omitempty"`
	LastDisconnect time.Time `json:"last_disconnect,omitempty"`
	Subscriptions  int       `json:"subscriptions"`
	Topics         []string  `json:"topics"`
}

// Health always returns a status; the error is set when the broker is down.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	c.mu.RLock()
	topics := make([]string, 0, len(c.handlers))
	for topic := range c.handlers {
		topics = append(topics, topic)
	}
	status := &HealthStatus{
		Broker:         fmt.Sprintf("%s:%d", c.cfg.Broker, c.cfg.Port),
		Connected:      c.connected && c.client.IsConnected(),
		LastConnected:  c.lastUp,
		LastDisconnect: c.lastDown,
		Subscriptions:  len(topics),
	}
	c.mu.RUnlock()

	sort.Strings(topics)
	status.Topics = topics

	if !status.Connected {
		return status, fmt.Errorf("mqtt broker %s not connected", status.Broker)
	}
	return status, nil
}

