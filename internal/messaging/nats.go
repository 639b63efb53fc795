package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

// ErrDisabled is returned by subscriptions on a client built with Enabled=false.
var ErrDisabled = errors.New("nats streaming is disabled")

// Publisher is what request handlers need to emit events.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type NATSClient struct {
	conn stan.Conn
}

type Config struct {
	Enabled   bool
	URL       string
	ClusterID string
	ClientID  string
}

// NewNATSClient connects to NATS Streaming. With Enabled=false it returns a
// client that drops publishes, so the API can run without a broker.
func NewNATSClient(cfg Config) (*NATSClient, error) {
	if !cfg.Enabled {
		slog.Info("NATS Streaming disabled, events will not be published")
		return &NATSClient{}, nil
	}

	// Unique client ID so several replicas can share a cluster
	uniqueClientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8])

	conn, err := stan.Connect(cfg.ClusterID, uniqueClientID, stan.NatsURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL, "cluster", cfg.ClusterID, "client", uniqueClientID)

	return &NATSClient{conn: conn}, nil
}

func (nc *NATSClient) Enabled() bool {
	return nc != nil && nc.conn != nil
}

func (nc *NATSClient) Publish(subject string, data interface{}) error {
	if !nc.Enabled() {
		slog.Debug("NATS disabled, dropping message", "subject", subject)
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	slog.Debug("Published message", "subject", subject)
	return nil
}

func (nc *NATSClient) SubscribeQueue(subject, queue string, handler stan.MsgHandler) (stan.Subscription, error) {
	if !nc.Enabled() {
		return nil, ErrDisabled
	}

	sub, err := nc.conn.QueueSubscribe(subject, queue, handler,
		stan.DurableName(subject+"-"+queue+"-durable"),
		stan.SetManualAckMode(),
		stan.AckWait(30*time.Second),
		stan.MaxInflight(1))
	if err != nil {
		return nil, fmt.Errorf("failed to queue subscribe to subject %s: %w", subject, err)
	}

	slog.Info("Subscribed to subject", "subject", subject, "queue", queue)
	return sub, nil
}

func (nc *NATSClient) Close() error {
	if nc.Enabled() {
		return nc.conn.Close()
	}
	return nil
}
