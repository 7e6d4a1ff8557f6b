package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectTranscriptStored carries transcripts whose expertise should be
	// extracted and folded into the owner's rules.
	SubjectTranscriptStored = "cadence.transcript.stored"

	// SubjectRulesConsolidated is published after every consolidation pass.
	SubjectRulesConsolidated = "cadence.rules.consolidated"
)

// TranscriptStored is the payload on SubjectTranscriptStored.
type TranscriptStored struct {
	UserID     string `json:"user_id"`
	Transcript string `json:"transcript"`
	SourceRef  string `json:"source_ref,omitempty"`
}

// RulesConsolidated summarises one consolidation pass for downstream
// consumers such as prompt caches.
type RulesConsolidated struct {
	UserID            string `json:"user_id"`
	Category          string `json:"category"`
	Origin            string `json:"origin"`
	RulesAdded        int    `json:"rules_added"`
	RulesConsolidated int    `json:"rules_consolidated"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("cadence"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

// Drain flushes pending publishes and lets in-flight handlers finish before
// the connection closes.
func (c *Client) Drain() error {
	return c.conn.Drain()
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
