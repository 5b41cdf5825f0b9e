package mosquitto

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Client struct {
	client mqtt.Client
	log    *slog.Logger
}

type Config struct {
	Broker   string
	ClientId string
	Username string
	Password string
	// Topics are subscribed on every (re)connect and routed to the handler.
	Topics         []string
	ConnectTimeout time.Duration
}

// MsgHandler consumes raw payloads from subscribed topics.
type MsgHandler interface {
	HandleMsg(msg []byte) error
}

const (
	defaultConnectTimeout = 60 * time.Second // how long to wait for the broker to come up
	publishTimeout        = 5 * time.Second
	disconnectQuiesceMs   = 250
)

var ErrConnectTimeout = errors.New("broker connection timed out")

// NewClient connects to the broker. handler may be nil for publish-only
// clients.
func NewClient(cfg Config, handler MsgHandler, log *slog.Logger) (*Client, error) {
	c := &Client{log: log}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientId)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("broker connection lost", "err", err)
	})
	if handler != nil && len(cfg.Topics) > 0 {
		opts.SetOnConnectHandler(func(mc mqtt.Client) {
			c.subscribe(mc, cfg.Topics, handler)
		})
	}

	c.client = mqtt.NewClient(opts)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	token := c.client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("%w after %s", ErrConnectTimeout, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", cfg.Broker, err)
	}

	return c, nil
}

func (c *Client) subscribe(mc mqtt.Client, topics []string, handler MsgHandler) {
	for _, topic := range topics {
		token := mc.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			if err := handler.HandleMsg(msg.Payload()); err != nil {
				c.log.Error("failed to handle message", "topic", msg.Topic(), "err", err)
			}
		})
		if token.Wait() && token.Error() != nil {
			c.log.Error("subscribe failed", "topic", topic, "err", token.Error())
			continue
		}
		c.log.Info("subscribed", "topic", topic)
	}
}

// Publish sends payload on topic at QoS 0.
func (c *Client) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

func (c *Client) Close() {
	c.client.Disconnect(disconnectQuiesceMs)
}
