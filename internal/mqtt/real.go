package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/athermo/internal/power"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	outboxSize     = 64
)

// Options configures a RealClient.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// RealClient publishes to and subscribes on an actual MQTT broker.
// Messages published while disconnected are held in an outbox and sent
// on reconnect.
type RealClient struct {
	client paho.Client

	// connected and publish wrap client; replaced in tests.
	connected func() bool
	publish   func(m outboxMsg) error

	mu      sync.Mutex
	outbox  *outbox
	handler CommandHandler
}

// NewRealClient connects to the broker. If the broker is unreachable within
// the connect timeout the client keeps retrying in the background and the
// constructor still succeeds.
func NewRealClient(o Options) (*RealClient, error) {
	c := &RealClient{outbox: newOutbox(outboxSize)}

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE"})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	c.client = paho.NewClient(opts)
	c.connected = c.client.IsConnectionOpen
	c.publish = c.publishNow
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Printf("mqtt: broker %s not reachable yet, retrying in background", o.Broker)
		return c, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return c, nil
}

// onConnect resubscribes and flushes the outbox.
func (c *RealClient) onConnect(_ paho.Client) {
	log.Printf("mqtt: connected")

	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()

	if handler != nil {
		if err := c.subscribe(handler); err != nil {
			log.Printf("mqtt: resubscribe: %v", err)
		}
	}
	c.flush()
}

// flush replays the outbox until it is empty, picking up messages queued
// while earlier ones were being sent.
func (c *RealClient) flush() {
	total := 0
	for {
		c.mu.Lock()
		pending := c.outbox.drain()
		c.mu.Unlock()
		if len(pending) == 0 {
			break
		}
		for _, m := range pending {
			if err := c.publish(m); err != nil {
				log.Printf("mqtt: replay: %v", err)
			}
		}
		total += len(pending)
	}
	if total > 0 {
		log.Printf("mqtt: replayed %d buffered messages", total)
	}
}

// Publish sends a power event. QoS 0, not retained.
func (c *RealClient) Publish(event power.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return c.send(outboxMsg{topic: TopicEvents, payload: payload})
}

// PublishSystem sends a system lifecycle event at QoS 1.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return c.send(outboxMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// send publishes m, or queues it when disconnected. The connection check
// and the push happen under mu so a concurrent flush cannot miss m.
func (c *RealClient) send(m outboxMsg) error {
	c.mu.Lock()
	if !c.connected() {
		c.outbox.push(m)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.publish(m)
}

func (c *RealClient) publishNow(m outboxMsg) error {
	token := c.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", m.topic, err)
	}
	return nil
}

// SubscribeCommands registers handler for the command topic. The
// subscription is restored after every reconnect.
func (c *RealClient) SubscribeCommands(handler CommandHandler) error {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()

	if !c.connected() {
		return nil
	}
	return c.subscribe(handler)
}

func (c *RealClient) subscribe(handler CommandHandler) error {
	token := c.client.Subscribe(TopicCommand, 1, func(_ paho.Client, msg paho.Message) {
		cmd, err := ParseCommand(msg.Payload())
		if err != nil {
			log.Printf("mqtt: bad command on %s: %v", msg.Topic(), err)
			return
		}
		handler(cmd)
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", TopicCommand)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicCommand, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (c *RealClient) IsConnected() bool {
	return c.connected()
}

// Pending returns the number of messages waiting for reconnection.
func (c *RealClient) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outbox.len()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000)
	return nil
}
