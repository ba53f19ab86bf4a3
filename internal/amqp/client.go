package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	defaultPublishTimeout = 5 * time.Second

	baseBackoff = time.Second
	maxBackoff  = 30 * time.Second
)

var ErrChannelClosed = errors.New("amqp: delivery channel closed")

// publishChannel is the part of *amqp091.Channel the publisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	IsClosed() bool
}

type Client struct {
	url            string
	conn           *amqp091.Connection
	channel        *amqp091.Channel
	exchangeName   string
	queueName      string
	publishTimeout time.Duration

	// amqp091 channels must not be shared by concurrent publishers
	publishMu sync.Mutex
	publisher publishChannel
	// redial replaces a closed connection; swapped in tests
	redial func() (publishChannel, error)
}

func NewClient(url, exchangeName, queueName string, publishTimeout time.Duration) (*Client, error) {
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}

	client := &Client{
		url:            url,
		exchangeName:   exchangeName,
		queueName:      queueName,
		publishTimeout: publishTimeout,
	}
	client.redial = client.connect

	if _, err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

// connect dials the broker, declares the topology and makes the new channel current.
func (c *Client) connect() (publishChannel, error) {
	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Locale: "en_US",
		Dial:   amqp091.DefaultDial(c.publishTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	previous := c.conn
	c.conn, c.channel, c.publisher = conn, channel, channel
	if previous != nil && !previous.IsClosed() {
		previous.Close()
	}

	if err := c.setup(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return channel, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name on a direct exchange
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishBudgetAlert publishes a persistent budget alert message
func (c *Client) PublishBudgetAlert(ctx context.Context, msg BudgetAlertMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.publishTimeout)
	defer cancel()

	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	if c.publisher == nil || c.publisher.IsClosed() {
		slog.WarnContext(ctx, "AMQP channel closed, reconnecting", "exchange", c.exchangeName)
		publisher, err := c.redial()
		if err != nil {
			c.publisher = nil
			return fmt.Errorf("reconnect: %w", err)
		}
		c.publisher = publisher
	}

	err = c.publisher.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.DebugContext(ctx, "Published budget alert",
		"user_id", msg.UserID,
		"category_id", msg.CategoryID,
		"type", msg.Type,
		"exchange", c.exchangeName)

	return nil
}

// ConsumeBudgetAlerts blocks delivering messages to handler until ctx is done or the
// channel closes. Malformed messages are dropped; handler errors requeue the message.
func (c *Client) ConsumeBudgetAlerts(ctx context.Context, handler func(context.Context, *BudgetAlertMessage) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming budget alerts", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return ErrChannelClosed
			}
			handleDelivery(ctx, delivery, handler)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler func(context.Context, *BudgetAlertMessage) error) {
	process(ctx, delivery.Body, delivery, handler)
}

func process(ctx context.Context, body []byte, ack acknowledger, handler func(context.Context, *BudgetAlertMessage) error) {
	msg, err := BudgetAlertMessageFromJSON(body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal budget alert", "error", err)
		_ = ack.Nack(false, false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to handle budget alert",
			"error", err,
			"user_id", msg.UserID,
			"category_id", msg.CategoryID)
		_ = ack.Nack(false, true)
		return
	}

	_ = ack.Ack(false)
}

func (c *Client) Close() error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.publisher = nil
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Dialer opens a consuming client; swapped in tests.
type Dialer func() (*Client, error)

// ConsumeWithRetry keeps a consumer running across broker restarts, backing off
// exponentially between connection attempts.
func ConsumeWithRetry(ctx context.Context, dial Dialer, handler func(context.Context, *BudgetAlertMessage) error) error {
	attempt := 0
	for {
		client, err := dial()
		if err == nil {
			attempt = 0
			err = client.ConsumeBudgetAlerts(ctx, handler)
			client.Close()
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !isConnectionError(err) && !errors.Is(err, ErrChannelClosed) {
			return err
		}

		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "AMQP connection lost, retrying", "error", err, "attempt", attempt+1, "wait", wait)
		attempt++

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := baseBackoff << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var amqpErr *amqp091.Error
	if errors.As(err, &amqpErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection", "eof", "broken pipe", "dial"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
