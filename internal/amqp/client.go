// Package amqp connects the API and the snapshot worker through RabbitMQ.
// The client keeps a small circuit breaker around publishing so a broker
// outage degrades expense writes instead of failing them.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures = 5
	openTimeout = 30 * time.Second
)

type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	failureCount int64
	state        int32
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	if c.conn != nil && !c.conn.IsClosed() {
		return nil
	}

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return nil
}

func setup(channel *amqp091.Channel, exchangeName, queueName string) error {
	err := channel.ExchangeDeclare(
		exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key matches the queue name on a direct exchange.
	err = channel.QueueBind(queueName, queueName, exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// exponentialBackoff returns the wait before retry number attempt, starting
// at one second and capped at 30 seconds.
func exponentialBackoff(attempt int) time.Duration {
	d := time.Second << attempt
	if attempt >= 5 || d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

// isConnectionError reports whether err looks like a broken broker
// connection rather than an application-level failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection closed",
		"connection reset",
		"eof",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.StoreInt32(&c.state, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// PublishExpenseEvent publishes an expense change event. It fails fast while
// the circuit is open.
func (c *Client) PublishExpenseEvent(ctx context.Context, id, ownerID, action string) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, not publishing")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	event := NewExpenseEvent(id, ownerID, action)
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := c.connect(); err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()

	err = channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		if isConnectionError(err) {
			c.recordFailure()
		}
		return fmt.Errorf("publish event: %w", err)
	}

	c.recordSuccess()
	slog.InfoContext(ctx, "Published expense event",
		"id", id,
		"owner_id", ownerID,
		"action", action,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// ConsumeExpenseEvents delivers events to handler until the context ends.
// A handler error requeues the delivery; an unparseable body is dropped.
// The consume loop reconnects with backoff when the broker goes away.
func (c *Client) ConsumeExpenseEvents(ctx context.Context, handler func(*ExpenseEvent) error) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.connect(); err != nil {
			attempt++
			wait := exponentialBackoff(attempt)
			slog.WarnContext(ctx, "AMQP connect failed, retrying", "error", err, "wait", wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		attempt = 0

		err := c.consumeOnce(ctx, handler)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !isConnectionError(err) {
			return err
		}
		slog.WarnContext(ctx, "AMQP consume interrupted, reconnecting", "error", err)
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler func(*ExpenseEvent) error) error {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()

	msgs, err := channel.Consume(
		c.queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming expense events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed: %w", amqp091.ErrClosed)
			}

			event, err := ExpenseEventFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal event", "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(event); err != nil {
				slog.ErrorContext(ctx, "Failed to handle event",
					"error", err,
					"id", event.ID,
					"owner_id", event.OwnerID)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
			slog.InfoContext(ctx, "Processed expense event",
				"id", event.ID,
				"owner_id", event.OwnerID,
				"action", event.Action)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
