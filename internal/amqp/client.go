package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"smartfinance/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures          = 5
	openTimeout          = 30 * time.Second
	maxBackoff           = 30 * time.Second
	maxReconnectAttempts = 5
	publishTimeout       = 5 * time.Second
)

var (
	ErrCircuitOpen  = errors.New("circuit breaker is open")
	ErrNotConnected = errors.New("not connected to AMQP")
)

type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	logger *log.Logger

	redialing atomic.Bool
	stopOnce  sync.Once
	stop      chan struct{}
	closeOnce sync.Once

	state        int32
	failureCount int64
	cbMu         sync.Mutex
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       log.ForComponent(log.ComponentAMQP),
	}

	if err := client.connect(); err != nil {
		return nil, err
	}

	return client, nil
}

// connect dials outside c.mu and only takes the lock to swap in the new
// connection.
func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := c.setup(channel); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.closeLocked()
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()
	return nil
}

func (c *Client) setup(channel *amqp091.Channel) error {
	err := channel.ExchangeDeclare(
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

	_, err = channel.QueueDeclare(
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

	// Routing key is the queue name on a direct exchange.
	err = channel.QueueBind(
		c.queueName,
		c.queueName,
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// openChannel returns the current channel, or nil when it is closed.
func (c *Client) openChannel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil || c.channel.IsClosed() {
		return nil
	}
	return c.channel
}

// reconnect redials with exponential backoff until it succeeds, the attempts
// run out or ctx is done. c.mu is never held while waiting.
func (c *Client) reconnect(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < maxReconnectAttempts; attempt++ {
		if c.openChannel() != nil {
			return nil
		}
		if err := c.connect(); err == nil {
			c.lg().InfoContext(ctx, "Reconnected to AMQP", "attempt", attempt+1)
			return nil
		} else {
			lastErr = err
		}

		wait := exponentialBackoff(attempt)
		c.lg().WarnContext(ctx, "AMQP reconnect failed", "attempt", attempt+1, "retry_in", wait, "error", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("reconnect after %d attempts: %w", maxReconnectAttempts, lastErr)
}

// redialInBackground starts at most one reconnect loop. It stops early when
// the client is closed.
func (c *Client) redialInBackground() {
	if !c.redialing.CompareAndSwap(false, true) {
		return
	}
	stop := c.stopChan()
	go func() {
		defer c.redialing.Store(false)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-stop:
				cancel()
			case <-ctx.Done():
			}
		}()
		if err := c.reconnect(ctx); err != nil && ctx.Err() == nil {
			c.lg().WarnContext(ctx, "AMQP still unreachable", "error", err)
		}
	}()
}

func (c *Client) stopChan() chan struct{} {
	c.stopOnce.Do(func() { c.stop = make(chan struct{}) })
	return c.stop
}

// Publish sends an event to the exchange as a persistent JSON message. It
// never waits for a reconnect: with no open channel it fails at once and
// leaves the redial to a background goroutine.
func (c *Client) Publish(ctx context.Context, e *Event) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", e.Kind, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	channel := c.openChannel()
	if channel == nil {
		c.recordFailure()
		c.redialInBackground()
		return fmt.Errorf("publish %s: %w", e.Kind, ErrNotConnected)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    e.EventID,
			Type:         string(e.Kind),
			Timestamp:    e.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.mu.Lock()
			c.closeLocked()
			c.mu.Unlock()
			c.redialInBackground()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.lg().InfoContext(ctx, "Published event",
		log.FieldEventID, e.EventID,
		log.FieldEventKind, e.Kind,
		log.FieldID, e.ID,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// Consume delivers events to handler until ctx is done. Malformed messages
// are dropped; handler errors requeue the message. A closed delivery channel
// triggers a reconnect.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, *Event) error) error {
	for {
		err := c.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			c.lg().InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		}
		c.lg().WarnContext(ctx, "Consumer interrupted, reconnecting", "error", err)
		c.mu.Lock()
		c.closeLocked()
		c.mu.Unlock()
		if err := c.reconnect(ctx); err != nil {
			return fmt.Errorf("consume: %w", err)
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler func(context.Context, *Event) error) error {
	channel := c.openChannel()
	if channel == nil {
		return ErrNotConnected
	}

	msgs, err := channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.lg().InfoContext(ctx, "Started consuming events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			e, err := EventFromJSON(delivery.Body)
			if err != nil {
				c.lg().ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(ctx, e); err != nil {
				c.lg().ErrorContext(ctx, "Failed to handle event",
					log.FieldError, err,
					log.FieldEventID, e.EventID,
					log.FieldEventKind, e.Kind,
					log.FieldID, e.ID)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
			c.lg().DebugContext(ctx, "Processed event", log.FieldEventID, e.EventID, log.FieldEventKind, e.Kind)
		}
	}
}

// lg falls back to the default handler for clients built without NewClient.
func (c *Client) lg() *log.Logger {
	if c.logger == nil {
		return log.ForComponent(log.ComponentAMQP)
	}
	return c.logger
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	stop := c.stopChan()
	c.closeOnce.Do(func() { close(stop) })
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.cbMu.Lock()
	last := c.lastFailure
	c.cbMu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.cbMu.Lock()
	c.lastFailure = time.Now()
	c.cbMu.Unlock()
	failures := atomic.AddInt64(&c.failureCount, 1)
	// A failed probe in half-open reopens immediately.
	if failures >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "closed", "eof", "broken pipe"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
