package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var (
	// ErrBufferFull is returned when the outbound queue is full and the event was dropped.
	ErrBufferFull = errors.New("event buffer full, event dropped")
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("event publisher closed")
)

// AMQPConfig configures an AMQPPublisher. Zero values take the defaults below.
type AMQPConfig struct {
	URL   string
	Queue string
	// Buffer is the number of events held while the broker is slow or down. Default 256.
	Buffer int
	// DialTimeout bounds the TCP connect and the AMQP handshake. Default 3s.
	DialTimeout time.Duration
	// PublishTimeout bounds a single publish. Default 3s.
	PublishTimeout time.Duration
	// RetryDelay is how long to wait after a failed dial before dialing again. Default 5s.
	RetryDelay time.Duration
}

func (c *AMQPConfig) setDefaults() {
	if c.Buffer <= 0 {
		c.Buffer = 256
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 3 * time.Second
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 3 * time.Second
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}
}

// AMQPPublisher publishes events as persistent JSON messages to a durable queue.
//
// Publish only enqueues. A single background goroutine owns the connection,
// dials lazily and re-dials after the connection is lost, so a slow or
// unreachable broker never holds up the caller.
type AMQPPublisher struct {
	cfg    AMQPConfig
	logger *zap.Logger

	events    chan RentalEvent
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	// Owned by the run goroutine.
	conn       *amqp.Connection
	ch         *amqp.Channel
	retryAfter time.Time
}

func NewAMQPPublisher(cfg AMQPConfig, logger *zap.Logger) *AMQPPublisher {
	cfg.setDefaults()
	p := &AMQPPublisher{
		cfg:    cfg,
		logger: logger,
		events: make(chan RentalEvent, cfg.Buffer),
		done:   make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Publish queues e for delivery. It never blocks; a full buffer drops the event.
func (p *AMQPPublisher) Publish(_ context.Context, e RentalEvent) error {
	select {
	case <-p.done:
		return ErrPublisherClosed
	default:
	}

	select {
	case p.events <- e:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops the sender after flushing what it can of the buffer.
func (p *AMQPPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	p.wg.Wait()
	return nil
}

func (p *AMQPPublisher) run() {
	defer p.wg.Done()
	defer p.reset()

	for {
		select {
		case <-p.done:
			p.flush()
			return
		case e := <-p.events:
			p.send(e)
		}
	}
}

// flush sends whatever is still buffered, giving up once the broker is unreachable.
func (p *AMQPPublisher) flush() {
	for {
		select {
		case e := <-p.events:
			if time.Now().Before(p.retryAfter) {
				p.logger.Warn("dropping buffered event on shutdown", zap.String("type", string(e.Type)), zap.String("rental_id", e.RentalID))
				continue
			}
			p.send(e)
		default:
			return
		}
	}
}

func (p *AMQPPublisher) send(e RentalEvent) {
	if err := p.publish(e); err != nil {
		p.logger.Warn("rental event not delivered",
			zap.String("type", string(e.Type)),
			zap.String("rental_id", e.RentalID),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("event published", zap.String("type", string(e.Type)), zap.String("rental_id", e.RentalID))
}

func (p *AMQPPublisher) publish(e RentalEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(e.Type),
		Body:         body,
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.PublishTimeout)
	defer cancel()
	if err := ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish %s failed: %w", e.Type, err)
	}
	return nil
}

// channel returns an open channel, dialing and declaring the queue when needed.
// After a failed dial it refuses to dial again until RetryDelay has passed.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	if time.Now().Before(p.retryAfter) {
		return nil, errors.New("rabbitmq unavailable, waiting to redial")
	}

	conn, err := amqp.DialConfig(p.cfg.URL, amqp.Config{
		Dial: amqp.DefaultDial(p.cfg.DialTimeout),
	})
	if err != nil {
		p.retryAfter = time.Now().Add(p.cfg.RetryDelay)
		return nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		p.retryAfter = time.Now().Add(p.cfg.RetryDelay)
		return nil, fmt.Errorf("rabbitmq channel open failed: %w", err)
	}

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		p.retryAfter = time.Now().Add(p.cfg.RetryDelay)
		return nil, fmt.Errorf("rabbitmq queue declare failed: %w", err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
