// Package service publishes enrollment events to RabbitMQ.  Publishing is
// best effort: failures are logged and never surface to the request that
// triggered the event.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/course-enrollment/internal/queue"
)

const (
	defaultBuffer  = 256
	dialTimeout    = 2 * time.Second
	publishTimeout = 2 * time.Second
	redialBackoff  = 5 * time.Second
)

// Publisher records domain events.  Implementations must not block the
// caller on the broker.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event)
}

// Noop drops every event.  It is used when EVENTS_ENABLED=false.
type Noop struct{}

func (Noop) Publish(context.Context, queue.Event) {}

// AMQPPublisher hands events to a single background worker through a
// bounded buffer.  Publish never waits on the broker; when the buffer is
// full the event is dropped and logged.  The worker owns the connection
// and re-dials lazily after a failure.
type AMQPPublisher struct {
	url string
	log logrus.FieldLogger

	events  chan queue.Event
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once

	conn     *amqp.Connection
	ch       *amqp.Channel
	nextDial time.Time
}

// NewAMQPPublisher starts the worker; it dials on the first event.
func NewAMQPPublisher(url string, log logrus.FieldLogger) *AMQPPublisher {
	return newAMQPPublisher(url, log, defaultBuffer)
}

func newAMQPPublisher(url string, log logrus.FieldLogger, buffer int) *AMQPPublisher {
	p := &AMQPPublisher{
		url:     url,
		log:     log,
		events:  make(chan queue.Event, buffer),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues ev.  The request context is not carried over: the
// event outlives the request that produced it.
func (p *AMQPPublisher) Publish(_ context.Context, ev queue.Event) {
	select {
	case <-p.quit:
		return
	default:
	}
	select {
	case p.events <- ev:
	default:
		p.log.WithField("event", ev.Type).Warn("rabbitmq: buffer full; event dropped")
	}
}

func (p *AMQPPublisher) run() {
	defer close(p.stopped)
	defer p.reset()
	for {
		select {
		case <-p.quit:
			// flush what is already buffered, then stop
			for {
				select {
				case ev := <-p.events:
					p.send(ev)
				default:
					return
				}
			}
		case ev := <-p.events:
			p.send(ev)
		}
	}
}

func (p *AMQPPublisher) send(ev queue.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.WithError(err).Error("rabbitmq: marshal event failed")
		return
	}
	ch, err := p.channel()
	if err != nil {
		p.log.WithError(err).WithField("event", ev.Type).Warn("rabbitmq: publish skipped")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.QueueName, false, false, pub); err != nil {
		p.log.WithError(err).WithField("event", ev.Type).Warn("rabbitmq: publish failed")
		p.reset()
	}
}

var errBackoff = errors.New("broker unavailable; waiting before redial")

// channel returns the open channel, dialing and declaring the queue if
// needed.  A failed dial suppresses further dials for redialBackoff.  Only
// the worker goroutine calls it.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if time.Now().Before(p.nextDial) {
		return nil, errBackoff
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		p.nextDial = time.Now().Add(redialBackoff)
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		p.nextDial = time.Now().Add(redialBackoff)
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue.QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		p.nextDial = time.Now().Add(redialBackoff)
		return nil, err
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

// Close stops the worker after it flushes buffered events and releases the
// broker connection.
func (p *AMQPPublisher) Close() error {
	p.once.Do(func() { close(p.quit) })
	<-p.stopped
	return nil
}
