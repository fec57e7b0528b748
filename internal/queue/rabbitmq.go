package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cyberone/financial-mesh/internal/models"
	"github.com/streadway/amqp"
)

const (
	// queue for mesh events
	EventQueue = "mesh.events"
)

// handles RabbitMQ operations; consumers get pushed mesh events instead
// of polling the store
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewRabbitMQ(uri string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		EventQueue, // name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	return &RabbitMQ{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}

// publishes a mesh event to the queue
func (r *RabbitMQ) PublishEvent(ctx context.Context, evt *models.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Publish a message
	err = r.channel.Publish(
		"",         // exchange
		EventQueue, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // make message persistent
		})
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	return nil
}

// consumes mesh events from the queue
func (r *RabbitMQ) ConsumeEvents(ctx context.Context) (<-chan models.Event, error) {
	msgs, err := r.channel.Consume(
		EventQueue, // queue
		"",         // consumer
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	// Create a channel for events
	evtChan := make(chan models.Event)

	// Process messages in a goroutine
	go func() {
		defer close(evtChan)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var evt models.Event
				if err := json.Unmarshal(msg.Body, &evt); err != nil {
					// Log error and continue
					fmt.Printf("failed to unmarshal event: %v\n", err)
					msg.Reject(false) // Don't requeue
					continue
				}

				// Send to event channel
				evtChan <- evt

				// Acknowledge message
				msg.Ack(false)
			}
		}
	}()

	return evtChan, nil
}
