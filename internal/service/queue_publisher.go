// Package queue_publisher provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/afisha/theater-booking/internal/queue"
)

// PublishOrderCreated publishes an OrderCreatedEvent to the
// "order.created" queue. Messages are marked persistent so they
// survive broker restarts.
func PublishOrderCreated(ctx context.Context, event q.OrderCreatedEvent) error {
	return publish(ctx, "order.created", event)
}

// PublishOrderCancelled publishes an OrderCancelledEvent to the
// "order.cancelled" queue.
func PublishOrderCancelled(ctx context.Context, event q.OrderCancelledEvent) error {
	return publish(ctx, "order.cancelled", event)
}

// publish dials the broker, declares the durable queue (idempotent)
// and publishes one persistent JSON message. The function never
// panics; any error is logged and returned so the caller can choose
// to ignore it.
func publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
