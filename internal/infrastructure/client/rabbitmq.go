package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue

	mu sync.Mutex // publishing is serialized on the shared channel
}

func NewRabbitMQClient(url, queueName string) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	queue, err := DeclareAuditQueue(channel, queueName)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		queue:   queue,
	}, nil
}

// DeclareAuditQueue объявляет durable очередь для аудита
func DeclareAuditQueue(channel *amqp.Channel, name string) (amqp.Queue, error) {
	queue, err := channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %q: %w", name, err)
	}
	return queue, nil
}

func (c *RabbitMQClient) QueueName() string {
	return c.queue.Name
}

func (c *RabbitMQClient) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	err = c.channel.PublishWithContext(
		ctx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	logger.Debug("audit message published", "action", message.Action, "entity", message.EntityType, "id", message.EntityID)
	return nil
}

func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
