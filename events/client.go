// Package events carries the post-confirmation hook over AMQP so profile
// creation can run in a separate worker.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/utils"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var ErrChannelClosed = errors.New("message channel closed")

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return client, nil
}

// setup declares a durable direct exchange and a queue bound by its own name.
func (c *Client) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// OnConfirmed publishes the confirmed user. It satisfies the auth service's
// post-confirmation hook.
func (c *Client) OnConfirmed(ctx context.Context, user models.ConfirmedUser) error {
	body, err := NewUserConfirmedMessage(user).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	utils.Logger().Info("published user confirmed message",
		zap.String("user_id", utils.MaskID(user.UserID)),
		zap.String("exchange", c.exchangeName),
		zap.String("queue", c.queueName))
	return nil
}

// Handler processes one confirmed user. A returned error requeues the message.
type Handler func(ctx context.Context, user models.ConfirmedUser) error

// Consume delivers messages to handler until ctx ends, acknowledging manually.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	msgs, err := c.channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	utils.Logger().Info("started consuming user confirmed messages", zap.String("queue", c.queueName))

	for {
		select {
		case <-ctx.Done():
			utils.Logger().Info("stopping message consumption", zap.Error(ctx.Err()))
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return ErrChannelClosed
			}
			HandleDelivery(ctx, delivery, handler)
		}
	}
}

// HandleDelivery decodes and dispatches one delivery. Malformed bodies are
// dropped; handler failures are requeued.
func HandleDelivery(ctx context.Context, delivery amqp091.Delivery, handler Handler) {
	log := utils.Logger()

	msg, err := UserConfirmedMessageFromJSON(delivery.Body)
	if err != nil {
		log.Error("failed to decode message", zap.Error(err))
		_ = delivery.Nack(false, false)
		return
	}

	if err := handler(ctx, msg.ConfirmedUser()); err != nil {
		log.Error("failed to handle message",
			zap.String("user_id", utils.MaskID(msg.UserID)), zap.Error(err))
		_ = delivery.Nack(false, true)
		return
	}

	_ = delivery.Ack(false)
	log.Info("processed user confirmed message", zap.String("user_id", utils.MaskID(msg.UserID)))
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
