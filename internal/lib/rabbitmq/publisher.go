// Package rabbitmq содержит публикацию доменных событий в RabbitMQ.
//
// Сейчас публикуется единственное событие payment.completed — оно
// потребляется внешними рассыльщиками уведомлений. Публикация best-effort:
// отказ брокера не откатывает сам платёж.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// PaymentCompletedKey — routing key события завершения платежа.
const PaymentCompletedKey = "payment.completed"

// PaymentCompletedEvent — тело события payment.completed.
type PaymentCompletedEvent struct {
	PaymentID      int64     `json:"payment_id"`
	UserID         int64     `json:"user_id"`
	Amount         float64   `json:"amount"`
	SubscriptionID int64     `json:"subscription_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher привязывает канал к exchange и публикует события.
type Publisher struct {
	ch       *amqp.Channel
	exchange string
}

// NewPublisher создает Publisher поверх открытого канала.
func NewPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// PublishMessage публикует событие с указанным routing key.
func (p *Publisher) PublishMessage(_ context.Context, routingKey string, message any) error {
	return PublishMessage(p.ch, p.exchange, routingKey, message)
}

// Connect открывает соединение и канал с брокером.
func Connect(url string) (*amqp.Connection, *amqp.Channel, error) {
	const op = "rabbitmq.Connect"
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return conn, ch, nil
}

// SetupExchange объявляет topic-exchange для доменных событий.
func SetupExchange(ch *amqp.Channel, exchange string) error {
	const op = "rabbitmq.SetupExchange"
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
