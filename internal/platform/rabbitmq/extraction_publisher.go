package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"studyai/internal/model"
)

type ExtractionPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewExtractionPublisher(conn *amqp.Connection, queueName string) *ExtractionPublisher {
	return &ExtractionPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ExtractionPublisher) PublishExtraction(ctx context.Context, job model.ExtractionJob) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := declareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal extraction job failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish extraction job failed: %w", err)
	}
	return nil
}
