package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"live-quiz-engine/internal/domain"
)

// ResultsMessage is the body published for each finished session.
type ResultsMessage struct {
	Event      string                `json:"event"`
	Code       string                `json:"code"`
	Title      string                `json:"title"`
	FinishedAt time.Time             `json:"finishedAt"`
	Ranking    []domain.RankingEntry `json:"ranking"`
	Awards     domain.Awards         `json:"awards"`
}

const resultsEvent = "session.finished"

// Publisher ships final results to a durable RabbitMQ queue.
type Publisher struct {
	conn  *amqp.Connection
	queue string

	mu      sync.Mutex // guards channel; amqp channels are not goroutine-safe
	channel *amqp.Channel
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	_, err = channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return &Publisher{conn: conn, channel: channel, queue: queue}, nil
}

func (p *Publisher) PublishResults(ctx context.Context, results domain.FinalResults) error {
	body, err := EncodeResults(results)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    results.Code,
			Body:         body,
			Timestamp:    results.FinishedAt,
		},
	)
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// EncodeResults renders the message body for results.
func EncodeResults(results domain.FinalResults) ([]byte, error) {
	body, err := json.Marshal(ResultsMessage{
		Event:      resultsEvent,
		Code:       results.Code,
		Title:      results.Title,
		FinishedAt: results.FinishedAt,
		Ranking:    results.Ranking,
		Awards:     results.Awards,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}
	return body, nil
}
