// Package mailer доставляет коды подтверждения: в лог, напрямую по SMTP
// или через очередь RabbitMQ для отдельного процесса-отправителя.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/yamdb/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/yamdb/internal/metrics"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Mailer доставляет письмо с кодом подтверждения.
type Mailer interface {
	SendConfirmationCode(ctx context.Context, msg models.ConfirmationMessage) error
}

// Console пишет письмо в лог. Для локальной разработки.
type Console struct {
	log *slog.Logger
}

// NewConsole создаёт Console.
func NewConsole(log *slog.Logger) *Console {
	return &Console{log: log}
}

// SendConfirmationCode пишет код в лог вместо отправки письма.
func (c *Console) SendConfirmationCode(_ context.Context, msg models.ConfirmationMessage) error {
	c.log.Info("confirmation code",
		slog.String("username", msg.Username),
		slog.String("email", msg.Email),
		slog.String("code", msg.Code),
	)
	return nil
}

// Publisher публикует сообщение по ключу маршрутизации.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Queue ставит письмо в очередь mail.confirmation.
type Queue struct {
	publisher Publisher
}

// NewQueue создаёт Queue.
func NewQueue(publisher Publisher) *Queue {
	return &Queue{publisher: publisher}
}

// SendConfirmationCode публикует письмо для процесса-отправителя.
func (q *Queue) SendConfirmationCode(_ context.Context, msg models.ConfirmationMessage) error {
	const op = "mailer.Queue.SendConfirmationCode"
	if err := q.publisher.Publish(rabbitmq.ConfirmationQueue.RoutingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Instrumented считает отправленные письма в метрике confirmation_messages.
type Instrumented struct {
	next      Mailer
	transport string
}

// WithMetrics оборачивает m подсчётом отправок под меткой transport.
func WithMetrics(transport string, m Mailer) *Instrumented {
	return &Instrumented{next: m, transport: transport}
}

// SendConfirmationCode отправляет письмо через обёрнутый Mailer и считает результат.
func (i *Instrumented) SendConfirmationCode(ctx context.Context, msg models.ConfirmationMessage) error {
	err := i.next.SendConfirmationCode(ctx, msg)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ConfirmationMessages.WithLabelValues(i.transport, result).Inc()
	return err
}
