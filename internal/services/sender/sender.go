// Package sender отправляет письма с кодами подтверждения по SMTP.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/lib/smtp"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// ErrBadMessage тело сообщения из очереди не разбирается.
var ErrBadMessage = errors.New("bad confirmation message")

const confirmationSubject = "YaMDb: код подтверждения"

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает Service.
func New(log *slog.Logger, transport smtp.TransportInterface) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendConfirmationCode отправляет код подтверждения на email пользователя.
func (s *Service) SendConfirmationCode(_ context.Context, msg models.ConfirmationMessage) error {
	const op = "sender.SendConfirmationCode"
	body := fmt.Sprintf("Здравствуйте, %s!\r\n\r\nВаш код подтверждения: %s\r\n\r\n"+
		"Отправьте его вместе с именем пользователя на /v1/auth/token/, чтобы получить токен.",
		msg.Username, msg.Code)

	if err := s.sendEmail(msg.Email, confirmationSubject, body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HandleConfirmation обработчик очереди mail.confirmation.
func (s *Service) HandleConfirmation(ctx context.Context, body []byte) error {
	const op = "sender.HandleConfirmation"
	var msg models.ConfirmationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrBadMessage, err)
	}
	if msg.Email == "" || msg.Code == "" {
		return fmt.Errorf("%s: %w: empty email or code", op, ErrBadMessage)
	}
	return s.SendConfirmationCode(ctx, msg)
}

func (s *Service) sendEmail(to, subject, bodyText string) error {
	log := s.log.With(slog.String("to", to))
	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer client.Close()

	if err = client.Mail(from); err != nil {
		log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	if err = client.Rcpt(to); err != nil {
		log.Error("failed to set RCPT TO", sl.Err(err))
		return err
	}

	wc, err := client.Data()
	if err != nil {
		log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		log.Error("failed to write email body", sl.Err(err))
		_ = wc.Close()
		return err
	}
	if err = wc.Close(); err != nil {
		log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	log.Info("email sent")
	return nil
}
