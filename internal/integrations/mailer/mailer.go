package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// defaultSendTimeout ограничение на весь SMTP-обмен, если у контекста нет дедлайна
const defaultSendTimeout = 5 * time.Second

// ErrSendFailed возвращается при ошибке отправки письма
var ErrSendFailed = errors.New("mailer: failed to send email")

// headerSanitizer убирает переводы строк из значений заголовков
var headerSanitizer = strings.NewReplacer("\r", "", "\n", "")

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// SMTPSender отправляет письма через SMTP (PLAIN auth, если задан логин)
type SMTPSender struct {
	addr string
	host string
	from string
	auth smtp.Auth
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	host = strings.TrimSpace(host)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@appointments.local"
	}

	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		host: host,
		from: from,
		auth: auth,
	}
}

// Send отправляет текстовое письмо. Весь обмен с сервером ограничен дедлайном ctx.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultSendTimeout)
		defer cancel()
	}

	msg := buildMessage(s.from, to, subject, body)
	if err := s.send(ctx, to, msg); err != nil {
		return fmt.Errorf("%w: to=%s: %v", ErrSendFailed, to, err)
	}
	return nil
}

func (s *SMTPSender) send(ctx context.Context, to, msg string) error {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("set deadline: %w", err)
	}
	// Отмена контекста обрывает зависший обмен
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("greeting: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if s.auth != nil {
		if err := client.Auth(s.auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish body: %w", err)
	}

	return client.Quit()
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		headerSanitizer.Replace(from),
		headerSanitizer.Replace(to),
		headerSanitizer.Replace(subject),
		body,
	)
}

// LogSender пишет письмо в лог вместо отправки (SMTP не настроен).
// Вне production тело письма тоже попадает в лог.
type LogSender struct {
	log          Logger
	exposeBodies bool
}

func NewLogSender(log Logger, environment string) *LogSender {
	return &LogSender{
		log:          log,
		exposeBodies: !strings.EqualFold(strings.TrimSpace(environment), "production"),
	}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	if s.exposeBodies {
		s.log.Info("Mailer (simulated): to=%s, subject=%q, body=%q", to, subject, body)
		return nil
	}
	s.log.Info("Mailer (simulated): to=%s, subject=%q", to, subject)
	return nil
}
