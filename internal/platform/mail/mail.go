// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package mail delivers account emails (verification and password reset) over SMTP.
//
// Sending is retried with exponential backoff; the caller sees an error only
// once every attempt has failed.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	gomail "github.com/wneessen/go-mail"
)

// # Defaults

const (
	defaultRetries = 3
	defaultBackoff = 200 * time.Millisecond
)

// sender is the slice of [gomail.Client] used for delivery.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// AppURL is the public base URL links point to, e.g. "https://accounts.example.com".
	AppURL string
}

// Mailer composes and sends account emails.
type Mailer struct {
	client  sender
	from    string
	appURL  string
	retries uint64
	backoff time.Duration
	logger  *slog.Logger
}

// New creates a new SMTP-backed Mailer.
//
// Credentials are optional; without a username the client connects
// unauthenticated (useful with local catchers such as MailHog).
func New(cfg Config, logger *slog.Logger) (*Mailer, error) {
	options := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, options...)
	if err != nil {
		return nil, fmt.Errorf("mail_client_init_failed: %w", err)
	}

	return newMailer(client, cfg, logger), nil
}

func newMailer(client sender, cfg Config, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		client:  client,
		from:    cfg.From,
		appURL:  strings.TrimRight(cfg.AppURL, "/"),
		retries: defaultRetries,
		backoff: defaultBackoff,
		logger:  logger,
	}
}

// SendVerification mails the email-verification link for token.
func (mailer *Mailer) SendVerification(context context.Context, to, token string) error {
	content, err := render(verificationTemplate, mailer.link("/verify", token))
	if err != nil {
		return err
	}
	return mailer.send(context, to, "Verify Email", content)
}

// SendPasswordReset mails the password-reset link for token.
func (mailer *Mailer) SendPasswordReset(context context.Context, to, token string) error {
	content, err := render(passwordResetTemplate, mailer.link("/reset-password", token))
	if err != nil {
		return err
	}
	return mailer.send(context, to, "Reset Password", content)
}

func (mailer *Mailer) link(path, token string) string {
	return mailer.appURL + path + "?token=" + url.QueryEscape(token)
}

func (mailer *Mailer) compose(to, subject string, content body) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(mailer.from); err != nil {
		return nil, fmt.Errorf("mail_from_invalid: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("mail_to_invalid: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, content.text)
	msg.AddAlternativeString(gomail.TypeTextHTML, content.html)
	return msg, nil
}

func (mailer *Mailer) send(ctx context.Context, to, subject string, content body) error {
	msg, err := mailer.compose(to, subject, content)
	if err != nil {
		return err
	}

	attempt := 0
	backoff := retry.WithMaxRetries(mailer.retries, retry.NewExponential(mailer.backoff))
	err = retry.Do(ctx, backoff, func(attemptCtx context.Context) error {
		attempt++
		if sendErr := mailer.client.DialAndSendWithContext(attemptCtx, msg); sendErr != nil {
			mailer.logger.Warn("mail_send_attempt_failed",
				slog.String("subject", subject),
				slog.Int("attempt", attempt),
				slog.Any("error", sendErr),
			)
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("mail_send_failed: %w", err)
	}

	mailer.logger.Info("mail_sent", slog.String("subject", subject))
	return nil
}
