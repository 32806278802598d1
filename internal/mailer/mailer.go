package mailer

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/matheusmosca/sales-orders/internal/platform/config"
)

// Message é um e-mail em texto simples
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type relayRequest struct {
	From string `json:"from"`
	Message
}

// RelayMailer envia e-mails através da API HTTP de um relay
type RelayMailer struct {
	client *resty.Client
	from   string
}

// NewRelayMailer cria o cliente HTTP do relay com timeout e autenticação por API key
func NewRelayMailer(cfg config.Mail) *RelayMailer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.RelayURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &RelayMailer{client: client, from: cfg.From}
}

func (m *RelayMailer) Send(ctx context.Context, msg Message) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(relayRequest{From: m.from, Message: msg}).
		Post("/messages")
	if err != nil {
		return errors.Wrap(err, "send mail")
	}
	if resp.IsError() {
		return errors.Errorf("mail relay returned %d: %s", resp.StatusCode(), resp.String())
	}

	zerolog.Ctx(ctx).Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("📧 e-mail enviado")
	return nil
}

// LogMailer apenas registra as mensagens; usado quando o relay não está configurado
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	zerolog.Ctx(ctx).Warn().Str("to", msg.To).Str("subject", msg.Subject).
		Msg("⚠️ relay de e-mail desabilitado; mensagem descartada")
	return nil
}
