package email

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/Domenick1991/amenitybooking/config"
	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/Domenick1991/amenitybooking/internal/notification"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Dialer is the part of *mail.Client the sender needs.
type Dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Sender struct {
	client   Dialer
	from     string
	fromName string
	logger   *zap.Logger
}

func NewSender(cfg config.SMTPConfig, logger *zap.Logger) (*Sender, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, mail.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return NewSenderWithDialer(c, cfg.From, cfg.FromName, logger), nil
}

func NewSenderWithDialer(client Dialer, from, fromName string, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{client: client, from: from, fromName: fromName, logger: logger}
}

// SendReservationConfirmation reports every failure in the Result.
func (s *Sender) SendReservationConfirmation(ctx context.Context, data notification.ReservationConfirmation) notification.Result {
	if data.DestinationEmail == "" {
		return notification.Failed("no destination address", nil)
	}
	msg, err := s.buildMessage(data)
	if err != nil {
		s.logger.Error("build confirmation email", zap.String("reservation", data.ReservationNumber), zap.Error(err))
		return notification.Failed("could not build message", err)
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Warn("send confirmation email",
			zap.String("reservation", data.ReservationNumber),
			zap.String("email", data.DestinationEmail),
			zap.Error(domain.External("smtp", err)))
		return notification.Failed("email not sent", err)
	}
	s.logger.Info("confirmation email sent",
		zap.String("reservation", data.ReservationNumber),
		zap.String("email", data.DestinationEmail))
	return notification.Result{Success: true, Message: "email sent to " + data.DestinationEmail}
}

func (s *Sender) buildMessage(data notification.ReservationConfirmation) (*mail.Msg, error) {
	subject, html, text, err := Render(data, time.Now())
	if err != nil {
		return nil, err
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(data.DestinationEmail); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)
	return msg, nil
}

type view struct {
	notification.ReservationConfirmation
	PriceText   string
	GeneratedAt string
}

// Render produces the subject and both bodies of the confirmation email.
func Render(data notification.ReservationConfirmation, now time.Time) (subject, html, text string, err error) {
	v := view{ReservationConfirmation: data, GeneratedAt: now.Format("2/1/2006 15:04")}
	if data.Price != nil {
		v.PriceText = fmt.Sprintf("$%.2f", *data.Price)
	}

	var hb, tb bytes.Buffer
	if err := htmlBody.Execute(&hb, v); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	if err := textBody.Execute(&tb, v); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return "Reserva Confirmada - " + data.AreaName, hb.String(), tb.String(), nil
}

var htmlBody = htmltemplate.Must(htmltemplate.New("confirmation.html").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <title>Confirmación de Reserva</title>
</head>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
  <h2 style="background-color: #2563eb; color: white; padding: 20px; text-align: center;">Confirmación de Reserva</h2>
  <p>Estimado/a <strong>{{.UserName}}</strong>,</p>
  <p>Tu reserva ha sido <strong>confirmada exitosamente</strong>.</p>
  <div style="border-left: 4px solid #2563eb; padding: 10px 20px;">
    <p><strong>Número de Reserva:</strong> {{.ReservationNumber}}</p>
    <p><strong>Área Reservada:</strong> {{.AreaName}}</p>
    <p><strong>Fecha:</strong> {{.Date}}</p>
    <p><strong>Horario:</strong> {{.StartTime}} - {{.EndTime}}</p>
    {{- if .PriceText}}
    <p><strong>Precio:</strong> {{.PriceText}}</p>
    {{- end}}
  </div>
  <ul>
    <li>Por favor, llega 15 minutos antes de tu horario reservado</li>
    <li>Presenta este email como comprobante de tu reserva</li>
    <li>Si necesitas cancelar, hazlo con al menos 2 horas de anticipación</li>
  </ul>
  <p style="font-size: 12px; color: #6b7280;">Este es un email automático, por favor no respondas a este mensaje. Generado el {{.GeneratedAt}}</p>
</body>
</html>
`))

var textBody = texttemplate.Must(texttemplate.New("confirmation.txt").Parse(`Confirmación de Reserva

Estimado/a {{.UserName}},

Tu reserva ha sido confirmada exitosamente.

Detalles de la Reserva:
- Número: {{.ReservationNumber}}
- Área: {{.AreaName}}
- Fecha: {{.Date}}
- Horario: {{.StartTime}} - {{.EndTime}}
{{- if .PriceText}}
- Precio: {{.PriceText}}
{{- end}}
`))

var _ notification.Gateway = (*Sender)(nil)
