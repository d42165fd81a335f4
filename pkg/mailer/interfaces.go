package mailer

import (
	"context"

	"github.com/cris-imc/invitaciones-sub002/pkg/config"
	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
)

type Service interface {
	SendRSVPNotification(ctx context.Context, toEmail string, n RSVPNotification) error
	SendGuestInvitation(ctx context.Context, toEmail string, inv GuestInvitation) error
}

type RSVPNotification struct {
	InvitationTitle string
	GuestName       string
	Attendance      string
	Companions      int
	Message         string
}

type GuestInvitation struct {
	InvitationTitle string
	GuestName       string
	Link            string
}

// New picks MailerSend when an API key is configured, SMTP when dev mode is off,
// and the logging dev mailer otherwise.
func New(cfg config.EmailConfig) Service {
	switch {
	case cfg.MailerSendKey != "":
		logger.Info("Using MailerSend mailer")
		return NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	case !cfg.DevMode && cfg.SMTPHost != "":
		logger.Info("Using SMTP mailer", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	default:
		logger.Info("Using dev mailer")
		return NewDevMailer()
	}
}
