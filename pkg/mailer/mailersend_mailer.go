package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendRSVPNotification(ctx context.Context, toEmail string, n RSVPNotification) error {
	subject, text, html := rsvpContent(n)
	return m.sendEmail(ctx, toEmail, "", subject, text, html)
}

func (m *MailerSendClient) SendGuestInvitation(ctx context.Context, toEmail string, inv GuestInvitation) error {
	subject, text, html := invitationContent(inv)
	return m.sendEmail(ctx, toEmail, inv.GuestName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(ctx context.Context, toEmail, toName, subject, text, html string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
