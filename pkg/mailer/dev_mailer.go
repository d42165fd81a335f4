package mailer

import (
	"context"

	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
)

// DevMailer logs messages instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendRSVPNotification(ctx context.Context, toEmail string, n RSVPNotification) error {
	subject, text, _ := rsvpContent(n)
	logger.InfoContext(ctx, "[DEV MAIL] RSVP notification",
		"to", toEmail,
		"subject", subject,
		"body", text,
	)
	return nil
}

func (d *DevMailer) SendGuestInvitation(ctx context.Context, toEmail string, inv GuestInvitation) error {
	subject, _, _ := invitationContent(inv)
	logger.InfoContext(ctx, "[DEV MAIL] Guest invitation",
		"to", toEmail,
		"subject", subject,
		"guest", inv.GuestName,
	)
	return nil
}
