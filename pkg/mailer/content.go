package mailer

import (
	"fmt"
	"html"
)

func attendanceLabel(attendance string) string {
	if attendance == "confirms" {
		return "will attend"
	}
	return "will not attend"
}

func rsvpContent(n RSVPNotification) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("New RSVP for %s", n.InvitationTitle)
	text = fmt.Sprintf("%s %s (companions: %d).", n.GuestName, attendanceLabel(n.Attendance), n.Companions)
	if n.Message != "" {
		text += "\n\nMessage: " + n.Message
	}
	htmlBody = fmt.Sprintf(`
		<h2>%s</h2>
		<p><strong>%s</strong> %s.</p>
		<p>Companions: %d</p>
	`, html.EscapeString(n.InvitationTitle), html.EscapeString(n.GuestName), attendanceLabel(n.Attendance), n.Companions)
	if n.Message != "" {
		htmlBody += fmt.Sprintf("<blockquote>%s</blockquote>", html.EscapeString(n.Message))
	}
	return subject, text, htmlBody
}

func invitationContent(inv GuestInvitation) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("You're invited: %s", inv.InvitationTitle)
	text = fmt.Sprintf("Hi %s,\n\nYou're invited to %s. Open your personal invitation here: %s", inv.GuestName, inv.InvitationTitle, inv.Link)
	htmlBody = fmt.Sprintf(`
		<h2>%s</h2>
		<p>Hi %s,</p>
		<p>You're invited! Open your personal invitation:</p>
		<p><a href="%s" style="background-color: #d4a574; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View invitation</a></p>
		<p>This link is personal. Please don't share it.</p>
	`, html.EscapeString(inv.InvitationTitle), html.EscapeString(inv.GuestName), html.EscapeString(inv.Link))
	return subject, text, htmlBody
}
