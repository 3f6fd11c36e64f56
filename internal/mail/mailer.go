// Package mail is the boundary to the external email collaborator. Sending
// is best effort; callers never make delivery part of their consistency
// guarantees.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
)

type Invite struct {
	To       string
	TeamName string
	Inviter  string
	Link     string
}

type Mailer interface {
	SendInvite(ctx context.Context, invite Invite) error
}

type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTP(host, port, username, password, from string) *SMTPMailer {
	m := &SMTPMailer{
		addr: net.JoinHostPort(host, port),
		from: from,
	}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

func (m *SMTPMailer) SendInvite(ctx context.Context, invite Invite) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: You have been invited to join %s\r\n\r\n"+
			"%s invited you to join the team %q.\r\n\r\nAccept the invitation here: %s\r\n",
		m.from, invite.To, invite.TeamName, invite.Inviter, invite.TeamName, invite.Link,
	)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{invite.To}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send invite mail: %w", err)
	}
	return nil
}

// LogMailer stands in when no SMTP server is configured, e.g. local
// development.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendInvite(ctx context.Context, invite Invite) error {
	m.logger.InfoContext(ctx, "invite mail (not sent, no smtp configured)",
		"to", invite.To,
		"team", invite.TeamName,
		"link", invite.Link,
	)
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
