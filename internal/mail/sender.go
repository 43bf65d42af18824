package mail

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// ErrDelivery is returned on any transport, auth, or network fault while
// sending. It is captured per recipient and never aborts a batch sweep.
var ErrDelivery = errors.New("mail delivery failed")

// Sender delivers a weather tip to a recipient.
type Sender interface {
	Send(recipient, tip, location string) error
}

// SMTPSender sends plain-text tips over an authenticated SMTP submission.
// The connection is dialed per send, not pooled.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a sender. Credentials come from startup configuration
// and are never mutated afterwards.
func NewSMTPSender(host string, port int, from, password string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, from, password),
		from:   from,
	}
}

// Send builds the fixed-template message and transmits it. Exactly one
// outbound message per successful call; repeated calls send repeated mail.
func (s *SMTPSender) Send(recipient, tip, location string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", Subject(location))
	m.SetBody("text/plain", Body(tip, location))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

// Subject returns the fixed subject line for a location.
func Subject(location string) string {
	return fmt.Sprintf("Weather Tips for %s", location)
}

// Body returns the fixed plain-text message body.
func Body(tip, location string) string {
	return fmt.Sprintf(
		"Hello,\n\nHere are your instant weather tips for %s:\n\n%s\n\nStay safe!\nSkySnap Team",
		location, tip,
	)
}
