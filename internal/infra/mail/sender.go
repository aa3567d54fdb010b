package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func (s *EmailSender) Configured() bool {
	return s.Host != "" && s.User != "" && s.Password != ""
}

func (s *EmailSender) SendAlert(subject, htmlBody string, recipients []string) error {
	if !s.Configured() || len(recipients) == 0 {
		return fmt.Errorf("smtp not configured or no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}

	return nil
}
