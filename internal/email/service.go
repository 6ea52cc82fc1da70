package email

import (
	"fmt"
	"net/smtp"
)

const packingSubject = "Your order has been packed!"

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
		send: smtp.SendMail,
	}
}

// SendPackingNotification tells the buyer their order has been packed
func (s *Service) SendPackingNotification(to, firstName string, orderID int64) error {
	if to == "" {
		return fmt.Errorf("email: no recipient for order %d", orderID)
	}
	body := BuildPackingBody(firstName, orderID)
	return s.sendHTML(to, packingSubject, body)
}

func (s *Service) sendHTML(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.send(addr, nil, s.from, []string{to}, []byte(msg))
}
