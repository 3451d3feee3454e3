package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendAnalysisSummary(toEmail, documentTitle, verdictSummary string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendAnalysisSummary(toEmail, documentTitle, verdictSummary string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Analysis complete: %s", documentTitle))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>RFP Analysis Complete</h2>
			<p>The evaluation of <strong>%s</strong> has finished. Executive summary:</p>
			<div style="background: #f5f5f5; padding: 15px; border-radius: 5px; white-space: pre-wrap;">%s</div>
			<p>Open the dashboard to review scores and start a Q&amp;A session.</p>
		</div>
	`, documentTitle, verdictSummary)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send summary to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Analysis summary sent to %s\n", toEmail)
	return nil
}
