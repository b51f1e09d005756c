package utils

import (
	"fmt"
	"log"
	"strings"

	"ecofinds/config"
	"ecofinds/models"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(toEmail, subject, htmlContent, textContent string) error
}

// EmailService renders the marketplace emails and hands them to a Sender.
type EmailService struct {
	sender Sender
}

// NewEmailService picks the provider named in cfg.
func NewEmailService(cfg config.EmailConfig) *EmailService {
	switch cfg.Provider {
	case config.EmailPostmark:
		return &EmailService{sender: &postmarkSender{
			client: postmark.NewClient(cfg.PostmarkToken, ""),
			from:   cfg.Sender,
		}}
	case config.EmailSendgrid:
		return &EmailService{sender: &sendgridSender{
			client: sendgrid.NewSendClient(cfg.SendgridKey),
			from:   cfg.Sender,
		}}
	default:
		return &EmailService{sender: LogSender{}}
	}
}

// NewEmailServiceWithSender is used by tests and by callers that bring their
// own transport.
func NewEmailServiceWithSender(s Sender) *EmailService {
	return &EmailService{sender: s}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if err := es.sender.Send(toEmail, subject, htmlContent, stripTags(htmlContent)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (es *EmailService) SendWelcomeEmail(toEmail, username string) error {
	htmlContent := fmt.Sprintf(
		"<strong>Hi %s,</strong><br><br>Welcome to EcoFinds! Start browsing pre-loved items or list something you no longer need.<br><br>Happy sustainable shopping!",
		username,
	)
	return es.SendEmail(toEmail, "Welcome to EcoFinds", htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order models.Order) error {
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>%sTotal Amount: <strong>$%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping second-hand!",
		order.ID.Hex(),
		itemLines(order.Items),
		order.TotalAmount,
		order.PaymentMethod,
	)
	return es.SendEmail(toEmail, "Order Confirmation", htmlContent)
}

func (es *EmailService) SendOrderCancelledEmail(toEmail string, order models.Order) error {
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Your order (ID: %s) has been cancelled and its items are available again.<br><br>Total Amount: <strong>$%.2f</strong>",
		order.ID.Hex(),
		order.TotalAmount,
	)
	return es.SendEmail(toEmail, "Order Cancelled", htmlContent)
}

func itemLines(items []models.OrderItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s x%d: $%.2f<br>", item.Title, item.Quantity, item.Price)
	}
	if b.Len() > 0 {
		b.WriteString("<br>")
	}
	return b.String()
}

func stripTags(html string) string {
	replacer := strings.NewReplacer("<br>", "\n", "<strong>", "", "</strong>", "")
	return replacer.Replace(html)
}

type postmarkSender struct {
	client *postmark.Client
	from   string
}

func (s *postmarkSender) Send(toEmail, subject, htmlContent, textContent string) error {
	_, err := s.client.SendEmail(postmark.Email{
		From:     s.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: textContent,
	})
	return err
}

type sendgridSender struct {
	client *sendgrid.Client
	from   string
}

func (s *sendgridSender) Send(toEmail, subject, htmlContent, textContent string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("EcoFinds", s.from),
		subject,
		mail.NewEmail("", toEmail),
		textContent,
		htmlContent,
	)
	resp, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender writes emails to the standard logger instead of delivering them.
type LogSender struct{}

func (LogSender) Send(toEmail, subject, _, textContent string) error {
	log.Printf("email to %s: %s\n%s", toEmail, subject, textContent)
	return nil
}
