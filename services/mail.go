package services

import (
	"context"
	"log"

	"ecofinds/models"
	"ecofinds/utils"
)

// Mailer sends the transactional emails. Delivery is best-effort.
type Mailer interface {
	SendWelcomeEmail(toEmail, username string) error
	SendOrderConfirmationEmail(toEmail string, order models.Order) error
	SendOrderCancelledEmail(toEmail string, order models.Order) error
}

// sendInBackground runs send on its own goroutine; failures are only logged.
func sendInBackground(ctx context.Context, to string, send func(to string) error) {
	if to == "" {
		return
	}
	requestID := utils.RequestIDFrom(ctx)
	go func() {
		if err := send(to); err != nil {
			log.Printf("[%s] failed to send email to %s: %v", requestID, to, err)
		}
	}()
}
