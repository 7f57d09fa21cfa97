package utils

import (
	"fmt"
	"log"

	"gatepass/src/config"
	"gatepass/src/db"
	"gatepass/src/lib"
	"gatepass/src/lib/mailer"
	"gatepass/src/models"
	"gatepass/src/types"
)

// SendOrderConfirmation queues the purchase confirmation for a paid order.
// Invoked after issuance has committed; callers only log the returned
// error, they never unwind state on it.
func SendOrderConfirmation(orderId uint) error {
	conn := db.GetDb()
	var order models.Order
	if err := conn.
		Model(&models.Order{}).
		Preload("User").
		Preload("Event").
		Where("id = ?", orderId).
		First(&order).
		Error; err != nil {
		return fmt.Errorf("%w: load order %d: %s", types.ErrNotificationFailed, orderId, err.Error())
	}
	if order.User == nil || order.Event == nil {
		return fmt.Errorf("%w: order %d has no user or event", types.ErrNotificationFailed, orderId)
	}

	from, fromName := config.MailFrom()
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your order #%d for <strong>%s</strong> is confirmed. Your tickets are ready in your account.</p><p>Event date: %s</p>",
		order.User.Name, order.ID, order.Event.Title, order.Event.DateTime.Format("Mon, 02 Jan 2006 15:04"),
	)
	input := lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{order.User.Email},
		Subject:  fmt.Sprintf("Your tickets for %s", order.Event.Title),
		Body:     body,
		Html:     true,
	}
	if err := mailer.NewMailerMessage(&input); err != nil {
		log.Printf("[Notify] Confirmation for order %d not queued: %s\n", orderId, err.Error())
		return fmt.Errorf("%w: %s", types.ErrNotificationFailed, err.Error())
	}
	return nil
}

// SendTransferCode emails the transfer code and accept link to the
// recipient. The transfer is valid regardless of delivery outcome.
func SendTransferCode(transfer *models.TicketTransfer, ticket *models.Ticket) error {
	conn := db.GetDb()
	var sender models.User
	if err := conn.
		Model(&models.User{}).
		Where("id = ?", transfer.FromUserID).
		First(&sender).
		Error; err != nil {
		return fmt.Errorf("%w: load sender %d: %s", types.ErrNotificationFailed, transfer.FromUserID, err.Error())
	}

	acceptURL := fmt.Sprintf("%s/accept-transfer?code=%s", config.SiteURL(), transfer.Code)
	from, fromName := config.MailFrom()
	body := fmt.Sprintf(
		"<p>%s wants to transfer you a ticket for <strong>%s</strong> (%s).</p>"+
			"<p>Ticket code: %s</p>"+
			"<p><a href=\"%s\">Accept the transfer</a> or enter code <strong>%s</strong> on the site.</p>",
		sender.Name, ticket.Event.Title, ticket.Event.DateTime.Format("Mon, 02 Jan 2006 15:04"),
		ticket.Code, acceptURL, transfer.Code,
	)
	input := lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{transfer.ToEmail},
		ReplyTo:  sender.Email,
		Subject:  fmt.Sprintf("%s sent you a ticket for %s", sender.Name, ticket.Event.Title),
		Body:     body,
		Html:     true,
	}
	if err := mailer.NewMailerMessage(&input); err != nil {
		log.Printf("[Notify] Transfer code for transfer %d not queued: %s\n", transfer.ID, err.Error())
		return fmt.Errorf("%w: %s", types.ErrNotificationFailed, err.Error())
	}
	return nil
}
