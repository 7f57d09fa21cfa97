package utils

import (
	"errors"
	"fmt"
	"log"

	"gatepass/src/db"
	"gatepass/src/models"
	"gatepass/src/types"

	"gorm.io/gorm"
)

// IssueTickets creates one coded ticket per purchased unit of a paid order
// and bumps the sold counters. It is safe to re-run: units that already
// have their tickets are skipped, so a reconciliation retry after a partial
// failure never duplicates tickets or counter increments.
//
// Each order item is one atomic unit: its ticket batch and its counter
// increment commit together or not at all. A failed unit surfaces as
// ErrIssuanceFailed and leaves the order's paid status untouched.
func IssueTickets(orderId uint) ([]models.Ticket, error) {
	conn := db.GetDb()
	var order models.Order
	if err := conn.
		Model(&models.Order{}).
		Preload("Items").
		Where("id = ?", orderId).
		First(&order).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrOrderNotFound
		}
		return nil, err
	}

	issued := make([]models.Ticket, 0)
	for _, item := range order.Items {
		batch := make([]models.Ticket, 0, item.Qty)
		err := conn.Transaction(func(tx *gorm.DB) error {
			var existing []models.Ticket
			if err := tx.
				Where("order_item_id = ?", item.ID).
				Find(&existing).
				Error; err != nil {
				return err
			}
			if uint(len(existing)) >= item.Qty {
				log.Printf("[Issuance] Order %d item %d already has %d tickets, skipping\n", order.ID, item.ID, len(existing))
				batch = append(batch, existing...)
				return nil
			}
			batch = append(batch, existing...)
			need := item.Qty - uint(len(existing))
			for i := uint(0); i < need; i++ {
				ticket, err := createTicketWithCode(tx, &order, &item)
				if err != nil {
					return err
				}
				batch = append(batch, *ticket)
			}
			// Counter update is a single atomic expression, never a
			// read-modify-write, so concurrent issuances against the same
			// type cannot lose increments.
			res := tx.
				Model(&models.TicketType{}).
				Where("id = ?", item.TicketTypeID).
				UpdateColumn("quantity_sold", gorm.Expr("quantity_sold + ?", need))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("ticket type %d not found", item.TicketTypeID)
			}
			return nil
		})
		if err != nil {
			log.Printf("[Issuance] Order %d item %d failed: %s\n", order.ID, item.ID, err.Error())
			return issued, fmt.Errorf("%w: order %d item %d: %s", types.ErrIssuanceFailed, order.ID, item.ID, err.Error())
		}
		issued = append(issued, batch...)
	}
	return issued, nil
}

// createTicketWithCode inserts a ticket with a freshly generated code,
// regenerating on a unique-index collision. Savepoints keep a collided
// insert from poisoning the surrounding transaction.
func createTicketWithCode(tx *gorm.DB, order *models.Order, item *models.OrderItem) (*models.Ticket, error) {
	for attempt := 0; attempt < codeInsertAttempts; attempt++ {
		code, err := GenerateCode(TicketCodeLength)
		if err != nil {
			return nil, err
		}
		ticket := models.Ticket{
			Code:         code,
			OrderItemID:  item.ID,
			EventID:      order.EventID,
			TicketTypeID: item.TicketTypeID,
			OwnerID:      order.UserID,
		}
		sp := fmt.Sprintf("sp_ticket_code_%d", attempt)
		tx.SavePoint(sp)
		err = tx.Create(&ticket).Error
		if err == nil {
			return &ticket, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			tx.RollbackTo(sp)
			log.Printf("[Issuance] Ticket code collision, regenerating (attempt %d)\n", attempt+1)
			continue
		}
		return nil, err
	}
	return nil, errors.New("could not generate a unique ticket code")
}
