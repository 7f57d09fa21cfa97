package utils

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gatepass/src/db"
	"gatepass/src/models"
	"gatepass/src/types"

	"gorm.io/gorm"
)

// TransferWindow is the minimum lead time before the event start for a new
// transfer. It is a point-in-time check at initiate: a transfer created in
// time stays acceptable even once the event is closer than this.
const TransferWindow = 2 * time.Hour

type InitiateTransferResult struct {
	Transfer models.TicketTransfer `json:"transfer"`
	// EmailSent is false when the recipient email could not be queued; the
	// transfer is still valid and the code can be shared manually.
	EmailSent bool `json:"email_sent"`
}

// InitiateTransfer opens a pending transfer for a ticket the sender owns.
// The ticket's transfer_status marker is the serialization point: it is
// compare-and-set from empty to pending inside the transaction, so of two
// concurrent initiations exactly one wins and the loser gets
// ErrTransferAlreadyPending.
func InitiateTransfer(ticketId uint, fromUser uint, toEmail string) (*InitiateTransferResult, error) {
	conn := db.GetDb()
	var ticket models.Ticket
	if err := conn.
		Model(&models.Ticket{}).
		Preload("Event").
		Where("id = ? AND owner_id = ?", ticketId, fromUser).
		First(&ticket).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrTicketNotFound
		}
		return nil, err
	}
	if time.Until(ticket.Event.DateTime) <= TransferWindow {
		return nil, types.ErrTransferWindowClosed
	}

	var transfer models.TicketTransfer
	err := conn.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Ticket{}).
			Where("id = ? AND (transfer_status IS NULL OR transfer_status = '')", ticketId).
			Update("transfer_status", string(types.TRANSFER_PENDING))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrTransferAlreadyPending
		}
		created, err := createTransferWithCode(tx, ticketId, fromUser, toEmail)
		if err != nil {
			return err
		}
		transfer = *created
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &InitiateTransferResult{Transfer: transfer, EmailSent: true}
	if err := SendTransferCode(&transfer, &ticket); err != nil {
		// The transfer stands; the caller surfaces a share-manually hint.
		log.Printf("[Transfers] Could not email code for transfer %d: %s\n", transfer.ID, err.Error())
		result.EmailSent = false
	}
	return result, nil
}

// AcceptTransfer completes a pending transfer by code, handing the ticket
// to the accepting user and clearing the marker. Replaying an accepted or
// cancelled code fails with ErrTransferNotPending, never silently succeeds.
func AcceptTransfer(code string, acceptingUser uint) (*models.TicketTransfer, error) {
	conn := db.GetDb()
	var transfer models.TicketTransfer
	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.TicketTransfer{}).
			Where("code = ?", code).
			First(&transfer).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrTransferNotPending
			}
			return err
		}
		res := tx.
			Model(&models.TicketTransfer{}).
			Where("id = ? AND status = ?", transfer.ID, types.TRANSFER_PENDING).
			Update("status", string(types.TRANSFER_ACCEPTED))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrTransferNotPending
		}
		transfer.Status = types.TRANSFER_ACCEPTED
		// Ownership reassignment and marker clear ride the same commit as
		// the status flip so the denormalized flag never drifts.
		if err := tx.
			Model(&models.Ticket{}).
			Where("id = ?", transfer.TicketID).
			Updates(map[string]any{
				"owner_id":        acceptingUser,
				"transfer_status": "",
			}).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Transfers] Transfer %d accepted, ticket %d now owned by user %d\n", transfer.ID, transfer.TicketID, acceptingUser)
	return &transfer, nil
}

// CancelTransfer closes a pending transfer. Only the original sender may
// cancel; the stale-transfer sweep goes through here as well.
func CancelTransfer(transferId uint, requestingUser uint) error {
	conn := db.GetDb()
	return conn.Transaction(func(tx *gorm.DB) error {
		var transfer models.TicketTransfer
		if err := tx.
			Model(&models.TicketTransfer{}).
			Where("id = ?", transferId).
			First(&transfer).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrTransferNotPending
			}
			return err
		}
		if transfer.FromUserID != requestingUser {
			return types.ErrTransferForbidden
		}
		res := tx.
			Model(&models.TicketTransfer{}).
			Where("id = ? AND status = ?", transferId, types.TRANSFER_PENDING).
			Update("status", string(types.TRANSFER_CANCELLED))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrTransferNotPending
		}
		if err := tx.
			Model(&models.Ticket{}).
			Where("id = ?", transfer.TicketID).
			Update("transfer_status", "").
			Error; err != nil {
			return err
		}
		log.Printf("[Transfers] Transfer %d cancelled by user %d\n", transferId, requestingUser)
		return nil
	})
}

// CancelStaleTransfers cancels pending transfers older than ttl on behalf
// of their senders. Run from the scheduler; the coordinator itself never
// expires anything.
func CancelStaleTransfers(ttl time.Duration) (int, error) {
	conn := db.GetDb()
	cutoff := time.Now().Add(-ttl)
	var stale []models.TicketTransfer
	if err := conn.
		Model(&models.TicketTransfer{}).
		Where("status = ? AND created_at < ?", types.TRANSFER_PENDING, cutoff).
		Find(&stale).
		Error; err != nil {
		return 0, err
	}
	cancelled := 0
	for _, t := range stale {
		if err := CancelTransfer(t.ID, t.FromUserID); err != nil {
			if errors.Is(err, types.ErrTransferNotPending) {
				continue
			}
			log.Printf("[Transfers] Sweep could not cancel transfer %d: %s\n", t.ID, err.Error())
			continue
		}
		cancelled++
	}
	if cancelled > 0 {
		log.Printf("[Transfers] Sweep cancelled %d stale transfers\n", cancelled)
	}
	return cancelled, nil
}

func createTransferWithCode(tx *gorm.DB, ticketId uint, fromUser uint, toEmail string) (*models.TicketTransfer, error) {
	for attempt := 0; attempt < codeInsertAttempts; attempt++ {
		code, err := GenerateCode(TransferCodeLength)
		if err != nil {
			return nil, err
		}
		transfer := models.TicketTransfer{
			TicketID:   ticketId,
			FromUserID: fromUser,
			ToEmail:    toEmail,
			Code:       code,
			Status:     types.TRANSFER_PENDING,
		}
		sp := fmt.Sprintf("sp_transfer_code_%d", attempt)
		tx.SavePoint(sp)
		err = tx.Create(&transfer).Error
		if err == nil {
			return &transfer, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			tx.RollbackTo(sp)
			log.Printf("[Transfers] Code collision, regenerating (attempt %d)\n", attempt+1)
			continue
		}
		return nil, err
	}
	return nil, errors.New("could not generate a unique transfer code")
}
