package utils

import (
	"errors"

	"gatepass/src/db"
	"gatepass/src/models"
	"gatepass/src/types"

	"gorm.io/gorm"
)

func GetOwnTickets(userId uint) ([]models.Ticket, error) {
	conn := db.GetDb()
	tickets := make([]models.Ticket, 0)
	err := conn.
		Model(&models.Ticket{}).
		Preload("Event").
		Preload("TicketType").
		Where("owner_id = ?", userId).
		Order("created_at DESC").
		Find(&tickets).
		Error
	return tickets, err
}

func GetOwnTicket(ticketId uint, userId uint) (*models.Ticket, error) {
	conn := db.GetDb()
	var ticket models.Ticket
	if err := conn.
		Model(&models.Ticket{}).
		Preload("Event").
		Where("id = ? AND owner_id = ?", ticketId, userId).
		First(&ticket).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}
